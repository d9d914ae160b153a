package database

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// CategorySeed is one entry of the categories YAML file
type CategorySeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	SLADays     int    `yaml:"sla_days"`
	Approver    string `yaml:"approver"`
}

type categorySeedFile struct {
	Categories []CategorySeed `yaml:"categories"`
}

// LoadCategorySeeds parses a categories YAML document
func LoadCategorySeeds(data []byte) ([]CategorySeed, error) {
	var file categorySeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse categories file: %w", err)
	}

	seen := make(map[string]bool, len(file.Categories))
	for i, c := range file.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category %d: name is required", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("category %q is defined more than once", name)
		}
		seen[name] = true
		if c.SLADays < 0 {
			return nil, fmt.Errorf("category %q: sla_days must not be negative", name)
		}
		if _, err := ParseApproverRole(c.Approver); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		file.Categories[i].Name = name
	}
	return file.Categories, nil
}

// SeedCategoriesFromFile reads path and upserts its categories by name
func SeedCategoriesFromFile(db *gorm.DB, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read categories file: %w", err)
	}
	seeds, err := LoadCategorySeeds(data)
	if err != nil {
		return 0, err
	}
	return SeedCategories(db, seeds)
}

// SeedCategories creates missing categories and updates SLA/approver on
// existing ones. It returns the number of rows written.
func SeedCategories(db *gorm.DB, seeds []CategorySeed) (int, error) {
	written := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, s := range seeds {
			role, err := ParseApproverRole(s.Approver)
			if err != nil {
				return err
			}

			var existing Category
			result := tx.Where("name = ?", s.Name).First(&existing)
			if result.Error == gorm.ErrRecordNotFound {
				category := &Category{
					Name:        s.Name,
					Description: s.Description,
					SLADays:     s.SLADays,
					Approver:    role,
				}
				if err := tx.Create(category).Error; err != nil {
					return fmt.Errorf("failed to create category %s: %w", s.Name, err)
				}
				log.Printf("Created claim category: %s", s.Name)
				written++
				continue
			}
			if result.Error != nil {
				return result.Error
			}

			updates := map[string]interface{}{
				"description": s.Description,
				"sla_days":    s.SLADays,
				"approver":    role,
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update category %s: %w", s.Name, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}
