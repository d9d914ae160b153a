// Package main provides the warranty desk maintenance CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/config"
	"github.com/warrantydesk/warrantydesk/internal/database"
	"github.com/warrantydesk/warrantydesk/internal/jobs"
	"github.com/warrantydesk/warrantydesk/internal/middleware"
	"github.com/warrantydesk/warrantydesk/internal/notify"
	"github.com/warrantydesk/warrantydesk/internal/store"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "warrantydesk-admin",
	Short: "Maintenance commands for the warranty desk database",
	Long: `warrantydesk-admin runs one-off maintenance tasks against the database
configured through the same environment variables as the service
(DATABASE_DRIVER, DATABASE_URL, ...).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ============================================================================
// Shared setup
// ============================================================================

func connect() (*config.Config, *gorm.DB, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, logger.Warn); err != nil {
		return nil, nil, err
	}
	return cfg, database.GetDB(), nil
}

// ============================================================================
// migrate
// ============================================================================

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := connect()
		if err != nil {
			return err
		}
		return database.AutoMigrate(db)
	},
}

// ============================================================================
// seed-categories
// ============================================================================

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed-categories",
	Short: "Upsert warranty categories from a YAML file",
	Example: `  warrantydesk-admin seed-categories --file categories.yaml

  # categories.yaml
  categories:
    - name: Electronics
      sla_days: 5
      approver: QA`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := connect()
		if err != nil {
			return err
		}
		path := seedFile
		if path == "" {
			path = cfg.CategoriesFile
		}
		if path == "" {
			return fmt.Errorf("no categories file: pass --file or set CATEGORIES_FILE")
		}
		n, err := database.SeedCategoriesFromFile(db, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories from %s\n", n, path)
		return nil
	},
}

// ============================================================================
// create-user
// ============================================================================

var (
	userEmail    string
	userName     string
	userRole     string
	userPassword string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a staff account",
	Example: `  warrantydesk-admin create-user --email qa@shop.test --name "QA Lead" --role QA --password s3cret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := database.ParseApproverRole(userRole)
		if err != nil {
			return err
		}
		email := strings.ToLower(strings.TrimSpace(userEmail))
		if email == "" {
			return fmt.Errorf("--email is required")
		}

		user := database.User{
			Name:         strings.TrimSpace(userName),
			Email:        email,
			ApproverRole: role,
			Active:       true,
		}
		if userPassword != "" {
			hash, err := middleware.HashPassword(userPassword)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			user.PasswordHash = hash
		}

		_, db, err := connect()
		if err != nil {
			return err
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (ID: %d)\n", user.Email, user.ID)
		return nil
	},
}

// ============================================================================
// hash-password
// ============================================================================

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := middleware.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

// ============================================================================
// sla-scan
// ============================================================================

var (
	scanFormat string
	scanPost   bool
)

var slaScanCmd = &cobra.Command{
	Use:   "sla-scan",
	Short: "List open claims that are breached or due today",
	Long: `Run the SLA breach check once and print the result. With --post the
digest is also sent to the configured Slack channel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := connect()
		if err != nil {
			return err
		}
		st := store.NewGormStore(db)

		var reporter jobs.BreachReporter
		if scanPost {
			if !cfg.SlackEnabled() {
				return fmt.Errorf("--post needs SLACK_BOT_TOKEN and SLACK_CHANNEL")
			}
			reporter = notify.NewSlackNotifier(notify.NewSlackClient(cfg.SlackBotToken), cfg.SlackChannel)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		entries, err := jobs.NewSLAMonitor(st, st, claims.SystemClock{}, reporter).CheckBreaches(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if scanFormat == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No claims breached or due today")
			return nil
		}
		fmt.Fprintln(out, notify.FormatBreachDigest(entries))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML file with categories (defaults to CATEGORIES_FILE)")

	createUserCmd.Flags().StringVar(&userEmail, "email", "", "login email (required)")
	createUserCmd.Flags().StringVar(&userName, "name", "", "display name")
	createUserCmd.Flags().StringVar(&userRole, "role", "", "approver role, e.g. QA or Finance")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "initial password; without one the user cannot log in")
	_ = createUserCmd.MarkFlagRequired("email")

	slaScanCmd.Flags().StringVar(&scanFormat, "format", "text", "output format: text or json")
	slaScanCmd.Flags().BoolVar(&scanPost, "post", false, "also post the digest to Slack")

	rootCmd.AddCommand(migrateCmd, seedCmd, createUserCmd, hashPasswordCmd, slaScanCmd)
}
