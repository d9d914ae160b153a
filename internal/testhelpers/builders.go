// Package testhelpers provides additional data builders for testing
package testhelpers

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/warrantydesk/warrantydesk/internal/database"
)

var builderSeq atomic.Int64

func nextSeq() int64 {
	return builderSeq.Add(1)
}

// ========================================
// Category Builder
// ========================================

// CategoryBuilder builds Category instances for testing
type CategoryBuilder struct {
	category database.Category
}

// NewCategoryBuilder creates a new category builder with defaults
func NewCategoryBuilder() *CategoryBuilder {
	return &CategoryBuilder{
		category: database.Category{
			Name:    fmt.Sprintf("Category %d", nextSeq()),
			SLADays: 5,
		},
	}
}

// WithName sets the category name
func (b *CategoryBuilder) WithName(name string) *CategoryBuilder {
	b.category.Name = name
	return b
}

// WithSLADays sets the SLA in days; zero or less means the default applies
func (b *CategoryBuilder) WithSLADays(days int) *CategoryBuilder {
	b.category.SLADays = days
	return b
}

// WithApprover sets the approver role
func (b *CategoryBuilder) WithApprover(role database.ApproverRole) *CategoryBuilder {
	b.category.Approver = role
	return b
}

// Build returns the constructed category
func (b *CategoryBuilder) Build() database.Category {
	return b.category
}

// Create inserts the category and returns it with its ID
func (b *CategoryBuilder) Create(t *testing.T, db *gorm.DB) database.Category {
	t.Helper()
	c := b.Build()
	MustCreate(t, db, &c)
	return c
}

// ========================================
// User Builder
// ========================================

// UserBuilder builds User instances for testing
type UserBuilder struct {
	user database.User
}

// NewUserBuilder creates an active user with a unique email
func NewUserBuilder() *UserBuilder {
	n := nextSeq()
	return &UserBuilder{
		user: database.User{
			Name:   fmt.Sprintf("User %d", n),
			Email:  fmt.Sprintf("user%d@example.com", n),
			Active: true,
		},
	}
}

// WithName sets the user name
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.user.Name = name
	return b
}

// WithEmail sets the email; an empty string leaves the user without one
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

// WithRole sets the approver role
func (b *UserBuilder) WithRole(role database.ApproverRole) *UserBuilder {
	b.user.ApproverRole = role
	return b
}

// WithPasswordHash sets the bcrypt hash
func (b *UserBuilder) WithPasswordHash(hash string) *UserBuilder {
	b.user.PasswordHash = hash
	return b
}

// Inactive marks the user as deactivated
func (b *UserBuilder) Inactive() *UserBuilder {
	b.user.Active = false
	return b
}

// Build returns the constructed user
func (b *UserBuilder) Build() database.User {
	return b.user
}

// Create inserts the user and returns it with its ID. A user without an
// email is stored with a NULL email so several of them fit the unique index.
func (b *UserBuilder) Create(t *testing.T, db *gorm.DB) database.User {
	t.Helper()
	u := b.Build()
	if u.Email == "" {
		if err := db.Omit("email").Create(&u).Error; err != nil {
			t.Fatalf("failed to create user without email: %v", err)
		}
		return u
	}
	MustCreate(t, db, &u)
	return u
}

// ========================================
// Claim Builder
// ========================================

// ClaimBuilder builds Claim instances for testing
type ClaimBuilder struct {
	claim database.Claim
}

// NewClaimBuilder creates a new claim in status new
func NewClaimBuilder() *ClaimBuilder {
	n := nextSeq()
	now := time.Now().UTC()
	return &ClaimBuilder{
		claim: database.Claim{
			OrderID:       fmt.Sprintf("ORD-%d", n),
			ClaimNumber:   fmt.Sprintf("CLAIM-T%07d", n),
			CustomerName:  "Test Customer",
			CustomerEmail: "customer@example.com",
			Status:        database.ClaimStatusNew,
			CreatedBy:     1,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

// WithOrderID sets the order reference
func (b *ClaimBuilder) WithOrderID(id string) *ClaimBuilder {
	b.claim.OrderID = id
	return b
}

// WithClaimNumber sets the claim number
func (b *ClaimBuilder) WithClaimNumber(number string) *ClaimBuilder {
	b.claim.ClaimNumber = number
	return b
}

// WithCategory sets the category id
func (b *ClaimBuilder) WithCategory(id uint) *ClaimBuilder {
	b.claim.CategoryID = id
	return b
}

// WithStatus sets the status
func (b *ClaimBuilder) WithStatus(status database.ClaimStatus) *ClaimBuilder {
	b.claim.Status = status
	return b
}

// WithCreatedBy sets the creating user
func (b *ClaimBuilder) WithCreatedBy(id uint) *ClaimBuilder {
	b.claim.CreatedBy = id
	return b
}

// WithCustomerEmail sets the customer email
func (b *ClaimBuilder) WithCustomerEmail(email string) *ClaimBuilder {
	b.claim.CustomerEmail = email
	return b
}

// CreatedAt sets creation and update time
func (b *ClaimBuilder) CreatedAt(t time.Time) *ClaimBuilder {
	b.claim.CreatedAt = t
	b.claim.UpdatedAt = t
	return b
}

// Build returns the constructed claim
func (b *ClaimBuilder) Build() database.Claim {
	return b.claim
}

// Create inserts the claim and returns it with its ID
func (b *ClaimBuilder) Create(t *testing.T, db *gorm.DB) database.Claim {
	t.Helper()
	c := b.Build()
	MustCreate(t, db, &c)
	return c
}
