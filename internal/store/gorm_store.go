// Package store implements the claims storage and directory interfaces on gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
)

// GormStore is a claims.Store, claims.CategoryDirectory and
// claims.ApproverDirectory backed by a gorm connection
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

// NewGormStore wraps db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying connection for read-only listing queries
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// WithTransaction runs fn inside a database transaction. Calls made on the
// Store passed to fn join the transaction; nested calls reuse it.
func (s *GormStore) WithTransaction(ctx context.Context, fn func(tx claims.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, inTx: true})
	})
}

// GetClaim loads a claim by id
func (s *GormStore) GetClaim(ctx context.Context, id uint) (*database.Claim, error) {
	var claim database.Claim
	if err := s.db.WithContext(ctx).First(&claim, id).Error; err != nil {
		return nil, notFound(err, "claim", id)
	}
	return &claim, nil
}

// GetClaimForUpdate loads a claim with SELECT ... FOR UPDATE when called
// inside a transaction. SQLite ignores the locking clause.
func (s *GormStore) GetClaimForUpdate(ctx context.Context, id uint) (*database.Claim, error) {
	q := s.db.WithContext(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var claim database.Claim
	if err := q.First(&claim, id).Error; err != nil {
		return nil, notFound(err, "claim", id)
	}
	return &claim, nil
}

// UpdateClaimStatus sets status and updated_at
func (s *GormStore) UpdateClaimStatus(ctx context.Context, id uint, status database.ClaimStatus, now time.Time) error {
	return s.db.WithContext(ctx).Model(&database.Claim{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}).Error
}

// UpdateClaimAssignee sets or clears assigned_to and bumps updated_at
func (s *GormStore) UpdateClaimAssignee(ctx context.Context, id uint, assignee *uint, now time.Time) error {
	return s.db.WithContext(ctx).Model(&database.Claim{}).Where("id = ?", id).Updates(map[string]interface{}{
		"assigned_to": assignee,
		"updated_at":  now,
	}).Error
}

// InsertNote appends an audit note
func (s *GormStore) InsertNote(ctx context.Context, note *database.ClaimNote) error {
	return s.db.WithContext(ctx).Create(note).Error
}

// InsertClaim stores a new claim header row
func (s *GormStore) InsertClaim(ctx context.Context, claim *database.Claim) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(claim).Error
}

// InsertItem stores a claim item
func (s *GormStore) InsertItem(ctx context.Context, item *database.ClaimItem) error {
	return s.db.WithContext(ctx).Create(item).Error
}

// InsertMedia stores a media reference
func (s *GormStore) InsertMedia(ctx context.Context, media *database.ClaimMedia) error {
	return s.db.WithContext(ctx).Create(media).Error
}

// ListItems returns the items of a claim in insertion order
func (s *GormStore) ListItems(ctx context.Context, claimID uint) ([]database.ClaimItem, error) {
	var items []database.ClaimItem
	err := s.db.WithContext(ctx).Where("claim_id = ?", claimID).Order("id ASC").Find(&items).Error
	return items, err
}

// ListNotes returns the audit trail of a claim, oldest first
func (s *GormStore) ListNotes(ctx context.Context, claimID uint) ([]database.ClaimNote, error) {
	var notes []database.ClaimNote
	err := s.db.WithContext(ctx).Where("claim_id = ?", claimID).Order("created_at ASC, id ASC").Find(&notes).Error
	return notes, err
}

// ListMedia returns the media references of a claim
func (s *GormStore) ListMedia(ctx context.Context, claimID uint) ([]database.ClaimMedia, error) {
	var media []database.ClaimMedia
	err := s.db.WithContext(ctx).Where("claim_id = ?", claimID).Order("id ASC").Find(&media).Error
	return media, err
}

// ListOpenClaims returns every claim whose status still accrues SLA time
func (s *GormStore) ListOpenClaims(ctx context.Context) ([]database.Claim, error) {
	var open []database.Claim
	err := s.db.WithContext(ctx).
		Where("status IN ?", database.OpenClaimStatuses()).
		Order("created_at ASC").
		Find(&open).Error
	return open, err
}

// ClaimFilter narrows ListClaims
type ClaimFilter struct {
	Status  database.ClaimStatus
	OrderID string
}

// ListClaims returns one page of claims, newest first, and the total match count
func (s *GormStore) ListClaims(ctx context.Context, filter ClaimFilter, offset, limit int) ([]database.Claim, int64, error) {
	q := s.db.WithContext(ctx).Model(&database.Claim{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.OrderID != "" {
		q = q.Where("order_id = ?", filter.OrderID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var page []database.Claim
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&page).Error
	return page, total, err
}

// ListCategories returns every category by name
func (s *GormStore) ListCategories(ctx context.Context) ([]database.Category, error) {
	var categories []database.Category
	err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetCategory loads a category by id
func (s *GormStore) GetCategory(ctx context.Context, id uint) (*database.Category, error) {
	var category database.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFound(err, "category", id)
	}
	return &category, nil
}

// FindActiveUsersByRole returns active users holding role, ordered by id
func (s *GormStore) FindActiveUsersByRole(ctx context.Context, role database.ApproverRole) ([]database.User, error) {
	if role.IsZero() {
		return nil, nil
	}
	var users []database.User
	err := s.db.WithContext(ctx).
		Where("approver_role = ? AND active = ?", role, true).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// GetUser loads a user by id
func (s *GormStore) GetUser(ctx context.Context, id uint) (*database.User, error) {
	var user database.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

// GetUserByEmail loads a user by email, case-insensitively
func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	var user database.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", email, claims.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

func notFound(err error, kind string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", kind, id, claims.ErrNotFound)
	}
	return err
}

var (
	_ claims.Store             = (*GormStore)(nil)
	_ claims.CategoryDirectory = (*GormStore)(nil)
	_ claims.ApproverDirectory = (*GormStore)(nil)
)
