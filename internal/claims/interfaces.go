// Package claims implements the warranty claim lifecycle: status transitions
// with an append-only audit trail, SLA deadline classification, approver
// routing and multi-item intake.
//
// Storage, directories and notification transports are consumed through the
// interfaces in this file; concrete implementations live in internal/store
// and internal/notify.
package claims

import (
	"context"
	"time"

	"github.com/warrantydesk/warrantydesk/internal/database"
)

// Store persists claims, items, notes and media. Implementations return an
// error matching ErrNotFound for missing rows.
type Store interface {
	GetClaim(ctx context.Context, id uint) (*database.Claim, error)
	// GetClaimForUpdate reads a claim and locks its row until the enclosing
	// transaction ends, where the backend supports row locks.
	GetClaimForUpdate(ctx context.Context, id uint) (*database.Claim, error)
	UpdateClaimStatus(ctx context.Context, id uint, status database.ClaimStatus, now time.Time) error
	UpdateClaimAssignee(ctx context.Context, id uint, assignee *uint, now time.Time) error
	InsertNote(ctx context.Context, note *database.ClaimNote) error
	InsertClaim(ctx context.Context, claim *database.Claim) error
	InsertItem(ctx context.Context, item *database.ClaimItem) error
	InsertMedia(ctx context.Context, media *database.ClaimMedia) error
	ListItems(ctx context.Context, claimID uint) ([]database.ClaimItem, error)
	ListNotes(ctx context.Context, claimID uint) ([]database.ClaimNote, error)
	ListOpenClaims(ctx context.Context) ([]database.Claim, error)

	// WithTransaction runs fn against a transactional Store. A non-nil
	// return from fn rolls everything back.
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}

// CategoryDirectory resolves category ids
type CategoryDirectory interface {
	GetCategory(ctx context.Context, id uint) (*database.Category, error)
}

// ApproverDirectory resolves users and approver roles
type ApproverDirectory interface {
	FindActiveUsersByRole(ctx context.Context, role database.ApproverRole) ([]database.User, error)
	GetUser(ctx context.Context, id uint) (*database.User, error)
}

// Notifier delivers the "new claim awaiting approval" message.
// A nil error means the message was handed to the transport.
type Notifier interface {
	SendClaimNotification(ctx context.Context, n *ClaimNotification) error
}

// StatusNotifier delivers status change messages
type StatusNotifier interface {
	SendStatusChange(ctx context.Context, n *StatusChangeNotification) error
}

// Actor is the staff user performing an operation
type Actor struct {
	UserID uint
	Name   string
}

func (a Actor) validate() error {
	if a.UserID == 0 {
		return newValidationError("actor", "is required")
	}
	return nil
}

// NotificationItem is a claim item joined with its category name
type NotificationItem struct {
	database.ClaimItem
	CategoryName string
}

// ClaimNotification is the payload handed to a Notifier for a routed claim
type ClaimNotification struct {
	Claim          database.Claim
	Items          []NotificationItem
	Recipients     []string
	ApproverRole   database.ApproverRole
	CreatorName    string
	CreatorEmail   string
	NotifyCustomer bool
	NotifyCreator  bool
}

// StatusChangeNotification is the payload handed to a StatusNotifier
type StatusChangeNotification struct {
	Claim     database.Claim
	OldStatus database.ClaimStatus
	NewStatus database.ClaimStatus
	Note      string
	Actor     Actor
}
