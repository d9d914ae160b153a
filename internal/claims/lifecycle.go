package claims

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/warrantydesk/warrantydesk/internal/database"
)

// Lifecycle applies status transitions, assignments and notes to claims
type Lifecycle struct {
	store      Store
	categories CategoryDirectory
	users      ApproverDirectory
	clock      Clock
	notifier   StatusNotifier
}

// NewLifecycle creates a lifecycle service. clock may be nil for the system clock.
func NewLifecycle(store Store, categories CategoryDirectory, users ApproverDirectory, clock Clock) *Lifecycle {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Lifecycle{
		store:      store,
		categories: categories,
		users:      users,
		clock:      clock,
	}
}

// SetStatusNotifier enables best-effort notification after committed status changes
func (l *Lifecycle) SetStatusNotifier(n StatusNotifier) {
	l.notifier = n
}

// TransitionResult describes what a Transition call persisted
type TransitionResult struct {
	Claim     *database.Claim
	Note      *database.ClaimNote // nil when nothing was written
	OldStatus database.ClaimStatus
	Changed   bool
}

// DefaultTransitionNote is the note recorded when a status change has no text
func DefaultTransitionNote(from, to database.ClaimStatus) string {
	return fmt.Sprintf("Status changed from %s to %s", from.Label(), to.Label())
}

// Transition moves a claim to newStatus and records the audit note in the
// same transaction. A blank note on a real change gets the default text.
// Re-applying the current status writes only an explicitly supplied note.
func (l *Lifecycle) Transition(ctx context.Context, claimID uint, newStatus string, note string, actor Actor) (*TransitionResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}

	target, err := database.ParseClaimStatus(newStatus)
	if err != nil {
		current := database.ClaimStatus("")
		if claim, getErr := l.store.GetClaim(ctx, claimID); getErr == nil {
			current = claim.Status
		}
		return nil, &TransitionError{ClaimID: claimID, Current: current, Attempted: newStatus, Err: ErrInvalidStatus}
	}

	// whitespace-only counts as no note; anything else is stored as given
	if strings.TrimSpace(note) == "" {
		note = ""
	}
	result := &TransitionResult{}

	err = l.store.WithTransaction(ctx, func(tx Store) error {
		claim, err := tx.GetClaimForUpdate(ctx, claimID)
		if err != nil {
			return err
		}
		result.Claim = claim
		result.OldStatus = claim.Status

		if claim.Status == target {
			if note == "" {
				return nil
			}
			plain := &database.ClaimNote{
				ClaimID:   claimID,
				Note:      note,
				CreatedBy: actor.UserID,
				CreatedAt: l.clock.Now(),
			}
			if err := tx.InsertNote(ctx, plain); err != nil {
				return persistenceError("insert note", err)
			}
			result.Note = plain
			return nil
		}

		if note == "" {
			note = DefaultTransitionNote(claim.Status, target)
		}
		now := l.clock.Now()
		if err := tx.UpdateClaimStatus(ctx, claimID, target, now); err != nil {
			return persistenceError("update status", err)
		}

		from, to := claim.Status, target
		changed := &database.ClaimNote{
			ClaimID:       claimID,
			Note:          note,
			StatusChanged: true,
			OldStatus:     &from,
			NewStatus:     &to,
			CreatedBy:     actor.UserID,
			CreatedAt:     now,
		}
		if err := tx.InsertNote(ctx, changed); err != nil {
			return persistenceError("insert status note", err)
		}

		claim.Status = target
		claim.UpdatedAt = now
		result.Note = changed
		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, &TransitionError{
			ClaimID:   claimID,
			Current:   result.OldStatus,
			Attempted: newStatus,
			Err:       classifyStoreError(err),
		}
	}

	if result.Changed {
		log.Printf("Lifecycle: claim %d %s -> %s by user %d", claimID, result.OldStatus, target, actor.UserID)
		l.notifyStatusChange(ctx, result, actor)
	}
	return result, nil
}

// AddNote appends a plain note without touching the claim status
func (l *Lifecycle) AddNote(ctx context.Context, claimID uint, text string, actor Actor) (*database.ClaimNote, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, newValidationError("note", "must not be empty")
	}

	note := &database.ClaimNote{
		ClaimID:   claimID,
		Note:      text,
		CreatedBy: actor.UserID,
	}
	err := l.store.WithTransaction(ctx, func(tx Store) error {
		if _, err := tx.GetClaim(ctx, claimID); err != nil {
			return err
		}
		note.CreatedAt = l.clock.Now()
		if err := tx.InsertNote(ctx, note); err != nil {
			return persistenceError("insert note", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim %d: add note: %w", claimID, classifyStoreError(err))
	}
	return note, nil
}

// Assign sets or clears the assignee and records the change as a plain note
func (l *Lifecycle) Assign(ctx context.Context, claimID uint, assigneeID *uint, note string, actor Actor) (*database.Claim, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}

	var assignee *database.User
	if assigneeID != nil {
		u, err := l.users.GetUser(ctx, *assigneeID)
		if err != nil {
			return nil, &AssigneeError{UserID: *assigneeID, Err: classifyStoreError(err)}
		}
		assignee = u
	}
	if strings.TrimSpace(note) == "" {
		note = "Unassigned"
		if assignee != nil {
			note = "Assigned to " + assignee.DisplayName()
		}
	}

	var claim *database.Claim
	err := l.store.WithTransaction(ctx, func(tx Store) error {
		var err error
		claim, err = tx.GetClaimForUpdate(ctx, claimID)
		if err != nil {
			return err
		}
		now := l.clock.Now()
		if err := tx.UpdateClaimAssignee(ctx, claimID, assigneeID, now); err != nil {
			return persistenceError("update assignee", err)
		}
		entry := &database.ClaimNote{
			ClaimID:   claimID,
			Note:      note,
			CreatedBy: actor.UserID,
			CreatedAt: now,
		}
		if err := tx.InsertNote(ctx, entry); err != nil {
			return persistenceError("insert note", err)
		}
		claim.AssignedTo = assigneeID
		claim.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim %d: assign: %w", claimID, classifyStoreError(err))
	}
	return claim, nil
}

// SLAForClaim computes the SLA state of a stored claim at the current time
func (l *Lifecycle) SLAForClaim(ctx context.Context, claimID uint) (*database.Claim, SLAResult, error) {
	claim, err := l.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, SLAResult{}, fmt.Errorf("claim %d: %w", claimID, classifyStoreError(err))
	}
	category, err := l.categoryFor(ctx, claim)
	if err != nil {
		return nil, SLAResult{}, err
	}
	return claim, ClaimSLA(claim, category, l.clock.Now()), nil
}

// categoryFor resolves the claim's category. A dangling category id is
// treated as "no category" so SLA math falls back to the default.
func (l *Lifecycle) categoryFor(ctx context.Context, claim *database.Claim) (*database.Category, error) {
	if claim.CategoryID == 0 {
		return nil, nil
	}
	category, err := l.categories.GetCategory(ctx, claim.CategoryID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("get category", err)
	}
	return category, nil
}

func (l *Lifecycle) notifyStatusChange(ctx context.Context, result *TransitionResult, actor Actor) {
	if l.notifier == nil {
		return
	}
	n := &StatusChangeNotification{
		Claim:     *result.Claim,
		OldStatus: result.OldStatus,
		NewStatus: result.Claim.Status,
		Note:      result.Note.Note,
		Actor:     actor,
	}
	if err := l.notifier.SendStatusChange(ctx, n); err != nil {
		log.Printf("Lifecycle: %v", fmt.Errorf("%w: status change for claim %d: %v", ErrNotification, result.Claim.ID, err))
	}
}

// classifyStoreError keeps errors that already carry a kind and files
// everything else under ErrPersistence
func classifyStoreError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrPersistence):
		return err
	default:
		return persistenceError("transaction", err)
	}
}
