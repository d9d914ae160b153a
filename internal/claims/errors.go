package claims

import (
	"errors"
	"fmt"
	"strings"

	"github.com/warrantydesk/warrantydesk/internal/database"
)

// Error kinds. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrPersistence   = errors.New("persistence failed")
	ErrNotification  = errors.New("notification failed")
)

// HeaderItem marks a ValidationError that belongs to the shared claim header
const HeaderItem = -1

// ValidationError describes one rejected input field
type ValidationError struct {
	Item    int // zero-based line item index, or HeaderItem
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path() + " " + e.Message
}

// Path returns "field" for header fields and "items[i].field" for item fields
func (e ValidationError) Path() string {
	if e.Item == HeaderItem {
		return e.Field
	}
	if e.Field == "" {
		return fmt.Sprintf("items[%d]", e.Item)
	}
	return fmt.Sprintf("items[%d].%s", e.Item, e.Field)
}

func (e ValidationError) Unwrap() error { return ErrValidation }

// ValidationErrors collects every field failure of a request
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (errs ValidationErrors) Unwrap() error { return ErrValidation }

// Fields returns path -> message, suitable for an API error envelope
func (errs ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Path()] = e.Message
	}
	return out
}

func newValidationError(field, message string) ValidationErrors {
	return ValidationErrors{{Item: HeaderItem, Field: field, Message: message}}
}

// TransitionError reports a failed status change with both statuses involved
type TransitionError struct {
	ClaimID   uint
	Current   database.ClaimStatus // empty when the claim could not be read
	Attempted string
	Err       error
}

func (e *TransitionError) Error() string {
	if e.Current == "" {
		return fmt.Sprintf("claim %d: transition to %q: %v", e.ClaimID, e.Attempted, e.Err)
	}
	return fmt.Sprintf("claim %d: transition from %q to %q: %v", e.ClaimID, e.Current, e.Attempted, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// IntakeError reports which line item a failed submission stopped on.
// Nothing from the submission was persisted.
type IntakeError struct {
	Item int
	SKU  string
	Err  error
}

func (e *IntakeError) Error() string {
	return fmt.Sprintf("claim intake failed at item %d (sku %s): %v", e.Item, e.SKU, e.Err)
}

func (e *IntakeError) Unwrap() error { return e.Err }

// AssigneeError reports that the user a claim was being assigned to could
// not be loaded. The claim itself was not touched.
type AssigneeError struct {
	UserID uint
	Err    error
}

func (e *AssigneeError) Error() string {
	return fmt.Sprintf("assignee %d: %v", e.UserID, e.Err)
}

func (e *AssigneeError) Unwrap() error { return e.Err }

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
