package claims

import (
	"errors"
	"testing"

	"github.com/warrantydesk/warrantydesk/internal/database"
)

func TestValidationError_Path(t *testing.T) {
	tests := []struct {
		err  ValidationError
		want string
	}{
		{ValidationError{Item: HeaderItem, Field: "order_id"}, "order_id"},
		{ValidationError{Item: 0, Field: "sku"}, "items[0].sku"},
		{ValidationError{Item: 3}, "items[3]"},
	}
	for _, tt := range tests {
		if got := tt.err.Path(); got != tt.want {
			t.Errorf("Path() = %q, want %q", got, tt.want)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation list", newValidationError("note", "must not be empty"), ErrValidation},
		{"single validation", ValidationError{Item: 1, Field: "sku"}, ErrValidation},
		{"transition", &TransitionError{ClaimID: 1, Current: database.ClaimStatusNew, Attempted: "x", Err: ErrInvalidStatus}, ErrInvalidStatus},
		{"intake", &IntakeError{Item: 0, SKU: "A", Err: persistenceError("insert", errors.New("boom"))}, ErrPersistence},
		{"classified", classifyStoreError(errors.New("driver: bad connection")), ErrPersistence},
		{"not found kept", classifyStoreError(ErrNotFound), ErrNotFound},
		{"assignee", &AssigneeError{UserID: 9, Err: ErrNotFound}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("%v does not match %v", tt.err, tt.kind)
			}
		})
	}
}

func TestTransitionError_Message(t *testing.T) {
	err := &TransitionError{ClaimID: 4, Current: database.ClaimStatusOnHold, Attempted: "closed", Err: ErrInvalidStatus}
	want := `claim 4: transition from "on_hold" to "closed": invalid status`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
