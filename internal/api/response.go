package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
)

// ErrorResponse is the error envelope returned by every endpoint.
// Details carries field paths such as "items[0].sku" for validation errors.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// TransitionErrorResponse is returned when a status value is rejected.
// CurrentStatus is empty when the claim could not be read.
type TransitionErrorResponse struct {
	ErrorResponse
	CurrentStatus   database.ClaimStatus   `json:"current_status,omitempty"`
	AttemptedStatus string                 `json:"attempted_status"`
	ValidStatuses   []database.ClaimStatus `json:"valid_statuses"`
}

// Error codes used in ErrorResponse.Code
const (
	CodeValidation    = "validation_error"
	CodeInvalidStatus = "invalid_status"
	CodeIntakeFailed  = "intake_failed"
)

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("API: Failed to encode %T response: %v", data, err)
	}
}

// RespondError writes an error envelope with only a message.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondErrorWithCode writes an error envelope with a machine-readable code.
func RespondErrorWithCode(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// RespondValidationError writes field errors as a 422.
func RespondValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	RespondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "Validation failed",
		Code:    CodeValidation,
		Details: fieldErrors,
	})
}

// RespondTransitionError writes a rejected status change as a 400 naming the
// claim's current status, the attempted value and every accepted status.
func RespondTransitionError(w http.ResponseWriter, terr *claims.TransitionError) {
	RespondJSON(w, http.StatusBadRequest, TransitionErrorResponse{
		ErrorResponse: ErrorResponse{
			Error: fmt.Sprintf("Invalid status %q", terr.Attempted),
			Code:  CodeInvalidStatus,
		},
		CurrentStatus:   terr.Current,
		AttemptedStatus: terr.Attempted,
		ValidStatuses:   database.ValidClaimStatuses(),
	})
}

// RespondClaimError maps an error returned by the claims package onto a
// response. op names the failed operation in logs and 500 messages.
func RespondClaimError(w http.ResponseWriter, err error, op string) {
	var verrs claims.ValidationErrors
	var terr *claims.TransitionError
	var aerr *claims.AssigneeError
	var ierr *claims.IntakeError

	switch {
	case errors.As(err, &verrs):
		RespondValidationError(w, verrs.Fields())
	case errors.Is(err, claims.ErrInvalidStatus) && errors.As(err, &terr):
		RespondTransitionError(w, terr)
	case errors.Is(err, claims.ErrNotFound) && errors.As(err, &aerr):
		RespondError(w, http.StatusNotFound, "Assignee not found")
	case errors.Is(err, claims.ErrNotFound):
		RespondError(w, http.StatusNotFound, "Claim not found")
	case errors.As(err, &ierr):
		log.Printf("API: Failed to %s: %v", op, err)
		RespondErrorWithCode(w, http.StatusInternalServerError, CodeIntakeFailed,
			fmt.Sprintf("Failed to create claim for item %d (SKU %s)", ierr.Item, ierr.SKU))
	default:
		log.Printf("API: Failed to %s: %v", op, err)
		RespondError(w, http.StatusInternalServerError, "Failed to "+op)
	}
}
