package database

import (
	"fmt"
	"regexp"
	"strings"
)

// ClaimStatus represents the lifecycle status of a claim
type ClaimStatus string

const (
	ClaimStatusNew        ClaimStatus = "new"
	ClaimStatusInProgress ClaimStatus = "in_progress"
	ClaimStatusOnHold     ClaimStatus = "on_hold"
	ClaimStatusApproved   ClaimStatus = "approved"
	ClaimStatusRejected   ClaimStatus = "rejected"
	ClaimStatusResolved   ClaimStatus = "resolved"
)

// ValidClaimStatuses returns every status a claim may hold, in workflow order
func ValidClaimStatuses() []ClaimStatus {
	return []ClaimStatus{
		ClaimStatusNew,
		ClaimStatusInProgress,
		ClaimStatusOnHold,
		ClaimStatusApproved,
		ClaimStatusRejected,
		ClaimStatusResolved,
	}
}

// OpenClaimStatuses returns the statuses that still accrue SLA time
func OpenClaimStatuses() []ClaimStatus {
	return []ClaimStatus{
		ClaimStatusNew,
		ClaimStatusInProgress,
		ClaimStatusOnHold,
		ClaimStatusApproved,
	}
}

// ParseClaimStatus converts a raw value into a ClaimStatus.
// Surrounding whitespace is ignored; matching is case-sensitive.
func ParseClaimStatus(raw string) (ClaimStatus, error) {
	s := ClaimStatus(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", fmt.Errorf("unknown claim status %q", raw)
	}
	return s, nil
}

// Valid reports whether s is one of the defined statuses
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusNew, ClaimStatusInProgress, ClaimStatusOnHold,
		ClaimStatusApproved, ClaimStatusRejected, ClaimStatusResolved:
		return true
	}
	return false
}

// IsTerminal returns true for statuses that stop SLA accrual
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusRejected || s == ClaimStatusResolved
}

// IsBeingWorked groups in_progress and approved for display
func (s ClaimStatus) IsBeingWorked() bool {
	return s == ClaimStatusInProgress || s == ClaimStatusApproved
}

// Label returns the human-readable form, e.g. "in_progress" -> "In Progress"
func (s ClaimStatus) Label() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ApproverRole names the role whose holders approve claims in a category.
// The empty role means "no approver".
type ApproverRole string

var approverRolePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _-]{0,63}$`)

// ParseApproverRole trims and validates a role name. An empty input yields
// the empty role without error.
func ParseApproverRole(raw string) (ApproverRole, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	if !approverRolePattern.MatchString(trimmed) {
		return "", fmt.Errorf("invalid approver role %q", raw)
	}
	return ApproverRole(trimmed), nil
}

// IsZero reports whether no role is set
func (r ApproverRole) IsZero() bool {
	return strings.TrimSpace(string(r)) == ""
}
