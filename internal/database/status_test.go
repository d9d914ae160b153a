package database

import "testing"

func TestParseClaimStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    ClaimStatus
		wantErr bool
	}{
		{"new", ClaimStatusNew, false},
		{"in_progress", ClaimStatusInProgress, false},
		{"  on_hold ", ClaimStatusOnHold, false},
		{"resolved", ClaimStatusResolved, false},
		{"Resolved", "", true},
		{"closed", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseClaimStatus(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClaimStatus(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseClaimStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestClaimStatus_Sets(t *testing.T) {
	open := make(map[ClaimStatus]bool)
	for _, s := range OpenClaimStatuses() {
		open[s] = true
		if s.IsTerminal() {
			t.Errorf("open status %q reports terminal", s)
		}
	}
	for _, s := range ValidClaimStatuses() {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
		if !open[s] && !s.IsTerminal() {
			t.Errorf("%q is neither open nor terminal", s)
		}
	}
	if len(ValidClaimStatuses()) != 6 {
		t.Errorf("expected 6 statuses, got %d", len(ValidClaimStatuses()))
	}
}

func TestClaimStatus_IsBeingWorked(t *testing.T) {
	for _, s := range ValidClaimStatuses() {
		want := s == ClaimStatusInProgress || s == ClaimStatusApproved
		if got := s.IsBeingWorked(); got != want {
			t.Errorf("%q.IsBeingWorked() = %v, want %v", s, got, want)
		}
	}
}

func TestClaimStatus_Label(t *testing.T) {
	tests := map[ClaimStatus]string{
		ClaimStatusNew:        "New",
		ClaimStatusInProgress: "In Progress",
		ClaimStatusOnHold:     "On Hold",
		ClaimStatusResolved:   "Resolved",
	}
	for status, want := range tests {
		if got := status.Label(); got != want {
			t.Errorf("%q.Label() = %q, want %q", status, got, want)
		}
	}
}

func TestParseApproverRole(t *testing.T) {
	tests := []struct {
		raw     string
		want    ApproverRole
		wantErr bool
	}{
		{"", "", false},
		{"   ", "", false},
		{"QA", "QA", false},
		{" Finance ", "Finance", false},
		{"Tier 2_support-desk", "Tier 2_support-desk", false},
		{"-leading", "", true},
		{"qa;drop", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseApproverRole(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseApproverRole(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseApproverRole(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}

	if !ApproverRole(" ").IsZero() || ApproverRole("QA").IsZero() {
		t.Error("IsZero mismatch")
	}
}
