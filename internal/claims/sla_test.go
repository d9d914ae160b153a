package claims_test

import (
	"testing"
	"time"

	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeSLA(t *testing.T) {
	tests := []struct {
		name          string
		createdAt     time.Time
		slaDays       int
		now           time.Time
		status        database.ClaimStatus
		wantState     claims.SLAState
		wantRemaining int
		wantOverdue   int
	}{
		{"on track", day(1), 5, day(4), database.ClaimStatusInProgress, claims.SLAOnTrack, 2, 0},
		{"due today", day(1), 5, day(6), database.ClaimStatusInProgress, claims.SLADueToday, 0, 0},
		{"due today late in the day", day(1), 5, day(6).Add(23 * time.Hour), database.ClaimStatusNew, claims.SLADueToday, 0, 0},
		{"one day past deadline", day(1), 5, day(7), database.ClaimStatusInProgress, claims.SLABreached, -1, 1},
		{"two days past deadline", day(1), 5, day(8), database.ClaimStatusOnHold, claims.SLABreached, -2, 2},
		{"created at time of day", day(1).Add(23 * time.Hour), 5, day(6).Add(time.Hour), database.ClaimStatusNew, claims.SLADueToday, 0, 0},
		{"full window at creation", day(1), 3, day(1), database.ClaimStatusNew, claims.SLAOnTrack, 3, 0},
		{"approved still accrues", day(1), 2, day(10), database.ClaimStatusApproved, claims.SLABreached, -7, 7},
		{"unset sla uses default", day(1), 0, day(4), database.ClaimStatusNew, claims.SLAOnTrack, 4, 0},
		{"negative sla uses default", day(1), -3, day(8), database.ClaimStatusNew, claims.SLADueToday, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := claims.ComputeSLA(tt.createdAt, tt.slaDays, tt.now, tt.status)
			if got.State != tt.wantState {
				t.Errorf("State = %q, want %q", got.State, tt.wantState)
			}
			if got.DaysRemaining != tt.wantRemaining {
				t.Errorf("DaysRemaining = %d, want %d", got.DaysRemaining, tt.wantRemaining)
			}
			if got.DaysOverdue != tt.wantOverdue {
				t.Errorf("DaysOverdue = %d, want %d", got.DaysOverdue, tt.wantOverdue)
			}
		})
	}
}

func TestComputeSLA_Deadline(t *testing.T) {
	got := claims.ComputeSLA(day(1).Add(10*time.Hour), 0, day(2), database.ClaimStatusNew)
	if got.SLADays != database.DefaultSLADays {
		t.Errorf("SLADays = %d, want %d", got.SLADays, database.DefaultSLADays)
	}
	want := day(8).Add(10 * time.Hour)
	if !got.Deadline.Equal(want) {
		t.Errorf("Deadline = %v, want %v", got.Deadline, want)
	}
}

func TestComputeSLA_TerminalIsResolved(t *testing.T) {
	farFuture := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, status := range []database.ClaimStatus{database.ClaimStatusResolved, database.ClaimStatusRejected} {
		got := claims.ComputeSLA(day(1), 5, farFuture, status)
		if got.State != claims.SLAResolved {
			t.Errorf("%s: State = %q, want resolved", status, got.State)
		}
		if got.DaysOverdue != 0 || got.DaysRemaining != 0 {
			t.Errorf("%s: expected no day counts, got remaining=%d overdue=%d", status, got.DaysRemaining, got.DaysOverdue)
		}
	}
}

func TestComputeSLA_NonUTCInputs(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*60*60)
	// 2024-01-01 02:00 in UTC+5 is 2023-12-31 21:00 UTC
	created := time.Date(2024, 1, 1, 2, 0, 0, 0, zone)
	got := claims.ComputeSLA(created, 1, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), database.ClaimStatusNew)
	if got.State != claims.SLADueToday {
		t.Errorf("State = %q, want due_today (deadline %v)", got.State, got.Deadline)
	}
	if got.Deadline.Location() != time.UTC {
		t.Errorf("Deadline should be in UTC, got %v", got.Deadline.Location())
	}
}

func TestComputeSLA_Deterministic(t *testing.T) {
	a := claims.ComputeSLA(day(1), 5, day(9), database.ClaimStatusNew)
	b := claims.ComputeSLA(day(1), 5, day(9), database.ClaimStatusNew)
	if a != b {
		t.Errorf("same inputs gave %+v and %+v", a, b)
	}
}

func TestClaimSLA_UsesCategory(t *testing.T) {
	claim := &database.Claim{CreatedAt: day(1), Status: database.ClaimStatusNew}

	got := claims.ClaimSLA(claim, &database.Category{SLADays: 3}, day(2))
	if got.SLADays != 3 || got.DaysRemaining != 2 {
		t.Errorf("with category: got %+v", got)
	}

	got = claims.ClaimSLA(claim, nil, day(2))
	if got.SLADays != database.DefaultSLADays {
		t.Errorf("without category: SLADays = %d, want default", got.SLADays)
	}
}

func TestEffectiveSLADays(t *testing.T) {
	fast := &database.Category{SLADays: 3}
	slow := &database.Category{SLADays: 10}
	unset := &database.Category{}

	tests := []struct {
		name       string
		categories []*database.Category
		want       int
	}{
		{"none", nil, database.DefaultSLADays},
		{"single", []*database.Category{slow}, 10},
		{"minimum wins", []*database.Category{slow, fast}, 3},
		{"unset counts as default", []*database.Category{unset, slow}, database.DefaultSLADays},
		{"nil counts as default", []*database.Category{nil, fast}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := claims.EffectiveSLADays(tt.categories...); got != tt.want {
				t.Errorf("EffectiveSLADays() = %d, want %d", got, tt.want)
			}
		})
	}
}
