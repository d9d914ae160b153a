package claims

import (
	"time"

	"github.com/warrantydesk/warrantydesk/internal/database"
)

// SLAState classifies a claim against its deadline
type SLAState string

const (
	SLAOnTrack  SLAState = "on_track"
	SLADueToday SLAState = "due_today"
	SLABreached SLAState = "breached"
	SLAResolved SLAState = "resolved"
)

// SLAResult is the outcome of ComputeSLA
type SLAResult struct {
	State         SLAState  `json:"state"`
	SLADays       int       `json:"sla_days"`
	Deadline      time.Time `json:"deadline"`
	DaysRemaining int       `json:"days_remaining"` // negative once breached
	DaysOverdue   int       `json:"days_overdue"`
}

// ComputeSLA classifies a claim created at createdAt with an SLA of slaDays,
// as seen at now. slaDays <= 0 falls back to database.DefaultSLADays.
//
// Day counts are whole calendar days between the deadline date and the
// current date, both taken in UTC, so a claim is DueToday for the whole
// deadline day.
func ComputeSLA(createdAt time.Time, slaDays int, now time.Time, status database.ClaimStatus) SLAResult {
	if slaDays <= 0 {
		slaDays = database.DefaultSLADays
	}
	deadline := createdAt.UTC().AddDate(0, 0, slaDays)

	result := SLAResult{
		SLADays:  slaDays,
		Deadline: deadline,
	}
	if status.IsTerminal() {
		result.State = SLAResolved
		return result
	}

	remaining := calendarDaysBetween(now.UTC(), deadline)
	result.DaysRemaining = remaining
	switch {
	case remaining < 0:
		result.State = SLABreached
		result.DaysOverdue = -remaining
	case remaining == 0:
		result.State = SLADueToday
	default:
		result.State = SLAOnTrack
	}
	return result
}

// ClaimSLA is ComputeSLA applied to a stored claim and its category
func ClaimSLA(claim *database.Claim, category *database.Category, now time.Time) SLAResult {
	return ComputeSLA(claim.CreatedAt, category.EffectiveSLADays(), now, claim.Status)
}

// SLAEntry pairs a claim with its SLA classification, for reports
type SLAEntry struct {
	Claim        database.Claim
	CategoryName string
	SLA          SLAResult
}

// EffectiveSLADays picks the strictest (smallest) SLA among the categories a
// claim touches. Nil entries and unset SLAs count as the default.
func EffectiveSLADays(categories ...*database.Category) int {
	if len(categories) == 0 {
		return database.DefaultSLADays
	}
	days := 0
	for _, c := range categories {
		d := c.EffectiveSLADays()
		if days == 0 || d < days {
			days = d
		}
	}
	return days
}

// calendarDaysBetween returns the number of calendar days from a's date to b's date
func calendarDaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
