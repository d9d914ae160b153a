package jobs

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
)

// OpenClaimLister lists claims that still accrue SLA time
type OpenClaimLister interface {
	ListOpenClaims(ctx context.Context) ([]database.Claim, error)
}

// BreachReporter receives the claims found overdue or due today
type BreachReporter interface {
	ReportBreaches(ctx context.Context, entries []claims.SLAEntry) error
}

// SLAMonitor periodically reports open claims that are past or at their SLA
// deadline. It never changes claim state.
type SLAMonitor struct {
	lister     OpenClaimLister
	categories claims.CategoryDirectory
	clock      claims.Clock
	reporter   BreachReporter
}

// NewSLAMonitor creates a new SLA monitor. reporter may be nil to only log.
func NewSLAMonitor(lister OpenClaimLister, categories claims.CategoryDirectory, clock claims.Clock, reporter BreachReporter) *SLAMonitor {
	if clock == nil {
		clock = claims.SystemClock{}
	}
	return &SLAMonitor{
		lister:     lister,
		categories: categories,
		clock:      clock,
		reporter:   reporter,
	}
}

// CheckBreaches classifies every open claim and returns the breached and
// due-today ones, breached first and most overdue first
func (m *SLAMonitor) CheckBreaches(ctx context.Context) ([]claims.SLAEntry, error) {
	open, err := m.lister.ListOpenClaims(ctx)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	cache := make(map[uint]*database.Category)
	var breached, dueToday []claims.SLAEntry

	for _, c := range open {
		category, err := m.category(ctx, cache, c.CategoryID)
		if err != nil {
			log.Printf("SLA monitor: claim %s: category %d: %v", c.ClaimNumber, c.CategoryID, err)
		}
		entry := claims.SLAEntry{Claim: c, SLA: claims.ClaimSLA(&c, category, now)}
		if category != nil {
			entry.CategoryName = category.Name
		}
		switch entry.SLA.State {
		case claims.SLABreached:
			breached = append(breached, entry)
		case claims.SLADueToday:
			dueToday = append(dueToday, entry)
		}
	}

	sortByOverdue(breached)
	entries := append(breached, dueToday...)

	if len(entries) > 0 {
		log.Printf("SLA monitor: %d breached, %d due today (of %d open)", len(breached), len(dueToday), len(open))
		if m.reporter != nil {
			if err := m.reporter.ReportBreaches(ctx, entries); err != nil {
				log.Printf("SLA monitor: failed to report breaches: %v", err)
			}
		}
	}
	return entries, nil
}

func (m *SLAMonitor) category(ctx context.Context, cache map[uint]*database.Category, id uint) (*database.Category, error) {
	if id == 0 {
		return nil, nil
	}
	if c, ok := cache[id]; ok {
		return c, nil
	}
	c, err := m.categories.GetCategory(ctx, id)
	if errors.Is(err, claims.ErrNotFound) {
		cache[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cache[id] = c
	return c, nil
}

// sortByOverdue orders entries by days overdue, largest first. Ties keep
// the creation order from the listing.
func sortByOverdue(entries []claims.SLAEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SLA.DaysOverdue > entries[j].SLA.DaysOverdue
	})
}

// Start begins the periodic monitoring
func (m *SLAMonitor) Start(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			if _, err := m.CheckBreaches(ctx); err != nil {
				log.Printf("SLA monitor error: %v", err)
			}
			cancel()
		case <-stop:
			log.Println("SLA monitor stopped")
			return
		}
	}
}
