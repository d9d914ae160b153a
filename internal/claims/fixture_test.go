package claims_test

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
	"github.com/warrantydesk/warrantydesk/internal/store"
	"github.com/warrantydesk/warrantydesk/internal/testhelpers"
)

var testNow = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	store    *store.GormStore
	clock    *claims.FixedClock
	notifier *testhelpers.MockNotifier
	staff    database.User
	actor    claims.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testhelpers.NewTestDB(t)
	staff := testhelpers.NewUserBuilder().WithName("Dana Staff").WithEmail("dana@shop.test").Create(t, db)
	return &fixture{
		db:       db,
		store:    store.NewGormStore(db),
		clock:    claims.NewFixedClock(testNow),
		notifier: testhelpers.NewMockNotifier(),
		staff:    staff,
		actor:    claims.Actor{UserID: staff.ID, Name: staff.Name},
	}
}

func (f *fixture) lifecycle() *claims.Lifecycle {
	return claims.NewLifecycle(f.store, f.store, f.store, f.clock)
}

func (f *fixture) router(opts claims.RouterOptions) *claims.Router {
	return claims.NewRouter(f.store, f.store, f.notifier, opts)
}

func (f *fixture) intake() *claims.Intake {
	return claims.NewIntake(f.store, f.store, f.router(claims.RouterOptions{}), f.clock)
}

func (f *fixture) claimCount(t *testing.T) int64 {
	t.Helper()
	return testhelpers.CountRows(t, f.db, &database.Claim{})
}

func (f *fixture) notes(t *testing.T, claimID uint) []database.ClaimNote {
	t.Helper()
	notes, err := f.store.ListNotes(t.Context(), claimID)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	return notes
}

func (f *fixture) reload(t *testing.T, claimID uint) *database.Claim {
	t.Helper()
	claim, err := f.store.GetClaim(t.Context(), claimID)
	if err != nil {
		t.Fatalf("GetClaim(%d): %v", claimID, err)
	}
	return claim
}
