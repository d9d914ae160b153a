package handlers

import (
	"net/http"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
	"github.com/warrantydesk/warrantydesk/internal/middleware"
	"github.com/warrantydesk/warrantydesk/internal/store"
	"github.com/warrantydesk/warrantydesk/internal/testhelpers"
)

var testNow = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

// testServer wires the handlers the way the service binary does, on sqlite
type testServer struct {
	db       *gorm.DB
	store    *store.GormStore
	clock    *claims.FixedClock
	notifier *testhelpers.MockNotifier
	jwt      *middleware.JWTAuthMiddleware
	staff    database.User
	token    string
	handler  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testhelpers.NewTestDB(t)
	st := store.NewGormStore(db)
	clock := claims.NewFixedClock(testNow)
	notifier := testhelpers.NewMockNotifier()

	hash, err := middleware.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	staff := testhelpers.NewUserBuilder().
		WithName("Dana Staff").
		WithEmail("dana@shop.test").
		WithPasswordHash(hash).
		Create(t, db)

	jwtAuth := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{
		JWTSecret:      "test-secret",
		JWTExpiryHours: 1,
		SkipPaths:      []string{"/health", "/auth/login"},
	})
	jwtAuth.SetUserLookup(st)
	token, _, err := jwtAuth.GenerateToken(&staff)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	router := claims.NewRouter(st, st, notifier, claims.RouterOptions{})
	intake := claims.NewIntake(st, st, router, clock)
	lifecycle := claims.NewLifecycle(st, st, st, clock)

	mux := http.NewServeMux()
	NewHTTPHandler(nil).SetupRoutes(mux)
	NewAuthHandler(jwtAuth, st).SetupRoutes(mux)
	NewClaimsHandler(intake, lifecycle, st, clock).SetupRoutes(mux)

	return &testServer{
		db:       db,
		store:    st,
		clock:    clock,
		notifier: notifier,
		jwt:      jwtAuth,
		staff:    staff,
		token:    token,
		handler:  jwtAuth.Wrap(mux),
	}
}

// do runs an authenticated request
func (s *testServer) do(t *testing.T, method, path string, body interface{}) *testhelpers.HTTPTestContext {
	t.Helper()
	ctx := testhelpers.NewHTTPTestContext(t, method, path, nil)
	if body != nil {
		ctx.WithJSONBody(body)
	}
	return ctx.WithBearerToken(s.token).Execute(s.handler)
}

func (s *testServer) category(t *testing.T, slaDays int, role database.ApproverRole) database.Category {
	t.Helper()
	return testhelpers.NewCategoryBuilder().WithSLADays(slaDays).WithApprover(role).Create(t, s.db)
}

func (s *testServer) claim(t *testing.T, categoryID uint) database.Claim {
	t.Helper()
	return testhelpers.NewClaimBuilder().
		WithCategory(categoryID).
		WithCreatedBy(s.staff.ID).
		CreatedAt(testNow).
		Create(t, s.db)
}
