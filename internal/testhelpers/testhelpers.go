// Package testhelpers provides reusable testing utilities for WarrantyDesk.
//
// This package contains:
// - HTTP test helpers (creating requests, asserting responses)
// - An in-memory SQLite database with the service schema
// - Spy implementations of the claims notifier interfaces
// - Assertion helpers
package testhelpers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
)

// ========================================
// Database Helpers
// ========================================

// NewTestDB opens a fresh in-memory SQLite database with every service table.
// The pool is limited to one connection so all statements see the same
// in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// MustCreate inserts v or fails the test
func MustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("failed to create %T: %v", v, err)
	}
}

// CountRows returns the number of rows in model's table
func CountRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("failed to count %T: %v", model, err)
	}
	return n
}

// ========================================
// Notifier Spies
// ========================================

// MockNotifier records every claim notification it receives
type MockNotifier struct {
	mu    sync.Mutex
	Calls []claims.ClaimNotification
	Err   error
}

// NewMockNotifier creates a notifier spy that succeeds
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// WithError makes every call fail with err
func (m *MockNotifier) WithError(err error) *MockNotifier {
	m.Err = err
	return m
}

// SendClaimNotification implements claims.Notifier
func (m *MockNotifier) SendClaimNotification(ctx context.Context, n *claims.ClaimNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, *n)
	return m.Err
}

// CallCount returns the number of notifications received
func (m *MockNotifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockStatusNotifier records status change notifications
type MockStatusNotifier struct {
	mu    sync.Mutex
	Calls []claims.StatusChangeNotification
	Err   error
}

// SendStatusChange implements claims.StatusNotifier
func (m *MockStatusNotifier) SendStatusChange(ctx context.Context, n *claims.StatusChangeNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, *n)
	return m.Err
}

// CallCount returns the number of notifications received
func (m *MockStatusNotifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// ErrInjected is returned by FailingStore
var ErrInjected = errors.New("injected storage failure")

// FailingStore wraps a claims.Store and fails selected operations, including
// inside transactions
type FailingStore struct {
	claims.Store
	FailInsertNote   bool
	FailInsertItemAt int // 1-based call number of InsertItem to fail; 0 disables
	itemCalls        int
}

// WithTransaction wraps the transactional store so injected failures apply
func (f *FailingStore) WithTransaction(ctx context.Context, fn func(tx claims.Store) error) error {
	return f.Store.WithTransaction(ctx, func(tx claims.Store) error {
		inner := *f
		inner.Store = tx
		err := fn(&inner)
		f.itemCalls = inner.itemCalls
		return err
	})
}

// InsertNote fails when FailInsertNote is set
func (f *FailingStore) InsertNote(ctx context.Context, note *database.ClaimNote) error {
	if f.FailInsertNote {
		return ErrInjected
	}
	return f.Store.InsertNote(ctx, note)
}

// InsertItem fails on the configured call
func (f *FailingStore) InsertItem(ctx context.Context, item *database.ClaimItem) error {
	f.itemCalls++
	if f.FailInsertItemAt > 0 && f.itemCalls == f.FailInsertItemAt {
		return ErrInjected
	}
	return f.Store.InsertItem(ctx, item)
}

// ========================================
// HTTP Test Helpers
// ========================================

// HTTPTestContext holds components for HTTP handler testing
type HTTPTestContext struct {
	T        *testing.T
	Recorder *httptest.ResponseRecorder
	Request  *http.Request
}

// NewHTTPTestContext creates a new HTTP test context
func NewHTTPTestContext(t *testing.T, method, path string, body io.Reader) *HTTPTestContext {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	return &HTTPTestContext{
		T:        t,
		Recorder: httptest.NewRecorder(),
		Request:  req,
	}
}

// WithHeader adds a header to the request
func (ctx *HTTPTestContext) WithHeader(key, value string) *HTTPTestContext {
	ctx.Request.Header.Set(key, value)
	return ctx
}

// WithJSONBody sets JSON body on the request
func (ctx *HTTPTestContext) WithJSONBody(v interface{}) *HTTPTestContext {
	ctx.T.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		ctx.T.Fatalf("failed to marshal JSON body: %v", err)
	}
	req := httptest.NewRequest(ctx.Request.Method, ctx.Request.URL.String(), bytes.NewReader(body))
	req.Header = ctx.Request.Header.Clone()
	req.Header.Set("Content-Type", "application/json")
	ctx.Request = req.WithContext(ctx.Request.Context())
	return ctx
}

// WithContext replaces the request context
func (ctx *HTTPTestContext) WithContext(c context.Context) *HTTPTestContext {
	ctx.Request = ctx.Request.WithContext(c)
	return ctx
}

// WithBearerToken adds Authorization Bearer header
func (ctx *HTTPTestContext) WithBearerToken(token string) *HTTPTestContext {
	return ctx.WithHeader("Authorization", "Bearer "+token)
}

// Execute runs the handler and returns the response
func (ctx *HTTPTestContext) Execute(handler http.Handler) *HTTPTestContext {
	handler.ServeHTTP(ctx.Recorder, ctx.Request)
	return ctx
}

// AssertStatus checks the response status code
func (ctx *HTTPTestContext) AssertStatus(expected int) *HTTPTestContext {
	ctx.T.Helper()
	if ctx.Recorder.Code != expected {
		ctx.T.Errorf("expected status %d, got %d. Body: %s", expected, ctx.Recorder.Code, ctx.Recorder.Body.String())
	}
	return ctx
}

// AssertBodyContains checks if response body contains substring
func (ctx *HTTPTestContext) AssertBodyContains(substr string) *HTTPTestContext {
	ctx.T.Helper()
	body := ctx.Recorder.Body.String()
	if !strings.Contains(body, substr) {
		ctx.T.Errorf("expected body to contain %q, got: %s", substr, body)
	}
	return ctx
}

// DecodeJSON decodes response body as JSON
func (ctx *HTTPTestContext) DecodeJSON(v interface{}) *HTTPTestContext {
	ctx.T.Helper()
	if err := json.NewDecoder(ctx.Recorder.Body).Decode(v); err != nil {
		ctx.T.Fatalf("failed to decode JSON response: %v", err)
	}
	return ctx
}

// ========================================
// Assertion Helpers
// ========================================

// AssertErrorIs fails unless errors.Is(err, target)
func AssertErrorIs(t *testing.T, err, target error, msg string) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("%s: expected error matching %v, got %v", msg, target, err)
	}
}

// AssertNoError fails if err is not nil
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", msg, err)
	}
}

// AssertEqual compares two comparable values
func AssertEqual[T comparable](t *testing.T, expected, actual T, msg string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}
