package main

import (
	"context"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

// MockSnapshotStorage implements a fake SnapshotStorage.
type MockSnapshotStorage struct {
	LoadFunc func(ctx context.Context) ([]Book, error)
	SaveFunc func(ctx context.Context, books []Book) error
}

// Load mocks the behavior of reading the persisted snapshot.
func (m *MockSnapshotStorage) Load(ctx context.Context) ([]Book, error) {
	return m.LoadFunc(ctx)
}

// Save mocks the behavior of persisting a snapshot.
func (m *MockSnapshotStorage) Save(ctx context.Context, books []Book) error {
	return m.SaveFunc(ctx, books)
}

// MockNotifier records each snapshot offered to the mirror.
type MockNotifier struct {
	Snapshots [][]Book
}

// Notify stores the offered snapshot for later assertions.
func (m *MockNotifier) Notify(books []Book) {
	m.Snapshots = append(m.Snapshots, books)
}

// MockClocker implements a fake Clocker whose time can be moved.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
// equals to `2023-07-02 00:00:00 +0000 UTC` in String format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// Advance moves the mocked time forward by the given duration.
func (mck *MockClocker) Advance(d time.Duration) {
	mck.MockNow = mck.MockNow.Add(d)
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
	calls     int
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	muid.calls++
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

// MockEnricher implements a fake Enricher.
type MockEnricher struct {
	SuggestDetailsFunc func(ctx context.Context, title string) (DetailSuggestion, error)
	AuthorBioFunc      func(ctx context.Context, author string) (string, error)
	GenerateCoverFunc  func(ctx context.Context, title, author string) (string, error)
}

// SuggestDetails mocks the detail suggestion call.
func (m *MockEnricher) SuggestDetails(ctx context.Context, title string) (DetailSuggestion, error) {
	return m.SuggestDetailsFunc(ctx, title)
}

// AuthorBio mocks the author biography call.
func (m *MockEnricher) AuthorBio(ctx context.Context, author string) (string, error) {
	return m.AuthorBioFunc(ctx, author)
}

// GenerateCover mocks the cover generation call.
func (m *MockEnricher) GenerateCover(ctx context.Context, title, author string) (string, error) {
	return m.GenerateCoverFunc(ctx, title, author)
}

// newTestCatalogConfig builds a minimal configuration for catalog tests.
func newTestCatalogConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			AdminSecret:         "test-secret",
			SessionTTL:          time.Hour,
			DeleteConfirmWindow: 3 * time.Second,
		},
	}
}

// newNopSnapshotStorage builds a storage mock which accepts everything
// and reports no persisted snapshot.
func newNopSnapshotStorage() *MockSnapshotStorage {
	return &MockSnapshotStorage{
		LoadFunc: func(_ context.Context) ([]Book, error) { return nil, ErrNoSnapshot },
		SaveFunc: func(_ context.Context, _ []Book) error { return nil },
	}
}
