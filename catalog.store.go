package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RemovalState reports the outcome of one step of the two-step delete.
type RemovalState string

const (
	// RemovalArmed means the record is now pending confirmation.
	RemovalArmed RemovalState = "armed"
	// RemovalDeleted means the record was removed from the collection.
	RemovalDeleted RemovalState = "deleted"
	// RemovalAbsent means no record carries the given id.
	RemovalAbsent RemovalState = "absent"
)

// CatalogProvider defines the operations available on the catalog.
type CatalogProvider interface {
	Load(ctx context.Context) error
	List(ctx context.Context) []Book
	Get(ctx context.Context, id string) (Book, error)
	Add(ctx context.Context, draft BookDraft) (Book, error)
	Update(ctx context.Context, id string, patch BookPatch) (Book, error)
	Remove(ctx context.Context, id string) (RemovalState, time.Time, error)
	Replace(ctx context.Context, books []Book) (int, error)
}

// CatalogStore owns the in-memory collection and mediates every mutation.
// Each successful mutation is synchronously persisted as a full snapshot
// and the snapshot is offered to the mirror observer. All mutators reject
// callers whose context does not carry a verified privileged session,
// regardless of what the routing layer already enforced.
type CatalogStore struct {
	logger  *zap.Logger
	config  *Config
	clock   Clocker
	ids     UIDHandler
	storage SnapshotStorage
	mirror  SnapshotNotifier

	mu    sync.RWMutex
	books []Book
	armed map[string]time.Time // record id -> delete confirmation deadline
}

// NewCatalogStore provides a ready to use CatalogStore. The mirror
// notifier may be nil when no secondary backend is configured.
func NewCatalogStore(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, storage SnapshotStorage, mirror SnapshotNotifier) *CatalogStore {
	return &CatalogStore{
		logger:  logger,
		config:  config,
		clock:   clock,
		ids:     ids,
		storage: storage,
		mirror:  mirror,
		books:   []Book{},
		armed:   make(map[string]time.Time),
	}
}

// Load initializes the collection from the persisted snapshot. An absent,
// empty or corrupt snapshot falls back to the bundled bootstrap dataset,
// and an unavailable dataset falls back to an empty collection. Load
// never fails the process over bad data.
func (cs *CatalogStore) Load(ctx context.Context) error {
	books, err := cs.storage.Load(ctx)
	switch {
	case err == ErrNoSnapshot:
		cs.logger.Info("catalog: no persisted snapshot, trying bootstrap dataset")
		books = cs.bootstrap(ctx)
	case err != nil:
		cs.logger.Warn("catalog: persisted snapshot unreadable, trying bootstrap dataset", zap.Error(err))
		books = cs.bootstrap(ctx)
	case len(books) == 0:
		cs.logger.Info("catalog: persisted snapshot empty, trying bootstrap dataset")
		books = cs.bootstrap(ctx)
	}

	cs.mu.Lock()
	cs.books = books
	cs.mu.Unlock()
	cs.logger.Info("catalog: collection loaded", zap.Int("catalog.size", len(books)))
	return nil
}

// bootstrap reads the bundled default dataset and adopts it verbatim as
// the initial collection, persisting it right away. Any failure yields
// an empty collection.
func (cs *CatalogStore) bootstrap(ctx context.Context) []Book {
	if cs.config.Catalog.BootstrapFile == "" {
		return []Book{}
	}
	blob, err := os.ReadFile(cs.config.Catalog.BootstrapFile)
	if err != nil {
		cs.logger.Warn("catalog: bootstrap dataset unavailable", zap.Error(err))
		return []Book{}
	}
	var books []Book
	if err = json.Unmarshal(blob, &books); err != nil {
		cs.logger.Warn("catalog: bootstrap dataset unreadable", zap.Error(err))
		return []Book{}
	}
	cs.persist(ctx, books)
	cs.logger.Info("catalog: bootstrap dataset adopted", zap.Int("catalog.size", len(books)))
	return books
}

// List returns a copy of the full collection, ordered as stored.
func (cs *CatalogStore) List(_ context.Context) []Book {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]Book, len(cs.books))
	copy(out, cs.books)
	return out
}

// Get returns the record carrying the given id.
func (cs *CatalogStore) Get(_ context.Context, id string) (Book, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	for _, b := range cs.books {
		if b.ID == id {
			return b, nil
		}
	}
	return Book{}, ErrBookNotFound
}

// Add validates the draft, fills its omitted fields with defaults,
// assigns a fresh id and prepends the record to the collection.
func (cs *CatalogStore) Add(ctx context.Context, draft BookDraft) (Book, error) {
	if !IsAdminContext(ctx) {
		return Book{}, ErrNotPrivileged
	}
	if err := ValidateBookDraft(&draft); err != nil {
		return Book{}, err
	}

	book := Book{
		ID:          cs.ids.Generate(BookIDPrefix),
		Title:       strings.TrimSpace(draft.Title),
		Author:      strings.TrimSpace(draft.Author),
		Year:        draft.Year,
		Description: draft.Description,
		Rating:      draft.Rating,
		Status:      draft.Status,
		CoverURL:    NormalizeCoverURL(draft.CoverURL),
		Genres:      SanitizeTags(draft.Genres),
	}
	if book.Year <= 0 {
		book.Year = cs.clock.Now().Year()
	}
	if book.Status == "" {
		book.Status = StatusPending
	}
	if book.CoverURL == "" {
		book.CoverURL = StockCoverURL
	}

	cs.mu.Lock()
	cs.books = append([]Book{book}, cs.books...)
	snapshot := cs.snapshot()
	cs.mu.Unlock()

	cs.persist(ctx, snapshot)
	return book, nil
}

// Update merges the present patch fields over the stored record. A
// missing id surfaces as an explicit not-found error instead of the
// silent no-op of earlier revisions. A merged year at or below zero
// re-defaults to the current year, like on create.
func (cs *CatalogStore) Update(ctx context.Context, id string, patch BookPatch) (Book, error) {
	if !IsAdminContext(ctx) {
		return Book{}, ErrNotPrivileged
	}
	if err := ValidateBookPatch(&patch); err != nil {
		return Book{}, err
	}

	cs.mu.Lock()
	idx := -1
	for i, b := range cs.books {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		cs.mu.Unlock()
		return Book{}, ErrBookNotFound
	}
	merged := patch.Merge(cs.books[idx])
	if merged.Year <= 0 {
		merged.Year = cs.clock.Now().Year()
	}
	cs.books[idx] = merged
	snapshot := cs.snapshot()
	cs.mu.Unlock()

	cs.persist(ctx, snapshot)
	return merged, nil
}

// Remove drives the two-step delete confirmation. The first call arms
// the record and returns the confirmation deadline; a second call before
// the deadline removes it. Once the deadline passed the record must be
// armed again. Removing an absent id is a no-op, not an error.
func (cs *CatalogStore) Remove(ctx context.Context, id string) (RemovalState, time.Time, error) {
	if !IsAdminContext(ctx) {
		return "", time.Time{}, ErrNotPrivileged
	}

	now := cs.clock.Now()
	cs.mu.Lock()

	if deadline, ok := cs.armed[id]; ok {
		delete(cs.armed, id)
		if now.Before(deadline) {
			idx := -1
			for i, b := range cs.books {
				if b.ID == id {
					idx = i
					break
				}
			}
			if idx == -1 {
				cs.mu.Unlock()
				return RemovalAbsent, time.Time{}, nil
			}
			cs.books = append(cs.books[:idx], cs.books[idx+1:]...)
			snapshot := cs.snapshot()
			cs.mu.Unlock()

			cs.persist(ctx, snapshot)
			return RemovalDeleted, time.Time{}, nil
		}
		// deadline passed: fall through and arm again.
	}

	exists := false
	for _, b := range cs.books {
		if b.ID == id {
			exists = true
			break
		}
	}
	if !exists {
		cs.mu.Unlock()
		return RemovalAbsent, time.Time{}, nil
	}

	deadline := now.Add(cs.config.Catalog.DeleteConfirmWindow)
	cs.armed[id] = deadline
	cs.mu.Unlock()
	return RemovalArmed, deadline, nil
}

// Replace swaps the whole collection wholesale and persists it. Used by
// the import gateway. It returns the number of records adopted.
func (cs *CatalogStore) Replace(ctx context.Context, books []Book) (int, error) {
	if !IsAdminContext(ctx) {
		return 0, ErrNotPrivileged
	}

	adopted := make([]Book, len(books))
	copy(adopted, books)

	cs.mu.Lock()
	cs.books = adopted
	cs.armed = make(map[string]time.Time)
	snapshot := cs.snapshot()
	cs.mu.Unlock()

	cs.persist(ctx, snapshot)
	return len(adopted), nil
}

// snapshot copies the collection for persistence. Callers hold the mutex.
func (cs *CatalogStore) snapshot() []Book {
	out := make([]Book, len(cs.books))
	copy(out, cs.books)
	return out
}

// persist writes the full snapshot to the primary storage and offers it
// to the mirror. A failed write is logged and does not undo the applied
// mutation: the in-memory collection stays the source of truth.
func (cs *CatalogStore) persist(ctx context.Context, snapshot []Book) {
	if err := cs.storage.Save(ctx, snapshot); err != nil {
		cs.logger.Error("catalog: failed to persist snapshot", zap.Int("catalog.size", len(snapshot)), zap.Error(err))
	}
	if cs.mirror != nil {
		cs.mirror.Notify(snapshot)
	}
}
