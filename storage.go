package main

import (
	"context"
	"errors"
)

// ErrNoSnapshot is returned by a snapshot storage when no collection
// has ever been persisted under the configured key.
var ErrNoSnapshot = errors.New("no catalog snapshot found")

// SnapshotStorage persists the whole collection as one keyed blob.
// There is no record-level persistence: every save is a full replace.
type SnapshotStorage interface {
	Load(ctx context.Context) ([]Book, error)
	Save(ctx context.Context, books []Book) error
}
