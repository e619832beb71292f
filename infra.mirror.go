package main

import (
	"context"

	"go.uber.org/zap"
)

// SnapshotNotifier is the observer contract the catalog store notifies
// after each persisted snapshot.
type SnapshotNotifier interface {
	Notify(books []Book)
}

var _ SnapshotNotifier = (*SnapshotMirror)(nil) // ensure SnapshotMirror implements SnapshotNotifier.

// SnapshotMirror replicates each persisted snapshot into the secondary
// storage backend, best effort. Notifications never block a mutation:
// under pressure intermediate snapshots are dropped and the latest wins,
// which is safe since every snapshot is a full replacement.
type SnapshotMirror struct {
	logger *zap.Logger
	target SnapshotStorage
	ch     chan []Book
}

// NewSnapshotMirror provides a ready to use SnapshotMirror.
func NewSnapshotMirror(logger *zap.Logger, target SnapshotStorage) *SnapshotMirror {
	return &SnapshotMirror{
		logger: logger,
		target: target,
		ch:     make(chan []Book, 1),
	}
}

// Notify offers a snapshot to the mirror without ever blocking the
// caller. A pending unconsumed snapshot is discarded in favor of the
// newer one.
func (m *SnapshotMirror) Notify(books []Book) {
	for {
		select {
		case m.ch <- books:
			return
		default:
		}
		select {
		case <-m.ch:
		default:
		}
	}
}

// Consume runs until the context is done, writing each received snapshot
// to the mirror target. Write failures are logged and never retried: the
// next mutation carries a fresher snapshot anyway.
func (m *SnapshotMirror) Consume(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("mirror: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		case snapshot := <-m.ch:
			if err := m.target.Save(ctx, snapshot); err != nil {
				m.logger.Error("mirror: failed to replicate snapshot", zap.Int("catalog.size", len(snapshot)), zap.Error(err))
			}
		}
	}
}
