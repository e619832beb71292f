package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// Ensure the mirror replicates offered snapshots to its target and
// stops when the context dies.
func TestSnapshotMirror_Consume(t *testing.T) {
	var mu sync.Mutex
	var replicated [][]Book
	target := &MockSnapshotStorage{
		SaveFunc: func(_ context.Context, books []Book) error {
			mu.Lock()
			defer mu.Unlock()
			replicated = append(replicated, books)
			return nil
		},
	}
	mirror := NewSnapshotMirror(zap.NewNop(), target)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mirror.Consume(ctx) }()

	mirror.Notify([]Book{{ID: "b:1"}})
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(replicated) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

// Ensure the notification never blocks and the latest snapshot wins
// when nothing consumes the channel.
func TestSnapshotMirror_Notify_LatestWins(t *testing.T) {
	mirror := NewSnapshotMirror(zap.NewNop(), newNopSnapshotStorage())

	mirror.Notify([]Book{{ID: "b:1"}})
	mirror.Notify([]Book{{ID: "b:2"}})
	mirror.Notify([]Book{{ID: "b:3"}})

	snapshot := <-mirror.ch
	assert.Equal(t, "b:3", snapshot[0].ID)
}
