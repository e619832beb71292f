package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestBoltStorage returns a bolt snapshot storage over a temporary path.
func newTestBoltStorage(t *testing.T) *boltSnapshotStorage {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "tmp.bolt.db-")
	require.NoError(t, err)
	f.Close()
	testConfig := &Config{
		BoltDB: BoltDBConfig{
			FilePath:    f.Name(),
			Timeout:     5 * time.Second,
			BucketName:  "test.catalog",
			SnapshotKey: "test.snapshot",
		},
	}

	client, err := GetBoltDBClient(testConfig)
	require.NoError(t, err, "failed in creating a test bolt storage")

	bs := &boltSnapshotStorage{
		logger: zap.NewNop(),
		client: client,
		config: &testConfig.BoltDB,
	}
	t.Cleanup(func() { bs.Close() })
	return bs
}

// Ensure the bolt storage round trips a full snapshot.
func TestBoltSnapshotStorage(t *testing.T) {
	bs := newTestBoltStorage(t)

	// no snapshot persisted yet.
	_, err := bs.Load(context.TODO())
	assert.ErrorIs(t, err, ErrNoSnapshot)

	snapshot := []Book{
		{ID: "b:1", Title: "Dune", Author: "Frank Herbert", Status: StatusRead, Genres: []string{"Sci-Fi"}},
		{ID: "b:2", Title: "Ubik", Author: "Philip K. Dick", Status: StatusPending},
	}
	require.NoError(t, bs.Save(context.TODO(), snapshot))

	books, err := bs.Load(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, snapshot, books)

	// each save fully replaces the previous snapshot.
	require.NoError(t, bs.Save(context.TODO(), snapshot[:1]))
	books, err = bs.Load(context.TODO())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "b:1", books[0].ID)
}

// Ensure an unreadable blob surfaces as a plain error, not a panic.
func TestBoltSnapshotStorage_CorruptBlob(t *testing.T) {
	bs := newTestBoltStorage(t)
	err := bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bs.config.BucketName)).Put([]byte(bs.config.SnapshotKey), []byte("not json"))
	})
	require.NoError(t, err)

	_, err = bs.Load(context.TODO())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSnapshot)
}
