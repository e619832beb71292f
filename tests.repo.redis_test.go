package main

import (
	"context"
	"net"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startRedisDockerContainer(t *testing.T) (string, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Failed to start Dockertest: %+v", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Fatalf("Could not connect to Docker: %+v", err)
	}

	resource, err := pool.Run("redis", "7.0.10-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}

	// build address the container is listening on
	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))

	// ensure to wait for the container to be ready
	err = pool.Retry(func() error {
		var e error
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()

		e = client.Ping(context.Background()).Err()
		return e
	})

	if err != nil {
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return addr, destroyFunc
}

func TestRedisSnapshotStorage(t *testing.T) {
	addr, destroyFunc := startRedisDockerContainer(t)
	defer destroyFunc()
	rs := NewRedisSnapshotStorage(zap.NewNop(), redis.NewClient(&redis.Options{Addr: addr}), "test:catalog")

	snapshot := []Book{
		{ID: "b:1", Title: "Dune", Author: "Frank Herbert", Status: StatusRead, Genres: []string{"Sci-Fi"}},
		{ID: "b:2", Title: "Ubik", Author: "Philip K. Dick", Status: StatusPending},
	}

	t.Run("Load Absent Snapshot", func(t *testing.T) {
		// ensures an unwritten key reports no snapshot.
		_, err := rs.Load(context.Background())
		assert.ErrorIs(t, err, ErrNoSnapshot)
	})

	t.Run("Save Snapshot", func(t *testing.T) {
		// ensures we can persist a full snapshot.
		err := rs.Save(context.Background(), snapshot)
		assert.NoError(t, err)
	})

	t.Run("Load Snapshot", func(t *testing.T) {
		// ensures the persisted snapshot round trips.
		books, err := rs.Load(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, snapshot, books)
	})

	t.Run("Replace Snapshot", func(t *testing.T) {
		// ensures each save fully replaces the previous snapshot.
		err := rs.Save(context.Background(), snapshot[:1])
		assert.NoError(t, err)
		books, err := rs.Load(context.Background())
		assert.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "b:1", books[0].ID)
	})
}
