package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

type boltSnapshotStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BoltDB.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltSnapshotStorage provides a bolt-based catalog snapshot storage.
// The whole collection lives as one json blob under a single key.
func NewBoltSnapshotStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) SnapshotStorage {
	return &boltSnapshotStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the bolt-based snapshot storage.
func (bs *boltSnapshotStorage) Close() error {
	return bs.client.Close()
}

// Load reads the persisted collection blob. ErrNoSnapshot means the key
// was never written. An unmarshable blob surfaces as a plain error so
// the catalog can treat it as absent.
func (bs *boltSnapshotStorage) Load(_ context.Context) ([]Book, error) {
	tx, err := bs.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	blob := tx.Bucket([]byte(bs.config.BucketName)).Get([]byte(bs.config.SnapshotKey))
	if blob == nil {
		return nil, ErrNoSnapshot
	}
	var books []Book
	if err = json.Unmarshal(blob, &books); err != nil {
		return nil, fmt.Errorf("corrupt catalog snapshot: %v", err)
	}
	return books, nil
}

// Save replaces the persisted collection blob with the given one.
func (bs *boltSnapshotStorage) Save(_ context.Context, books []Book) error {
	blob, err := json.Marshal(books)
	if err != nil {
		return err
	}
	return bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bs.config.BucketName)).Put([]byte(bs.config.SnapshotKey), blob)
	})
}
