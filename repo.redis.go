package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisSnapshotStorage struct {
	logger *zap.Logger
	client *redis.Client
	key    string
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// NewRedisSnapshotStorage provides a redis-based catalog snapshot storage.
// The whole collection lives as one json string under a single key.
func NewRedisSnapshotStorage(logger *zap.Logger, client *redis.Client, key string) SnapshotStorage {
	return &redisSnapshotStorage{
		logger: logger,
		client: client,
		key:    key,
	}
}

// Load reads the persisted collection blob from the snapshot key.
func (rs *redisSnapshotStorage) Load(ctx context.Context) ([]Book, error) {
	blob, err := rs.client.Get(ctx, rs.key).Result()
	if err == redis.Nil {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	var books []Book
	if err = json.Unmarshal([]byte(blob), &books); err != nil {
		return nil, fmt.Errorf("corrupt catalog snapshot: %v", err)
	}
	return books, nil
}

// Save replaces the persisted collection blob with the given one.
func (rs *redisSnapshotStorage) Save(ctx context.Context, books []Book) error {
	blob, err := json.Marshal(books)
	if err != nil {
		return err
	}
	return rs.client.Set(ctx, rs.key, blob, 0).Err()
}
