package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("key not found")

type IRedis interface {
	SetPayload(ctx context.Context, key string, payload []byte, expiration time.Duration) error
	GetPayload(ctx context.Context, key string) ([]byte, error)
	DeletePayload(ctx context.Context, key string) error
	Close() error
}

type redisClient struct {
	client *redis.Client
}

// New connects with REDIS_ADDRESS, REDIS_PASSWORD and REDIS_DB and fails when the server
// does not answer a ping.
func New() (IRedis, error) {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logrus.Info("Successfully connected to Redis")

	return &redisClient{client: client}, nil
}

func (r *redisClient) SetPayload(ctx context.Context, key string, payload []byte, expiration time.Duration) error {
	logrus.Debug(fmt.Sprintf("Setting payload for key %s with expiration %v", key, expiration))
	if err := r.client.Set(ctx, key, payload, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error setting payload for key %s: %v", key, err))
		return err
	}
	return nil
}

func (r *redisClient) GetPayload(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logrus.Debug(fmt.Sprintf("Payload not found for key %s", key))
		return nil, ErrNotFound
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting payload for key %s: %v", key, err))
		return nil, err
	}
	return val, nil
}

func (r *redisClient) DeletePayload(ctx context.Context, key string) error {
	result, err := r.client.Del(ctx, key).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error deleting payload for key %s: %v", key, err))
		return err
	}

	if result == 0 {
		logrus.Debug(fmt.Sprintf("Payload key %s not found for deletion", key))
	}
	return nil
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
