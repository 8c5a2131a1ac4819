package sessionRepository

import (
	"MoodMate/internal/entity"
	"MoodMate/pkg/redis"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const redisKeyPrefix = "moodmate:session:"

type redisStore struct {
	client redis.IRedis
	ttl    time.Duration
}

// NewRedis stores each session as one JSON value that expires ttl after its last write.
func NewRedis(client redis.IRedis, ttl time.Duration, log *logrus.Logger) Repository {
	return newRepository(&redisStore{client: client, ttl: ttl}, log)
}

func (r *redisStore) get(ctx context.Context, id string) (*entity.MoodSession, error) {
	payload, err := r.client.GetPayload(ctx, redisKeyPrefix+id)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, err
	}

	var s entity.MoodSession
	if err := jsoniter.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &s, nil
}

func (r *redisStore) save(ctx context.Context, s *entity.MoodSession) error {
	payload, err := jsoniter.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", s.ID, err)
	}
	return r.client.SetPayload(ctx, redisKeyPrefix+s.ID, payload, r.ttl)
}

func (r *redisStore) delete(ctx context.Context, id string) error {
	return r.client.DeletePayload(ctx, redisKeyPrefix+id)
}
