package sessionRepository

import (
	"MoodMate/internal/entity"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type memoryStore struct {
	cache *cache.Cache
}

// NewMemory keeps sessions in process for ttl after their last write and purges expired
// ones every 10 minutes.
func NewMemory(ttl time.Duration, log *logrus.Logger) Repository {
	return newRepository(&memoryStore{
		cache: cache.New(ttl, 10*time.Minute),
	}, log)
}

func (m *memoryStore) get(_ context.Context, id string) (*entity.MoodSession, error) {
	if x, found := m.cache.Get(id); found {
		return x.(*entity.MoodSession).Clone(), nil
	}
	return nil, errNotFound
}

func (m *memoryStore) save(_ context.Context, s *entity.MoodSession) error {
	m.cache.Set(s.ID, s.Clone(), cache.DefaultExpiration)
	return nil
}

func (m *memoryStore) delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}
