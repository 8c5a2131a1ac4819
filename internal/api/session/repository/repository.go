package sessionRepository

import (
	"MoodMate/internal/entity"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type store interface {
	get(ctx context.Context, id string) (*entity.MoodSession, error)
	save(ctx context.Context, s *entity.MoodSession) error
	delete(ctx context.Context, id string) error
}

func newRepository(st store, log *logrus.Logger) Repository {
	return &repository{
		store: st,
		locks: newKeyedLock(),
		log:   log,
	}
}

type repository struct {
	store store
	locks *keyedLock
	log   *logrus.Logger
}

type Repository interface {
	NewClient(ctx context.Context, sessionID string, lock bool) (Client, error)
}

// NewClient returns a client for one session. With lock set the caller holds the session
// exclusively until Commit or Rollback, which must be called exactly once.
func (r *repository) NewClient(ctx context.Context, sessionID string, lock bool) (Client, error) {
	var commitFunc, rollbackFunc func() error

	if lock {
		release, err := r.locks.acquire(ctx, sessionID)
		if err != nil {
			return Client{}, err
		}

		var once sync.Once
		unlock := func() error {
			once.Do(release)
			return nil
		}
		commitFunc = unlock
		rollbackFunc = unlock
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Sessions: &sessionRepository{store: r.store, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type Client struct {
	Sessions interface {
		Create(ctx context.Context, id string, now time.Time) (*entity.MoodSession, error)
		Get(ctx context.Context, id string) (*entity.MoodSession, error)
		Save(ctx context.Context, s *entity.MoodSession) error
		Delete(ctx context.Context, id string) error
	}

	Commit   func() error
	Rollback func() error
}
