package sessionRepository

import (
	"MoodMate/internal/api/session"
	"MoodMate/internal/entity"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

var errNotFound = errors.New("session not found")

type sessionRepository struct {
	store store
	log   *logrus.Logger
}

func (r *sessionRepository) Create(ctx context.Context, id string, now time.Time) (*entity.MoodSession, error) {
	s := entity.NewMoodSession(id, now)
	if err := r.store.save(ctx, s); err != nil {
		r.log.WithFields(logrus.Fields{
			"session_id": id,
			"error":      err.Error(),
		}).Error("[sessionRepository.Create] failed to save session")
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*entity.MoodSession, error) {
	s, err := r.store.get(ctx, id)
	if errors.Is(err, errNotFound) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"session_id": id,
			"error":      err.Error(),
		}).Error("[sessionRepository.Get] failed to load session")
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) Save(ctx context.Context, s *entity.MoodSession) error {
	if err := r.store.save(ctx, s); err != nil {
		r.log.WithFields(logrus.Fields{
			"session_id": s.ID,
			"error":      err.Error(),
		}).Error("[sessionRepository.Save] failed to save session")
		return err
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.delete(ctx, id); err != nil {
		r.log.WithFields(logrus.Fields{
			"session_id": id,
			"error":      err.Error(),
		}).Error("[sessionRepository.Delete] failed to delete session")
		return err
	}
	return nil
}
