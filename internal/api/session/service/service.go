package sessionService

import (
	"MoodMate/internal/api/session"
	sessionRepository "MoodMate/internal/api/session/repository"
	"MoodMate/internal/entity"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type ISessionService interface {
	Create(ctx context.Context) (session.CreateSessionResponse, error)
	Get(ctx context.Context, sessionID string) (*entity.MoodSession, error)
	Update(ctx context.Context, sessionID string, fn func(s *entity.MoodSession) error) (*entity.MoodSession, error)
	History(ctx context.Context, sessionID string) (session.HistoryResponse, error)
	Insights(ctx context.Context, sessionID string) (session.InsightsResponse, error)
	Stats(ctx context.Context, sessionID string) (session.StatsResponse, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

type sessionService struct {
	log        *logrus.Logger
	repository sessionRepository.Repository
	ttl        time.Duration
	now        func() time.Time
}

func NewSessionService(
	log *logrus.Logger,
	repository sessionRepository.Repository,
	ttl time.Duration,
) ISessionService {
	return &sessionService{
		log:        log,
		repository: repository,
		ttl:        ttl,
		now:        time.Now,
	}
}
