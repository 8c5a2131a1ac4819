package sessionService

import (
	"MoodMate/internal/api/session"
	"MoodMate/internal/entity"
	jwtPkg "MoodMate/pkg/jwt"
	"MoodMate/pkg/log"

	"github.com/google/uuid"
	"golang.org/x/net/context"
)

func (s *sessionService) Create(ctx context.Context) (session.CreateSessionResponse, error) {
	client, err := s.repository.NewClient(ctx, "", false)
	if err != nil {
		return session.CreateSessionResponse{}, err
	}

	id := uuid.NewString()
	created, err := client.Sessions.Create(ctx, id, s.now())
	if err != nil {
		return session.CreateSessionResponse{}, session.ErrInternalServerError
	}

	token, exp, err := jwtPkg.Sign(map[string]interface{}{
		jwtPkg.SessionClaim: created.ID,
	}, s.ttl)
	if err != nil {
		s.log.WithFields(log.Fields{
			"session_id": created.ID,
			"error":      err.Error(),
		}).Error("[sessionService.Create] failed to sign session token")
		return session.CreateSessionResponse{}, session.ErrInternalServerError
	}

	s.log.WithFields(log.Fields{
		"session_id": created.ID,
	}).Info("Mood session created")

	return session.CreateSessionResponse{
		SessionID: created.ID,
		Token:     token,
		ExpiresAt: timeFromUnix(exp),
	}, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*entity.MoodSession, error) {
	client, err := s.repository.NewClient(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}
	return client.Sessions.Get(ctx, sessionID)
}

// Update runs fn with exclusive access to the session and saves the result when fn succeeds.
func (s *sessionService) Update(ctx context.Context, sessionID string, fn func(ms *entity.MoodSession) error) (*entity.MoodSession, error) {
	client, err := s.repository.NewClient(ctx, sessionID, true)
	if err != nil {
		if ctx.Err() != nil {
			return nil, session.ErrSessionBusy
		}
		return nil, err
	}
	defer client.Rollback()

	ms, err := client.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := fn(ms); err != nil {
		return nil, err
	}

	if err := client.Sessions.Save(ctx, ms); err != nil {
		return nil, session.ErrInternalServerError
	}

	if err := client.Commit(); err != nil {
		return nil, err
	}

	return ms, nil
}

func (s *sessionService) History(ctx context.Context, sessionID string) (session.HistoryResponse, error) {
	ms, err := s.Get(ctx, sessionID)
	if err != nil {
		return session.HistoryResponse{}, err
	}

	records := make([]session.RecordSummary, 0, len(ms.History))
	for _, r := range ms.History {
		records = append(records, session.NewRecordSummary(r))
	}

	return session.HistoryResponse{
		SessionID: ms.ID,
		Records:   records,
	}, nil
}

func (s *sessionService) Insights(ctx context.Context, sessionID string) (session.InsightsResponse, error) {
	ms, err := s.Get(ctx, sessionID)
	if err != nil {
		return session.InsightsResponse{}, err
	}

	insights, ok := ms.Insights()
	if !ok {
		return session.InsightsResponse{Available: false}, nil
	}
	if insights.LastSession != nil {
		last := *insights.LastSession
		last.SampleImages = nil
		insights.LastSession = &last
	}

	return session.InsightsResponse{Available: true, Insights: &insights}, nil
}

func (s *sessionService) Stats(ctx context.Context, sessionID string) (session.StatsResponse, error) {
	ms, err := s.Get(ctx, sessionID)
	if err != nil {
		return session.StatsResponse{}, err
	}

	stats, ok := ms.Stats()
	if !ok {
		return session.StatsResponse{Available: false}, nil
	}

	return session.StatsResponse{Available: true, Stats: &stats}, nil
}

func (s *sessionService) ClearHistory(ctx context.Context, sessionID string) error {
	_, err := s.Update(ctx, sessionID, func(ms *entity.MoodSession) error {
		ms.Clear()
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(log.Fields{
		"session_id": sessionID,
	}).Info("Mood history cleared")

	return nil
}
