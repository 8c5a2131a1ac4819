package session

import (
	"MoodMate/internal/entity"
	"time"
)

type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionResponse struct {
	SessionID    string                   `json:"session_id"`
	CreatedAt    time.Time                `json:"created_at"`
	SessionCount int                      `json:"session_count"`
	RecentlySeen []entity.EmotionCategory `json:"recently_seen_emotions"`
}

// RecordSummary is a history entry without its sample images.
type RecordSummary struct {
	ID              string                        `json:"id"`
	Timestamp       time.Time                     `json:"timestamp"`
	InputMode       entity.InputMode              `json:"input_mode"`
	DominantEmotion entity.EmotionCategory        `json:"dominant_emotion"`
	Distribution    entity.PercentageDistribution `json:"percentage_distribution"`
	Recommendations entity.Recommendations        `json:"recommendations_given"`
	SampleCount     int                           `json:"sample_count"`
}

type HistoryResponse struct {
	SessionID string          `json:"session_id"`
	Records   []RecordSummary `json:"records"`
}

type InsightsResponse struct {
	Available bool                 `json:"available"`
	Insights  *entity.MoodInsights `json:"insights,omitempty"`
}

type StatsResponse struct {
	Available bool                 `json:"available"`
	Stats     *entity.HistoryStats `json:"stats,omitempty"`
}

func NewRecordSummary(r entity.SessionRecord) RecordSummary {
	return RecordSummary{
		ID:              r.ID,
		Timestamp:       r.Timestamp,
		InputMode:       r.InputMode,
		DominantEmotion: r.DominantEmotion,
		Distribution:    r.Distribution,
		Recommendations: r.Recommendations,
		SampleCount:     len(r.SampleImages),
	}
}
