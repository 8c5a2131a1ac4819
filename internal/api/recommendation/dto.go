package recommendation

import "MoodMate/internal/entity"

type RecommendationResponse struct {
	Emotion      entity.EmotionCategory      `json:"emotion"`
	Personalized bool                        `json:"personalized"`
	Songs        []entity.RecommendationItem `json:"songs"`
	Readings     []entity.RecommendationItem `json:"readings"`
	Support      []entity.RecommendationItem `json:"support"`
	Breathing    entity.BreathingExercise    `json:"breathing"`
}

type BreathingResponse struct {
	Emotion   entity.EmotionCategory   `json:"emotion"`
	Breathing entity.BreathingExercise `json:"breathing"`
}

func NewRecommendationResponse(recs entity.Recommendations, personalized bool) RecommendationResponse {
	return RecommendationResponse{
		Emotion:      recs.Emotion,
		Personalized: personalized,
		Songs:        recs.Songs,
		Readings:     recs.Readings,
		Support:      recs.Support,
		Breathing:    recs.Breathing,
	}
}
