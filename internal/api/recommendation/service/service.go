package recommendationService

import (
	sessionService "MoodMate/internal/api/session/service"
	"MoodMate/internal/entity"
	"MoodMate/pkg/catalog"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IRecommendationService interface {
	Select(category entity.EmotionCategory) entity.Recommendations
	Personalize(base entity.Recommendations, insights entity.MoodInsights, hasInsights bool, prefs entity.UserPreferenceState) entity.Recommendations
	ForSession(ctx context.Context, category entity.EmotionCategory, sessionID string) (entity.Recommendations, error)
	Breathing(category entity.EmotionCategory) entity.BreathingExercise
}

type recommendationService struct {
	log            *logrus.Logger
	catalog        catalog.ICatalog
	sessionService sessionService.ISessionService
	songRules      []overlayRule
	readingRules   []overlayRule
}

func NewRecommendationService(
	log *logrus.Logger,
	catalog catalog.ICatalog,
	sessionService sessionService.ISessionService,
) IRecommendationService {
	return &recommendationService{
		log:            log,
		catalog:        catalog,
		sessionService: sessionService,
		songRules:      defaultSongRules(),
		readingRules:   defaultReadingRules(),
	}
}
