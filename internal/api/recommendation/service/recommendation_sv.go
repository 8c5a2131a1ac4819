package recommendationService

import (
	"MoodMate/internal/entity"
	"MoodMate/pkg/log"

	"golang.org/x/net/context"
)

func resolve(category entity.EmotionCategory) entity.EmotionCategory {
	if category.IsValid() {
		return category
	}
	return entity.FallbackEmotion
}

// Select returns the catalog recommendations of category. Unknown categories resolve to natural.
func (s *recommendationService) Select(category entity.EmotionCategory) entity.Recommendations {
	category = resolve(category)

	return entity.Recommendations{
		Emotion:   category,
		Songs:     s.catalog.Songs(category),
		Readings:  s.catalog.Readings(category),
		Support:   s.catalog.Support(),
		Breathing: s.catalog.Breathing(category),
	}
}

// Personalize puts history based picks in front of the base songs and readings. insights and
// prefs must describe the session before the current run is recorded.
func (s *recommendationService) Personalize(
	base entity.Recommendations,
	insights entity.MoodInsights,
	hasInsights bool,
	prefs entity.UserPreferenceState,
) entity.Recommendations {
	in := overlayInput{
		category:    resolve(base.Emotion),
		insights:    insights,
		hasInsights: hasInsights,
		prefs:       prefs,
	}

	out := base
	out.Songs = overlay(s.songRules, in, base.Songs)
	out.Readings = overlay(s.readingRules, in, base.Readings)

	return out
}

func (s *recommendationService) ForSession(ctx context.Context, category entity.EmotionCategory, sessionID string) (entity.Recommendations, error) {
	base := s.Select(category)

	ms, err := s.sessionService.Get(ctx, sessionID)
	if err != nil {
		return entity.Recommendations{}, err
	}

	insights, ok := ms.Insights()
	recs := s.Personalize(base, insights, ok, ms.Preferences)

	s.log.WithFields(log.Fields{
		"session_id": sessionID,
		"emotion":    recs.Emotion,
		"songs":      len(recs.Songs),
		"readings":   len(recs.Readings),
	}).Debug("Personalized recommendations selected")

	return recs, nil
}

func (s *recommendationService) Breathing(category entity.EmotionCategory) entity.BreathingExercise {
	return s.catalog.Breathing(resolve(category))
}
