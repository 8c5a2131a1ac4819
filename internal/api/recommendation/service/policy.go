package recommendationService

import (
	"MoodMate/internal/entity"
	"fmt"
)

const (
	maxPersonalized = 3
	maxBase         = 3
)

type overlayInput struct {
	category    entity.EmotionCategory
	insights    entity.MoodInsights
	hasInsights bool
	prefs       entity.UserPreferenceState
}

// overlayRule yields one personalized item when it applies to the session.
type overlayRule func(in overlayInput) (entity.RecommendationItem, bool)

func overlay(rules []overlayRule, in overlayInput, base []entity.RecommendationItem) []entity.RecommendationItem {
	out := make([]entity.RecommendationItem, 0, maxPersonalized+maxBase)

	for _, rule := range rules {
		if len(out) == maxPersonalized {
			break
		}
		if item, ok := rule(in); ok {
			out = append(out, item)
		}
	}

	if len(base) > maxBase {
		base = base[:maxBase]
	}
	return append(out, base...)
}

func withHistory(minSessions int, rule overlayRule) overlayRule {
	return func(in overlayInput) (entity.RecommendationItem, bool) {
		if !in.hasInsights || in.insights.TotalSessions <= minSessions {
			return entity.RecommendationItem{}, false
		}
		return rule(in)
	}
}

func defaultSongRules() []overlayRule {
	return []overlayRule{
		withHistory(3, func(in overlayInput) (entity.RecommendationItem, bool) {
			return entity.RecommendationItem{
				Title:     "Personalized Pick: Calming Focus Music",
				Rationale: "Based on your mood patterns, you might benefit from calming music to help stabilize your emotions.",
				Link:      "https://www.youtube.com/results?search_query=calming+focus+music",
			}, in.insights.MoodStability < 0.5
		}),
		withHistory(3, func(in overlayInput) (entity.RecommendationItem, bool) {
			return entity.RecommendationItem{
				Title:     "Trend-Based Recommendation",
				Rationale: "This emotion appears frequently in your sessions. Here are some specialized tracks for deeper exploration.",
				Link:      "https://www.youtube.com/results?search_query=emotional+healing+music",
			}, in.insights.MostCommonEmotion == in.category
		}),
		func(in overlayInput) (entity.RecommendationItem, bool) {
			n := in.prefs.SessionCount
			return entity.RecommendationItem{
				Title:     fmt.Sprintf("Milestone Achievement: %d Sessions!", n),
				Rationale: fmt.Sprintf("Congratulations on your %dth session! Here's a special recommendation for your dedication to emotional wellness.", n),
				Link:      "https://www.youtube.com/results?search_query=motivational+wellness+music",
			}, n > 0 && n%5 == 0
		},
	}
}

func defaultReadingRules() []overlayRule {
	return []overlayRule{
		withHistory(2, func(in overlayInput) (entity.RecommendationItem, bool) {
			return entity.RecommendationItem{
				Title:     "Advanced Emotional Regulation Guide",
				Rationale: "Based on your emotional patterns, this advanced guide can help you develop stronger emotional regulation skills.",
				Link:      "https://www.psychologytoday.com/us/basics/emotional-regulation",
			}, in.insights.MoodStability < 0.4
		}),
		withHistory(2, func(in overlayInput) (entity.RecommendationItem, bool) {
			return entity.RecommendationItem{
				Title:     "Deep Dive: Emotional Intelligence Mastery",
				Rationale: "With your consistent practice, you're ready for advanced emotional intelligence techniques.",
				Link:      "https://www.verywellmind.com/what-is-emotional-intelligence-2795423",
			}, in.insights.TotalSessions >= 10
		}),
		func(in overlayInput) (entity.RecommendationItem, bool) {
			return entity.RecommendationItem{
				Title:     "Weekly Wellness Reflection",
				Rationale: "You've been practicing for a week! Here's a guide to reflect on your emotional growth.",
				Link:      "https://www.mindful.org/how-to-practice-mindfulness/",
			}, in.prefs.SessionCount >= 7
		},
	}
}
