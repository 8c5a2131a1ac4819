package aggregator

import (
	"MoodMate/internal/entity"
	"math"
)

// Accumulate folds the detections of one frame into tally and returns how many were kept.
// Detections below threshold, with an unknown class index or with an invalid confidence
// are dropped.
func Accumulate(tally entity.WeightTally, detections []entity.Detection, threshold float64) int {
	kept := 0
	for _, d := range detections {
		if math.IsNaN(d.Confidence) || math.IsInf(d.Confidence, 0) || d.Confidence < 0 {
			continue
		}
		if d.Confidence < threshold {
			continue
		}

		category, ok := entity.CategoryFromIndex(d.ClassIndex)
		if !ok {
			continue
		}

		tally[category] += d.Confidence
		kept++
	}
	return kept
}

// Normalize turns a tally into percentages rounded to two decimals. Every category is
// present in the result; all are zero when the tally carries no weight.
func Normalize(tally entity.WeightTally) entity.PercentageDistribution {
	dist := entity.ZeroDistribution()

	total := tally.Total()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return dist
	}

	for _, c := range entity.EmotionCategories {
		dist[c] = round2(tally[c] / total * 100)
	}
	return dist
}

// Dominant returns the category with the highest percentage. Ties go to the category that
// comes first in entity.EmotionCategories; no signal at all yields entity.FallbackEmotion.
func Dominant(dist entity.PercentageDistribution) entity.EmotionCategory {
	best := entity.FallbackEmotion
	bestValue := 0.0
	for _, c := range entity.EmotionCategories {
		if v := dist[c]; v > bestValue {
			best = c
			bestValue = v
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
