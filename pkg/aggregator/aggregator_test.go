package aggregator

import (
	"MoodMate/internal/entity"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func det(class int, conf float64) entity.Detection {
	return entity.Detection{ClassIndex: class, Confidence: conf}
}

func TestAccumulate(t *testing.T) {
	tests := []struct {
		name       string
		detections []entity.Detection
		threshold  float64
		wantKept   int
		want       entity.WeightTally
	}{
		{
			name:       "sums per category",
			detections: []entity.Detection{det(4, 0.9), det(4, 0.5), det(6, 0.4)},
			threshold:  0.25,
			wantKept:   3,
			want:       entity.WeightTally{entity.EmotionHappy: 1.4, entity.EmotionSad: 0.4},
		},
		{
			name:       "below threshold dropped",
			detections: []entity.Detection{det(0, 0.1), det(1, 0.3)},
			threshold:  0.25,
			wantKept:   1,
			want:       entity.WeightTally{entity.EmotionContempt: 0.3},
		},
		{
			name:       "low confidence keeps exact weight",
			detections: []entity.Detection{det(7, 0.26)},
			threshold:  0.25,
			wantKept:   1,
			want:       entity.WeightTally{entity.EmotionSleepy: 0.26},
		},
		{
			name:       "out of range class dropped",
			detections: []entity.Detection{det(9, 0.9), det(-1, 0.9), det(2, 0.6)},
			threshold:  0.25,
			wantKept:   1,
			want:       entity.WeightTally{entity.EmotionDisgust: 0.6},
		},
		{
			name:       "invalid confidence dropped",
			detections: []entity.Detection{det(3, math.NaN()), det(3, -0.5), det(3, math.Inf(1))},
			threshold:  0,
			wantKept:   0,
			want:       entity.WeightTally{},
		},
		{
			name:      "no detections",
			threshold: 0.25,
			wantKept:  0,
			want:      entity.WeightTally{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := entity.NewWeightTally()
			kept := Accumulate(tally, tt.detections, tt.threshold)

			assert.Equal(t, tt.wantKept, kept)
			assert.Len(t, tally, len(tt.want))
			for c, w := range tt.want {
				assert.InDelta(t, w, tally[c], 1e-9, c)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tally := entity.WeightTally{
		entity.EmotionHappy: 1,
		entity.EmotionSad:   1,
		entity.EmotionFear:  1,
	}

	dist := Normalize(tally)

	assert.Len(t, dist, len(entity.EmotionCategories))
	assert.Equal(t, 33.33, dist[entity.EmotionHappy])
	assert.Equal(t, 33.33, dist[entity.EmotionSad])
	assert.Equal(t, 33.33, dist[entity.EmotionFear])
	assert.Equal(t, 0.0, dist[entity.EmotionAngry])
	assert.InDelta(t, 100, dist.Sum(), 0.05)
}

func TestNormalizeEmpty(t *testing.T) {
	dist := Normalize(entity.NewWeightTally())
	assert.Len(t, dist, len(entity.EmotionCategories))
	assert.Zero(t, dist.Sum())
}

func TestNormalizeSumsToHundred(t *testing.T) {
	frames := [][]entity.Detection{
		{det(0, 0.31), det(4, 0.77)},
		{det(4, 0.93), det(8, 0.41), det(2, 0.12)},
		{det(6, 0.55), det(6, 0.28), det(5, 0.66)},
	}

	tally := entity.NewWeightTally()
	for _, f := range frames {
		Accumulate(tally, f, 0.25)
	}

	dist := Normalize(tally)
	assert.InDelta(t, 100, dist.Sum(), 0.01*float64(len(entity.EmotionCategories)))
}

func TestDominant(t *testing.T) {
	tests := []struct {
		name string
		dist entity.PercentageDistribution
		want entity.EmotionCategory
	}{
		{name: "clear winner", dist: entity.PercentageDistribution{entity.EmotionSad: 70, entity.EmotionHappy: 30}, want: entity.EmotionSad},
		{name: "tie uses canonical order", dist: entity.PercentageDistribution{entity.EmotionSad: 50, entity.EmotionHappy: 50}, want: entity.EmotionHappy},
		{name: "empty", dist: entity.PercentageDistribution{}, want: entity.EmotionNatural},
		{name: "all zero", dist: entity.ZeroDistribution(), want: entity.EmotionNatural},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dominant(tt.dist))
		})
	}
}

func TestDominantOfTiedTally(t *testing.T) {
	tally := entity.WeightTally{entity.EmotionHappy: 5, entity.EmotionSad: 5}
	assert.Equal(t, entity.EmotionHappy, Dominant(Normalize(tally)))
}
