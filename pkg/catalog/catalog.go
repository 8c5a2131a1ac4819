package catalog

import (
	"MoodMate/internal/entity"
	_ "embed"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

//go:embed catalog.json
var embedded []byte

var (
	ErrMissingFallback = errors.New("catalog has no entry for the fallback emotion")
	ErrUnknownCategory = errors.New("catalog references an unknown emotion category")
)

type ICatalog interface {
	Songs(category entity.EmotionCategory) []entity.RecommendationItem
	Readings(category entity.EmotionCategory) []entity.RecommendationItem
	Support() []entity.RecommendationItem
	Breathing(category entity.EmotionCategory) entity.BreathingExercise
}

type document struct {
	Songs     map[entity.EmotionCategory][]entity.RecommendationItem `json:"songs" validate:"required,dive,min=1,dive"`
	Readings  map[entity.EmotionCategory][]entity.RecommendationItem `json:"readings" validate:"required,dive,min=1,dive"`
	Support   []entity.RecommendationItem                            `json:"support" validate:"required,min=1,dive"`
	Breathing map[entity.EmotionCategory]entity.BreathingExercise    `json:"breathing" validate:"required,dive"`
}

type catalog struct {
	doc document
}

// Load parses the catalog compiled into the binary.
func Load() (ICatalog, error) {
	return LoadFrom(embedded)
}

func LoadFrom(data []byte) (ICatalog, error) {
	var doc document
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	for _, table := range []map[entity.EmotionCategory][]entity.RecommendationItem{doc.Songs, doc.Readings} {
		if err := checkKeys(table); err != nil {
			return nil, err
		}
		if _, ok := table[entity.FallbackEmotion]; !ok {
			return nil, ErrMissingFallback
		}
	}

	for c := range doc.Breathing {
		if !c.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
	}
	if _, ok := doc.Breathing[entity.FallbackEmotion]; !ok {
		return nil, ErrMissingFallback
	}

	return &catalog{doc: doc}, nil
}

func checkKeys(table map[entity.EmotionCategory][]entity.RecommendationItem) error {
	for c := range table {
		if !c.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
	}
	return nil
}

// Songs returns a copy of the song list, falling back to the natural entry.
func (c *catalog) Songs(category entity.EmotionCategory) []entity.RecommendationItem {
	return lookup(c.doc.Songs, category)
}

func (c *catalog) Readings(category entity.EmotionCategory) []entity.RecommendationItem {
	return lookup(c.doc.Readings, category)
}

func (c *catalog) Support() []entity.RecommendationItem {
	return append([]entity.RecommendationItem(nil), c.doc.Support...)
}

func (c *catalog) Breathing(category entity.EmotionCategory) entity.BreathingExercise {
	b, ok := c.doc.Breathing[category]
	if !ok {
		b = c.doc.Breathing[entity.FallbackEmotion]
	}
	b.Steps = append([]string(nil), b.Steps...)
	return b
}

func lookup(table map[entity.EmotionCategory][]entity.RecommendationItem, category entity.EmotionCategory) []entity.RecommendationItem {
	items, ok := table[category]
	if !ok {
		items = table[entity.FallbackEmotion]
	}
	return append([]entity.RecommendationItem(nil), items...)
}
