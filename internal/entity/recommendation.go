package entity

type RecommendationItem struct {
	Title     string `json:"title" validate:"required"`
	Rationale string `json:"rationale" validate:"required"`
	Link      string `json:"link" validate:"required,url"`
}

type BreathingExercise struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Technique     string   `json:"technique" validate:"required"`
	Duration      string   `json:"duration" validate:"required"`
	Steps         []string `json:"steps" validate:"required,min=1,dive,required"`
	Reference     string   `json:"reference" validate:"required"`
	ReferenceLink string   `json:"reference_link" validate:"required,url"`
}

type Recommendations struct {
	Emotion   EmotionCategory      `json:"emotion"`
	Songs     []RecommendationItem `json:"songs"`
	Readings  []RecommendationItem `json:"readings"`
	Support   []RecommendationItem `json:"support"`
	Breathing BreathingExercise    `json:"breathing"`
}
