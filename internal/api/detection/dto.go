package detection

import (
	"MoodMate/internal/api/session"
	"MoodMate/internal/entity"
)

const (
	MinConfidence = 0.1
	MaxConfidence = 0.9

	DefaultPreviewEvery = 3
	MaxSamples          = 5
	MaxVideoFrames      = 300
	LiveSampleEvery     = 10

	LiveFinishCommand = "finish"
)

type ImageRequest struct {
	ImageBase64 string   `json:"image_base64" validate:"required"`
	Conf        *float64 `json:"conf" validate:"omitempty,gte=0.1,lte=0.9"`
}

type TextRequest struct {
	Emotion string `json:"emotion" validate:"required,emotion"`
}

// RunResponse is returned by every finished run, whatever the input mode.
type RunResponse struct {
	Record          session.RecordSummary         `json:"record"`
	Distribution    entity.PercentageDistribution `json:"distribution"`
	Dominant        entity.EmotionCategory        `json:"dominant"`
	Recommendations entity.Recommendations        `json:"recommendations"`
	Insights        *entity.MoodInsights          `json:"insights,omitempty"`
	FramesProcessed int                           `json:"frames_processed"`
	FramesFailed    int                           `json:"frames_failed"`
}

// LiveFrameResponse is pushed to the live client after each frame.
type LiveFrameResponse struct {
	Type         string                        `json:"type"`
	Frame        int                           `json:"frame"`
	Detections   []entity.Detection            `json:"detections"`
	Distribution entity.PercentageDistribution `json:"distribution"`
	Dominant     entity.EmotionCategory        `json:"dominant"`
	Error        string                        `json:"error,omitempty"`
}

type LiveResultResponse struct {
	Type   string      `json:"type"`
	Result RunResponse `json:"result"`
}

type LiveErrorResponse struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
