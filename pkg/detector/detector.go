package detector

import (
	"MoodMate/internal/entity"
	"MoodMate/pkg/gemini"
	"context"
	"fmt"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const (
	BackendWebsocket = "websocket"
	BackendGemini    = "gemini"
)

// IDetector turns one encoded frame (JPEG or PNG) into face emotion detections.
type IDetector interface {
	Detect(ctx context.Context, frame []byte, threshold float64) ([]entity.Detection, error)
	Close() error
}

// New builds the backend selected by DETECTOR_BACKEND. An error means the detector is not
// usable and the process should not start.
func New(log *logrus.Logger) (IDetector, error) {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("DETECTOR_BACKEND")))
	if backend == "" {
		backend = BackendWebsocket
	}

	switch backend {
	case BackendWebsocket:
		url := os.Getenv("AI_EMOTION_DETECTION_URL")
		if url == "" {
			url = "ws://localhost:8000/api/v1/emotion/ws"
		}
		return NewWebsocketDetector(url, log)
	case BackendGemini:
		client, err := gemini.NewGeminiClient()
		if err != nil {
			return nil, err
		}
		return NewGeminiDetector(client, log), nil
	default:
		return nil, fmt.Errorf("unknown detector backend %q", backend)
	}
}

type rawDetection struct {
	ClassID    *int      `json:"class_id"`
	Confidence *float64  `json:"confidence"`
	BBox       []float64 `json:"bbox"`
}

type rawResponse struct {
	Detections []rawDetection `json:"detections"`
	Error      string         `json:"error,omitempty"`
}

// parseDetections decodes a model server payload. Detections missing a class or confidence,
// or carrying a box that is not four numbers, are dropped.
func parseDetections(payload []byte) ([]entity.Detection, error) {
	var resp rawResponse
	if err := jsoniter.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling detection response: %w", err)
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("model server error: %s", resp.Error)
	}

	detections := make([]entity.Detection, 0, len(resp.Detections))
	for _, r := range resp.Detections {
		if r.ClassID == nil || r.Confidence == nil {
			continue
		}
		if len(r.BBox) != 0 && len(r.BBox) != 4 {
			continue
		}

		d := entity.Detection{
			ClassIndex: *r.ClassID,
			Confidence: *r.Confidence,
		}
		if category, ok := entity.CategoryFromIndex(d.ClassIndex); ok {
			d.Category = category
		}
		if len(r.BBox) == 4 {
			d.Box = entity.BoundingBox{X1: r.BBox[0], Y1: r.BBox[1], X2: r.BBox[2], Y2: r.BBox[3]}
		}
		detections = append(detections, d)
	}

	return detections, nil
}
