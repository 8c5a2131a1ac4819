package detector

import (
	"MoodMate/internal/entity"
	"MoodMate/pkg/gemini"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

type geminiDetector struct {
	client gemini.IGemini
	log    *logrus.Logger
	prompt string
}

func NewGeminiDetector(client gemini.IGemini, log *logrus.Logger) IDetector {
	return &geminiDetector{
		client: client,
		log:    log,
		prompt: buildPrompt(),
	}
}

func buildPrompt() string {
	labels := make([]string, len(entity.EmotionCategories))
	for i, c := range entity.EmotionCategories {
		labels[i] = fmt.Sprintf("%d=%s", i, c)
	}

	return `
	Detect every human face in this image and classify its facial expression.
	Use exactly one of these class ids: ` + strings.Join(labels, ", ") + `.
	Output format:
	{
		"detections": [
			{"class_id": 4, "confidence": 0.91, "bbox": [x1, y1, x2, y2]}
		]
	}
	confidence is between 0 and 1, bbox is in pixels of the original image.
	If there is no face, return {"detections": []}.
	Return ONLY the JSON response, without any additional text.
	`
}

func (g *geminiDetector) Detect(ctx context.Context, frame []byte, threshold float64) ([]entity.Detection, error) {
	format := imageFormat(frame)
	if format == "" {
		return nil, errors.New("frame is not a JPEG or PNG image")
	}

	result, err := g.client.AnalyzeImage(ctx, frame, format, g.prompt)
	if err != nil {
		return nil, err
	}

	jsonStart := strings.Index(result, "{")
	jsonEnd := strings.LastIndex(result, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, errors.New("cannot find valid JSON in response")
	}

	detections, err := parseDetections([]byte(result[jsonStart : jsonEnd+1]))
	if err != nil {
		return nil, err
	}

	kept := detections[:0]
	for _, d := range detections {
		if d.Confidence >= threshold {
			kept = append(kept, d)
		}
	}

	g.log.WithField("detections", len(kept)).Debug("Received response from Gemini detector")

	return kept, nil
}

func (g *geminiDetector) Close() error {
	return g.client.Close()
}

func imageFormat(frame []byte) string {
	switch http.DetectContentType(frame) {
	case "image/jpeg":
		return "jpeg"
	case "image/png":
		return "png"
	default:
		return ""
	}
}
