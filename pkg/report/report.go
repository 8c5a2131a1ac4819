package report

import (
	"MoodMate/internal/entity"
	"MoodMate/pkg/utils"
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"
)

const (
	maxSampleImages = 3
	sampleWidth     = 80
	sampleHeight    = 60
	filePrefix      = "moodmate_summary_"
)

type SessionInfo struct {
	SessionID string
	RecordID  string
	Timestamp time.Time
	InputMode entity.InputMode
}

type IExporter interface {
	Export(info SessionInfo, dist entity.PercentageDistribution, dominant entity.EmotionCategory, recs entity.Recommendations, samples [][]byte) (string, error)
	OutputDir() string
}

type exporter struct {
	outputDir string
	compress  bool
	now       func() time.Time
	newID     func(t time.Time) (string, error)
	log       *logrus.Logger
}

func New(outputDir string, log *logrus.Logger) (IExporter, error) {
	if outputDir == "" {
		outputDir = "./outputs"
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &exporter{
		outputDir: outputDir,
		compress:  true,
		now:       time.Now,
		newID:     utils.New().NewULIDFromTimestamp,
		log:       log,
	}, nil
}

func (e *exporter) OutputDir() string {
	return e.outputDir
}

// FileName is the report name for a session exported at t. id keeps exports of the same
// second apart.
func FileName(sessionID string, t time.Time, id string) string {
	return fmt.Sprintf("%s%d_%s.pdf", FilePrefix(sessionID), t.Unix(), safeName.ReplaceAllString(id, "_"))
}

// FilePrefix is the name prefix every report of sessionID starts with.
func FilePrefix(sessionID string) string {
	return filePrefix + safeName.ReplaceAllString(sessionID, "_") + "_"
}

var safeName = regexp.MustCompile(`[^A-Za-z0-9-]`)

// Export writes the session summary PDF and returns its path.
func (e *exporter) Export(
	info SessionInfo,
	dist entity.PercentageDistribution,
	dominant entity.EmotionCategory,
	recs entity.Recommendations,
	samples [][]byte,
) (string, error) {
	if !dominant.IsValid() {
		dominant = entity.FallbackEmotion
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("AI MoodMate - Session Summary", false)
	pdf.AddPage()

	line := func(h float64, text string) {
		pdf.CellFormat(0, h, SanitizeText(text), "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 16)
	line(10, "AI MoodMate - Session Summary")

	pdf.SetFont("Arial", "", 11)
	line(8, "Date/Time: "+info.Timestamp.Format("2006-01-02 15:04:05"))
	line(8, "Input Mode: "+string(info.InputMode))
	pdf.Ln(4)

	if len(samples) > 0 {
		pdf.SetFont("Arial", "B", 13)
		line(8, "Detection Images:")
		pdf.SetFont("Arial", "", 10)

		for i, sample := range samples {
			if i == maxSampleImages {
				break
			}
			if err := e.embedSample(pdf, i, sample); err != nil {
				e.log.WithFields(logrus.Fields{
					"session_id": info.SessionID,
					"image":      i + 1,
					"error":      err.Error(),
				}).Warn("Failed to embed detection image")
				line(5, fmt.Sprintf("Image %d: Error loading image", i+1))
				continue
			}
			line(5, fmt.Sprintf("Detection Image %d", i+1))
			pdf.Ln(2)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 13)
	line(8, "Average Emotion Percentages:")
	pdf.SetFont("Arial", "", 11)
	for _, c := range entity.EmotionCategories {
		line(7, fmt.Sprintf("- %s: %.2f%%", c.Title(), dist[c]))
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	line(8, "Dominant Emotion: "+dominant.Title())

	pdf.Ln(4)
	e.writeItems(pdf, "Recommended Songs:", "Reason", recs.Songs)
	pdf.Ln(2)
	e.writeItems(pdf, "Reading & Mindfulness:", "Why", recs.Readings)
	pdf.Ln(2)
	e.writeItems(pdf, "Support & Counseling Resources:", "", recs.Support)

	if err := pdf.Error(); err != nil {
		return "", fmt.Errorf("failed to build report: %w", err)
	}

	now := e.now()
	id, err := e.newID(now)
	if err != nil {
		return "", fmt.Errorf("failed to name report: %w", err)
	}

	path := filepath.Join(e.outputDir, FileName(info.SessionID, now, id))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	e.log.WithFields(logrus.Fields{
		"session_id": info.SessionID,
		"record_id":  info.RecordID,
		"path":       path,
	}).Info("Session report exported")

	return path, nil
}

func (e *exporter) writeItems(pdf *fpdf.Fpdf, heading, reasonLabel string, items []entity.RecommendationItem) {
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, heading, "", 1, "L", false, 0, "")

	for _, item := range items {
		pdf.SetFont("Arial", "B", 10)
		pdf.MultiCell(0, 5, SanitizeText("- "+item.Title), "", "L", false)
		pdf.SetFont("Arial", "", 9)
		if reasonLabel != "" {
			pdf.MultiCell(0, 4, SanitizeText("  "+reasonLabel+": "+item.Rationale), "", "L", false)
		} else {
			pdf.MultiCell(0, 4, SanitizeText("  "+item.Rationale), "", "L", false)
		}
		pdf.MultiCell(0, 4, SanitizeText("  Link: "+item.Link), "", "L", false)
		pdf.Ln(1)
	}
}

// embedSample writes the sample to a temporary PNG next to the reports, places it and
// removes the file again whatever the outcome.
func (e *exporter) embedSample(pdf *fpdf.Fpdf, index int, sample []byte) error {
	src, _, err := image.Decode(bytes.NewReader(sample))
	if err != nil {
		return fmt.Errorf("decode sample: %w", err)
	}

	// fpdf only reads 8-bit PNGs
	img := image.NewRGBA(src.Bounds())
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)

	tmp, err := os.CreateTemp(e.outputDir, fmt.Sprintf("temp_detection_%d_*.png", index))
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp image: %w", err)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptions(tmp.Name(), opts)
	if err := pdf.Error(); err != nil {
		pdf.ClearError()
		return fmt.Errorf("register image: %w", err)
	}

	pdf.ImageOptions(tmp.Name(), -1, 0, sampleWidth, sampleHeight, true, opts, 0, "")
	if err := pdf.Error(); err != nil {
		pdf.ClearError()
		return fmt.Errorf("place image: %w", err)
	}

	return nil
}
