package utils

import (
	"MoodMate/internal/entity"
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNoFile        = errors.New("no file uploaded")
	ErrFileTooLarge  = errors.New("file size exceeds limit")
	ErrNotAnImage    = errors.New("uploaded file is not an image")
	ErrInvalidBase64 = errors.New("invalid base64 image data")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ReadFile(file *multipart.FileHeader) ([]byte, error)
	DecodeBase64Image(data string) ([]byte, error)
	AnnotateDetections(frame []byte, detections []entity.Detection) ([]byte, error)
}

type utils struct {
	maxFileSize int64
	boxWidth    int
}

func New() IUtils {
	return &utils{
		maxFileSize: 10 * 1024 * 1024,
		boxWidth:    3,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxFileSize {
		return ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}

	return nil
}

func (u *utils) ReadFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(io.LimitReader(src, u.maxFileSize+1))
}

// DecodeBase64Image accepts raw base64 or a data URL.
func (u *utils) DecodeBase64Image(data string) ([]byte, error) {
	if i := strings.Index(data, ","); strings.HasPrefix(data, "data:") && i != -1 {
		data = data[i+1:]
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil || len(decoded) == 0 {
		return nil, ErrInvalidBase64
	}
	if int64(len(decoded)) > u.maxFileSize {
		return nil, ErrFileTooLarge
	}

	return decoded, nil
}

// AnnotateDetections draws one rectangle per detection onto a copy of the frame and returns
// it PNG encoded.
func (u *utils) AnnotateDetections(frame []byte, detections []entity.Detection) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, src, bounds.Min, draw.Src)

	for _, d := range detections {
		rect := image.Rect(int(d.Box.X1), int(d.Box.Y1), int(d.Box.X2), int(d.Box.Y2)).
			Add(bounds.Min).
			Intersect(bounds)
		if rect.Empty() {
			continue
		}
		u.drawOutline(canvas, rect, boxColor(d.Category))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (u *utils) drawOutline(canvas *image.RGBA, r image.Rectangle, c color.Color) {
	fill := image.NewUniform(c)
	w := u.boxWidth
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w),
		image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y),
		image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(canvas, e.Intersect(r), fill, image.Point{}, draw.Src)
	}
}

var palette = map[entity.EmotionCategory]color.RGBA{
	entity.EmotionAngry:     {R: 220, G: 20, B: 60, A: 255},
	entity.EmotionContempt:  {R: 128, G: 0, B: 128, A: 255},
	entity.EmotionDisgust:   {R: 85, G: 107, B: 47, A: 255},
	entity.EmotionFear:      {R: 255, G: 140, B: 0, A: 255},
	entity.EmotionHappy:     {R: 50, G: 205, B: 50, A: 255},
	entity.EmotionNatural:   {R: 135, G: 206, B: 235, A: 255},
	entity.EmotionSad:       {R: 65, G: 105, B: 225, A: 255},
	entity.EmotionSleepy:    {R: 112, G: 128, B: 144, A: 255},
	entity.EmotionSurprised: {R: 255, G: 215, B: 0, A: 255},
}

func boxColor(c entity.EmotionCategory) color.RGBA {
	if col, ok := palette[c]; ok {
		return col
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}
