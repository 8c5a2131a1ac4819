package report

import (
	"MoodMate/internal/entity"
	"MoodMate/pkg/utils"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExporter(t *testing.T) *exporter {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &exporter{
		outputDir: t.TempDir(),
		compress:  false,
		now:       func() time.Time { return time.Unix(1700000000, 0) },
		newID:     utils.New().NewULIDFromTimestamp,
		log:       log,
	}
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 12))
	for x := 0; x < 16; x++ {
		img.Set(x, 6, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sampleRecs() entity.Recommendations {
	return entity.Recommendations{
		Emotion: entity.EmotionSad,
		Songs: []entity.RecommendationItem{
			{Title: "Coldplay – Fix You", Rationale: "Gentle build “helps” release…", Link: "https://example.com/song"},
		},
		Readings: []entity.RecommendationItem{
			{Title: "Reading", Rationale: "Why it helps", Link: "https://example.com/read"},
		},
		Support: []entity.RecommendationItem{
			{Title: "Helpline", Rationale: "Talk to someone", Link: "https://example.com/help"},
		},
	}
}

var percentLine = regexp.MustCompile(`\(- ([A-Za-z]+): ([0-9]+\.[0-9]{2})%\)\s*Tj`)

func TestExportRoundTripPercentages(t *testing.T) {
	e := testExporter(t)

	dist := entity.ZeroDistribution()
	dist[entity.EmotionSad] = 62.5
	dist[entity.EmotionHappy] = 25.13
	dist[entity.EmotionFear] = 12.37

	path, err := e.Export(SessionInfo{
		SessionID: "abc-123",
		RecordID:  "session_1",
		Timestamp: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		InputMode: entity.InputModeImage,
	}, dist, entity.EmotionSad, sampleRecs(), nil)
	require.NoError(t, err)

	assert.Equal(t, e.outputDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "moodmate_summary_abc-123_1700000000_"), path)
	assert.Equal(t, ".pdf", filepath.Ext(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	matches := percentLine.FindAllStringSubmatch(content, -1)
	got := make(map[string]float64)
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[2], 64)
		require.NoError(t, err)
		got[m[1]] = v
	}

	require.Len(t, got, len(entity.EmotionCategories))
	for _, c := range entity.EmotionCategories {
		assert.Equal(t, dist[c], got[c.Title()], c)
	}

	assert.Contains(t, content, "(Dominant Emotion: Sad)Tj")
	assert.Contains(t, content, "(Input Mode: Image)Tj")
	assert.Contains(t, content, "Coldplay - Fix You")
	assert.NotContains(t, content, "Detection Images:")
}

func TestExportEmbedsAtMostThreeImages(t *testing.T) {
	e := testExporter(t)
	sample := samplePNG(t)

	path, err := e.Export(SessionInfo{SessionID: "s", Timestamp: time.Now(), InputMode: entity.InputModeVideo},
		entity.ZeroDistribution(), entity.EmotionNatural, sampleRecs(),
		[][]byte{sample, []byte("broken"), sample, sample, sample})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "(Detection Image 1)Tj")
	assert.Contains(t, content, "(Image 2: Error loading image)Tj")
	assert.Contains(t, content, "(Detection Image 3)Tj")
	assert.NotContains(t, content, "Detection Image 4")

	entries, err := os.ReadDir(e.outputDir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), "temp_detection_"), entry.Name())
	}
	assert.Len(t, entries, 1)
}

func TestFilePrefixMatchesFileName(t *testing.T) {
	name := FileName("a/b..c", time.Unix(42, 0), "01J")
	assert.True(t, strings.HasPrefix(name, FilePrefix("a/b..c")))
	assert.NotContains(t, name, "/")
	assert.Equal(t, "moodmate_summary_a_b__c_42_01J.pdf", name)
}

func TestExportsInTheSameSecondDoNotCollide(t *testing.T) {
	e := testExporter(t)
	info := SessionInfo{SessionID: "abc-123", Timestamp: time.Now(), InputMode: entity.InputModeText}

	first, err := e.Export(info, entity.ZeroDistribution(), entity.EmotionNatural, sampleRecs(), nil)
	require.NoError(t, err)
	second, err := e.Export(info, entity.ZeroDistribution(), entity.EmotionNatural, sampleRecs(), nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.FileExists(t, first)
	assert.FileExists(t, second)
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "A – B — C", want: "A - B - C"},
		{in: "“quoted” ‘single’", want: "\"quoted\" 'single'"},
		{in: "wait…", want: "wait..."},
		{in: "• item", want: "* item"},
		{in: "Ólafur Arnalds", want: "Olafur Arnalds"},
		{in: "Shankar–Ehsaan–Loy", want: "Shankar-Ehsaan-Loy"},
		{in: "naïve café", want: "naive cafe"},
		{in: "日本", want: "??"},
		{in: "plain ascii", want: "plain ascii"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}
