package detectionService

import (
	"MoodMate/internal/api/detection"
	recommendationService "MoodMate/internal/api/recommendation/service"
	sessionRepository "MoodMate/internal/api/session/repository"
	sessionService "MoodMate/internal/api/session/service"
	"MoodMate/internal/entity"
	"MoodMate/pkg/catalog"
	"MoodMate/pkg/utils"
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

type fakeDetector struct {
	calls  atomic.Int32
	detect func(n int, frame []byte) ([]entity.Detection, error)
}

func (f *fakeDetector) Detect(_ context.Context, frame []byte, _ float64) ([]entity.Detection, error) {
	n := int(f.calls.Add(1))
	return f.detect(n, frame)
}

func (f *fakeDetector) Close() error { return nil }

func happyFace() []entity.Detection {
	return []entity.Detection{
		{ClassIndex: 4, Category: entity.EmotionHappy, Confidence: 0.8, Box: entity.BoundingBox{X1: 2, Y1: 2, X2: 12, Y2: 12}},
		{ClassIndex: 6, Category: entity.EmotionSad, Confidence: 0.2, Box: entity.BoundingBox{X1: 4, Y1: 4, X2: 8, Y2: 8}},
	}
}

func testFrame(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fixture struct {
	svc       IDetectionService
	sessions  sessionService.ISessionService
	detector  *fakeDetector
	sessionID string
}

func newFixture(t *testing.T, detect func(n int, frame []byte) ([]entity.Detection, error)) fixture {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	t.Setenv("DETECTION_CONFIDENCE", "")
	t.Setenv("LIVE_DWELL", "")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c, err := catalog.Load()
	require.NoError(t, err)

	sessions := sessionService.NewSessionService(logger, sessionRepository.NewMemory(time.Hour, logger), time.Hour)
	recs := recommendationService.NewRecommendationService(logger, c, sessions)
	det := &fakeDetector{detect: detect}

	created, err := sessions.Create(context.Background())
	require.NoError(t, err)

	return fixture{
		svc:       NewDetectionService(logger, det, utils.New(), sessions, recs),
		sessions:  sessions,
		detector:  det,
		sessionID: created.SessionID,
	}
}

func TestConfidence(t *testing.T) {
	f := newFixture(t, nil)

	conf, err := f.svc.Confidence(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.25, conf)

	for _, bad := range []float64{0.05, 0.95, -1} {
		v := bad
		_, err := f.svc.Confidence(&v)
		assert.ErrorIs(t, err, detection.ErrInvalidConfidence, bad)
	}

	v := 0.5
	conf, err = f.svc.Confidence(&v)
	require.NoError(t, err)
	assert.Equal(t, 0.5, conf)

	assert.Equal(t, 2*time.Second, f.svc.Dwell())
}

func TestAnalyzeImage(t *testing.T) {
	f := newFixture(t, func(int, []byte) ([]entity.Detection, error) { return happyFace(), nil })

	res, err := f.svc.AnalyzeImage(context.Background(), f.sessionID, testFrame(t), 0.25)
	require.NoError(t, err)

	assert.Equal(t, entity.EmotionHappy, res.Dominant)
	assert.Equal(t, 100.0, res.Distribution[entity.EmotionHappy])
	assert.Equal(t, 0.0, res.Distribution[entity.EmotionSad])
	assert.Len(t, res.Distribution, len(entity.EmotionCategories))
	assert.Equal(t, "session_1", res.Record.ID)
	assert.Equal(t, entity.InputModeImage, res.Record.InputMode)
	assert.Equal(t, 1, res.Record.SampleCount)
	assert.Equal(t, entity.EmotionHappy, res.Recommendations.Emotion)
	require.NotNil(t, res.Insights)
	assert.Equal(t, 1, res.Insights.TotalSessions)

	ms, err := f.sessions.Get(context.Background(), f.sessionID)
	require.NoError(t, err)
	require.Len(t, ms.History, 1)
	assert.Len(t, ms.History[0].SampleImages, 1)
}

func TestAnalyzeImageDetectorDown(t *testing.T) {
	f := newFixture(t, func(int, []byte) ([]entity.Detection, error) { return nil, errors.New("connection refused") })

	_, err := f.svc.AnalyzeImage(context.Background(), f.sessionID, testFrame(t), 0.25)
	assert.ErrorIs(t, err, detection.ErrDetectorUnavailable)

	ms, err := f.sessions.Get(context.Background(), f.sessionID)
	require.NoError(t, err)
	assert.Empty(t, ms.History)
}

func TestAnalyzeImageWithoutFacesIsNatural(t *testing.T) {
	f := newFixture(t, func(int, []byte) ([]entity.Detection, error) { return nil, nil })

	res, err := f.svc.AnalyzeImage(context.Background(), f.sessionID, testFrame(t), 0.25)
	require.NoError(t, err)
	assert.Equal(t, entity.EmotionNatural, res.Dominant)
	assert.Equal(t, 0.0, res.Distribution.Sum())
}

func TestAnalyzeVideo(t *testing.T) {
	f := newFixture(t, func(n int, _ []byte) ([]entity.Detection, error) {
		if n == 4 {
			return nil, errors.New("timeout")
		}
		if n%2 == 0 {
			return []entity.Detection{{ClassIndex: 6, Confidence: 0.5}}, nil
		}
		return []entity.Detection{{ClassIndex: 0, Confidence: 0.5}}, nil
	})

	frames := make([][]byte, 7)
	for i := range frames {
		frames[i] = testFrame(t)
	}

	res, err := f.svc.AnalyzeVideo(context.Background(), f.sessionID, frames, 0.25, 3)
	require.NoError(t, err)

	assert.Equal(t, 7, res.FramesProcessed)
	assert.Equal(t, 1, res.FramesFailed)
	assert.Equal(t, 2, res.Record.SampleCount)
	assert.Equal(t, entity.EmotionAngry, res.Dominant)
	assert.InDelta(t, 66.67, res.Distribution[entity.EmotionAngry], 0.001)
	assert.InDelta(t, 33.33, res.Distribution[entity.EmotionSad], 0.001)
	assert.Equal(t, entity.InputModeVideo, res.Record.InputMode)
}

func TestAnalyzeVideoRejectsEmptyAndOversized(t *testing.T) {
	f := newFixture(t, func(int, []byte) ([]entity.Detection, error) { return nil, nil })

	_, err := f.svc.AnalyzeVideo(context.Background(), f.sessionID, nil, 0.25, 3)
	assert.ErrorIs(t, err, detection.ErrNoFrames)

	_, err = f.svc.AnalyzeVideo(context.Background(), f.sessionID, make([][]byte, detection.MaxVideoFrames+1), 0.25, 3)
	assert.ErrorIs(t, err, detection.ErrTooManyFrames)
}

func TestAnalyzeVideoKeepsAtMostFiveSamples(t *testing.T) {
	f := newFixture(t, func(int, []byte) ([]entity.Detection, error) { return happyFace(), nil })

	frames := make([][]byte, 20)
	for i := range frames {
		frames[i] = testFrame(t)
	}

	res, err := f.svc.AnalyzeVideo(context.Background(), f.sessionID, frames, 0.25, 1)
	require.NoError(t, err)
	assert.Equal(t, detection.MaxSamples, res.Record.SampleCount)
}

func TestAnalyzeText(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.AnalyzeText(context.Background(), f.sessionID, "bored")
	assert.ErrorIs(t, err, detection.ErrUnknownEmotion)

	res, err := f.svc.AnalyzeText(context.Background(), f.sessionID, " Sad ")
	require.NoError(t, err)
	assert.Equal(t, entity.EmotionSad, res.Dominant)
	assert.Equal(t, 100.0, res.Distribution[entity.EmotionSad])
	assert.Equal(t, entity.InputModeText, res.Record.InputMode)
	assert.Equal(t, 0, res.Record.SampleCount)
}

func TestRecommendationsUseHistoryBeforeTheRun(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := f.svc.AnalyzeText(ctx, f.sessionID, "sad")
		require.NoError(t, err)
	}

	res, err := f.svc.AnalyzeText(ctx, f.sessionID, "sad")
	require.NoError(t, err)

	var titles []string
	for _, s := range res.Recommendations.Songs {
		titles = append(titles, s.Title)
	}
	assert.Contains(t, titles, "Personalized Pick: Calming Focus Music")
	assert.Contains(t, titles, "Trend-Based Recommendation")
	assert.NotContains(t, titles, "Milestone Achievement: 5 Sessions!")
	assert.Equal(t, 5, res.Insights.TotalSessions)
}

func TestLiveRunConcurrentFrames(t *testing.T) {
	f := newFixture(t, func(int, []byte) ([]entity.Detection, error) { return happyFace(), nil })
	ctx := context.Background()

	run := f.svc.StartLive(f.sessionID, 0.25)
	frame := testFrame(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.ProcessLiveFrame(ctx, run, frame)
			assert.NoError(t, err)
			assert.Equal(t, entity.EmotionHappy, res.Dominant)
		}()
	}
	wg.Wait()

	res, err := f.svc.FinishLive(ctx, run)
	require.NoError(t, err)

	assert.Equal(t, 20, res.FramesProcessed)
	assert.Equal(t, 2, res.Record.SampleCount)
	assert.Equal(t, entity.InputModeWebcam, res.Record.InputMode)
	assert.Equal(t, 100.0, res.Distribution[entity.EmotionHappy])

	_, err = f.svc.ProcessLiveFrame(ctx, run, frame)
	assert.ErrorIs(t, err, detection.ErrRunFinished)
}

func TestLiveRunFailedFrameCountsAsEmpty(t *testing.T) {
	f := newFixture(t, func(n int, _ []byte) ([]entity.Detection, error) {
		if n == 1 {
			return nil, errors.New("boom")
		}
		return []entity.Detection{{ClassIndex: 3, Confidence: 0.9}}, nil
	})
	ctx := context.Background()

	run := f.svc.StartLive(f.sessionID, 0.25)

	first, err := f.svc.ProcessLiveFrame(ctx, run, testFrame(t))
	require.NoError(t, err)
	assert.NotEmpty(t, first.Error)
	assert.Equal(t, entity.EmotionNatural, first.Dominant)

	second, err := f.svc.ProcessLiveFrame(ctx, run, testFrame(t))
	require.NoError(t, err)
	assert.Equal(t, entity.EmotionFear, second.Dominant)

	res, err := f.svc.FinishLive(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FramesProcessed)
	assert.Equal(t, 1, res.FramesFailed)
}

func TestLiveRunWithoutFramesIsNatural(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.FinishLive(context.Background(), f.svc.StartLive(f.sessionID, 0.25))
	require.NoError(t, err)
	assert.Equal(t, entity.EmotionNatural, res.Dominant)
	assert.Equal(t, 0, res.FramesProcessed)
}
