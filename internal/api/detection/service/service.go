package detectionService

import (
	"MoodMate/internal/api/detection"
	recommendationService "MoodMate/internal/api/recommendation/service"
	sessionService "MoodMate/internal/api/session/service"
	"MoodMate/pkg/detector"
	"MoodMate/pkg/utils"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	defaultConfidence = 0.25
	defaultDwell      = 2 * time.Second
)

type IDetectionService interface {
	Confidence(raw *float64) (float64, error)
	Dwell() time.Duration

	AnalyzeImage(ctx context.Context, sessionID string, frame []byte, conf float64) (detection.RunResponse, error)
	AnalyzeVideo(ctx context.Context, sessionID string, frames [][]byte, conf float64, previewEvery int) (detection.RunResponse, error)
	AnalyzeText(ctx context.Context, sessionID string, emotion string) (detection.RunResponse, error)

	StartLive(sessionID string, conf float64) *LiveRun
	ProcessLiveFrame(ctx context.Context, run *LiveRun, frame []byte) (detection.LiveFrameResponse, error)
	FinishLive(ctx context.Context, run *LiveRun) (detection.RunResponse, error)
}

type detectionService struct {
	log                   *logrus.Logger
	detector              detector.IDetector
	utils                 utils.IUtils
	sessionService        sessionService.ISessionService
	recommendationService recommendationService.IRecommendationService
	defaultConfidence     float64
	dwell                 time.Duration
}

// NewDetectionService reads DETECTION_CONFIDENCE and LIVE_DWELL, falling back to 0.25 and 2s.
func NewDetectionService(
	log *logrus.Logger,
	detector detector.IDetector,
	utils utils.IUtils,
	sessionService sessionService.ISessionService,
	recommendationService recommendationService.IRecommendationService,
) IDetectionService {
	conf := defaultConfidence
	if v, err := strconv.ParseFloat(os.Getenv("DETECTION_CONFIDENCE"), 64); err == nil && v >= detection.MinConfidence && v <= detection.MaxConfidence {
		conf = v
	}

	dwell := defaultDwell
	if v, err := time.ParseDuration(os.Getenv("LIVE_DWELL")); err == nil && v >= 0 {
		dwell = v
	}

	return &detectionService{
		log:                   log,
		detector:              detector,
		utils:                 utils,
		sessionService:        sessionService,
		recommendationService: recommendationService,
		defaultConfidence:     conf,
		dwell:                 dwell,
	}
}
