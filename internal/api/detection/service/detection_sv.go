package detectionService

import (
	"MoodMate/internal/api/detection"
	"MoodMate/internal/api/session"
	"MoodMate/internal/entity"
	"MoodMate/pkg/aggregator"
	"MoodMate/pkg/log"
	"math"
	"time"

	"golang.org/x/net/context"
)

// Confidence validates a client supplied threshold. nil selects the configured default.
func (s *detectionService) Confidence(raw *float64) (float64, error) {
	if raw == nil {
		return s.defaultConfidence, nil
	}
	v := *raw
	if math.IsNaN(v) || v < detection.MinConfidence || v > detection.MaxConfidence {
		return 0, detection.ErrInvalidConfidence
	}
	return v, nil
}

func (s *detectionService) Dwell() time.Duration {
	return s.dwell
}

// detect runs the detector on one frame. A failing frame is logged and counts as empty.
func (s *detectionService) detect(ctx context.Context, frame []byte, conf float64) ([]entity.Detection, bool) {
	dets, err := s.detector.Detect(ctx, frame, conf)
	if err != nil {
		log.WithContext(ctx).WithField("error", err.Error()).Warn("Frame detection failed, counting it as empty")
		return nil, false
	}
	return dets, true
}

func (s *detectionService) annotate(ctx context.Context, frame []byte, dets []entity.Detection) ([]byte, bool) {
	out, err := s.utils.AnnotateDetections(frame, dets)
	if err != nil {
		log.WithContext(ctx).WithField("error", err.Error()).Warn("Failed to annotate sample frame")
		return nil, false
	}
	return out, true
}

func (s *detectionService) AnalyzeImage(ctx context.Context, sessionID string, frame []byte, conf float64) (detection.RunResponse, error) {
	tally := entity.NewWeightTally()

	dets, ok := s.detect(ctx, frame, conf)
	if !ok {
		return detection.RunResponse{}, detection.ErrDetectorUnavailable
	}
	aggregator.Accumulate(tally, dets, conf)

	var samples [][]byte
	if sample, ok := s.annotate(ctx, frame, dets); ok {
		samples = append(samples, sample)
	}

	res, err := s.complete(ctx, sessionID, entity.InputModeImage, tally, samples)
	if err != nil {
		return detection.RunResponse{}, err
	}
	res.FramesProcessed = 1
	return res, nil
}

// AnalyzeVideo folds every frame in order. Every previewEvery-th frame is annotated and kept
// as a sample, up to detection.MaxSamples.
func (s *detectionService) AnalyzeVideo(ctx context.Context, sessionID string, frames [][]byte, conf float64, previewEvery int) (detection.RunResponse, error) {
	if len(frames) == 0 {
		return detection.RunResponse{}, detection.ErrNoFrames
	}
	if len(frames) > detection.MaxVideoFrames {
		return detection.RunResponse{}, detection.ErrTooManyFrames
	}
	if previewEvery < 1 {
		previewEvery = detection.DefaultPreviewEvery
	}

	tally := entity.NewWeightTally()
	var samples [][]byte
	failed := 0

	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return detection.RunResponse{}, err
		}

		dets, ok := s.detect(ctx, frame, conf)
		if !ok {
			failed++
			continue
		}
		aggregator.Accumulate(tally, dets, conf)

		if (i+1)%previewEvery == 0 && len(samples) < detection.MaxSamples {
			if sample, ok := s.annotate(ctx, frame, dets); ok {
				samples = append(samples, sample)
			}
		}
	}

	if failed == len(frames) {
		return detection.RunResponse{}, detection.ErrDetectorUnavailable
	}

	res, err := s.complete(ctx, sessionID, entity.InputModeVideo, tally, samples)
	if err != nil {
		return detection.RunResponse{}, err
	}
	res.FramesProcessed = len(frames)
	res.FramesFailed = failed
	return res, nil
}

// AnalyzeText records a self reported emotion as a 100% distribution.
func (s *detectionService) AnalyzeText(ctx context.Context, sessionID string, emotion string) (detection.RunResponse, error) {
	category, ok := entity.ParseEmotionCategory(emotion)
	if !ok {
		return detection.RunResponse{}, detection.ErrUnknownEmotion
	}

	dist := entity.ZeroDistribution()
	dist[category] = 100

	return s.record(ctx, sessionID, entity.InputModeText, dist, category, nil)
}

func (s *detectionService) complete(ctx context.Context, sessionID string, mode entity.InputMode, tally entity.WeightTally, samples [][]byte) (detection.RunResponse, error) {
	dist := aggregator.Normalize(tally)
	return s.record(ctx, sessionID, mode, dist, aggregator.Dominant(dist), samples)
}

// record selects recommendations from the session as it was before this run, then appends
// the run to the history in the same locked update.
func (s *detectionService) record(
	ctx context.Context,
	sessionID string,
	mode entity.InputMode,
	dist entity.PercentageDistribution,
	dominant entity.EmotionCategory,
	samples [][]byte,
) (detection.RunResponse, error) {
	var (
		recs   entity.Recommendations
		record entity.SessionRecord
	)

	ms, err := s.sessionService.Update(ctx, sessionID, func(current *entity.MoodSession) error {
		insights, ok := current.Insights()
		recs = s.recommendationService.Personalize(s.recommendationService.Select(dominant), insights, ok, current.Preferences)

		record = current.Record(entity.RecordInput{
			Distribution:    dist,
			Dominant:        dominant,
			Recommendations: recs,
			InputMode:       mode,
			SampleImages:    samples,
		})
		return nil
	})
	if err != nil {
		return detection.RunResponse{}, err
	}

	res := detection.RunResponse{
		Record:          session.NewRecordSummary(record),
		Distribution:    dist,
		Dominant:        dominant,
		Recommendations: recs,
	}

	if insights, ok := ms.Insights(); ok {
		if insights.LastSession != nil {
			last := *insights.LastSession
			last.SampleImages = nil
			insights.LastSession = &last
		}
		res.Insights = &insights
	}

	log.WithContext(ctx).WithFields(log.Fields{
		"session_id": sessionID,
		"record_id":  record.ID,
		"input_mode": mode,
		"dominant":   dominant,
		"samples":    len(samples),
	}).Info("Mood run recorded")

	return res, nil
}
