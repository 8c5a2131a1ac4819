package detectionService

import (
	"MoodMate/internal/api/detection"
	"MoodMate/internal/entity"
	"MoodMate/pkg/aggregator"
	"sync"

	"golang.org/x/net/context"
)

// LiveRun is one live webcam run. Frames may be processed from several goroutines.
type LiveRun struct {
	SessionID  string
	Confidence float64

	capture *aggregator.LiveCapture

	mu      sync.Mutex
	frameNo int
	failed  int
	samples [][]byte
}

func (s *detectionService) StartLive(sessionID string, conf float64) *LiveRun {
	return &LiveRun{
		SessionID:  sessionID,
		Confidence: conf,
		capture:    aggregator.NewLiveCapture(),
	}
}

func (r *LiveRun) nextFrame() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frameNo++
	return r.frameNo
}

// ProcessLiveFrame detects one frame, folds it into the run and returns the running
// distribution. Every detection.LiveSampleEvery-th frame is kept as an annotated sample.
func (s *detectionService) ProcessLiveFrame(ctx context.Context, run *LiveRun, frame []byte) (detection.LiveFrameResponse, error) {
	n := run.nextFrame()
	res := detection.LiveFrameResponse{Type: "frame", Frame: n, Detections: []entity.Detection{}}

	dets, ok := s.detect(ctx, frame, run.Confidence)
	if !ok {
		run.mu.Lock()
		run.failed++
		run.mu.Unlock()
		res.Error = detection.ErrDetectorUnavailable.Error()
	}

	tally := entity.NewWeightTally()
	aggregator.Accumulate(tally, dets, run.Confidence)
	if err := run.capture.Add(tally); err != nil {
		return detection.LiveFrameResponse{}, detection.ErrRunFinished
	}
	if dets != nil {
		res.Detections = dets
	}

	if ok && n%detection.LiveSampleEvery == 0 {
		run.mu.Lock()
		want := len(run.samples) < detection.MaxSamples
		run.mu.Unlock()

		if want {
			if sample, ok := s.annotate(ctx, frame, dets); ok {
				run.mu.Lock()
				if len(run.samples) < detection.MaxSamples {
					run.samples = append(run.samples, sample)
				}
				run.mu.Unlock()
			}
		}
	}

	state, err := run.capture.Snapshot()
	if err != nil {
		return detection.LiveFrameResponse{}, detection.ErrRunFinished
	}
	res.Distribution = aggregator.Normalize(state.Tally)
	res.Dominant = aggregator.Dominant(res.Distribution)

	return res, nil
}

// FinishLive stops the run and records it. A run with no frames yields natural.
func (s *detectionService) FinishLive(ctx context.Context, run *LiveRun) (detection.RunResponse, error) {
	state := run.capture.Stop()

	run.mu.Lock()
	samples := append([][]byte(nil), run.samples...)
	failed := run.failed
	run.mu.Unlock()

	res, err := s.complete(ctx, run.SessionID, entity.InputModeWebcam, state.Tally, samples)
	if err != nil {
		return detection.RunResponse{}, err
	}
	res.FramesProcessed = state.Frames
	res.FramesFailed = failed
	return res, nil
}

// Abort stops the run without recording it.
func (r *LiveRun) Abort() {
	r.capture.Stop()
}
