package aggregator

import (
	"MoodMate/internal/entity"
	"errors"
	"sync"
)

var ErrCaptureStopped = errors.New("live capture already stopped")

type CaptureState struct {
	Tally  entity.WeightTally
	Frames int
}

// LiveCapture owns the running tally of one live run. Producers hand over per-frame
// tallies and never touch the running one; only the loop goroutine mutates it.
type LiveCapture struct {
	frames    chan entity.WeightTally
	snapshots chan chan CaptureState
	stop      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	final     CaptureState
}

// NewLiveCapture starts the owning goroutine. The frame channel is unbuffered so a frame is
// either folded into the tally or rejected with ErrCaptureStopped, never lost.
func NewLiveCapture() *LiveCapture {
	lc := &LiveCapture{
		frames:    make(chan entity.WeightTally),
		snapshots: make(chan chan CaptureState),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go lc.loop()
	return lc
}

func (lc *LiveCapture) loop() {
	state := CaptureState{Tally: entity.NewWeightTally()}

	for {
		select {
		case frame := <-lc.frames:
			state.Tally.Merge(frame)
			state.Frames++
		case reply := <-lc.snapshots:
			reply <- CaptureState{Tally: state.Tally.Clone(), Frames: state.Frames}
		case <-lc.stop:
			for {
				select {
				case frame := <-lc.frames:
					state.Tally.Merge(frame)
					state.Frames++
				default:
					lc.final = state
					close(lc.done)
					return
				}
			}
		}
	}
}

// Add hands one frame's tally to the capture. The tally must not be modified afterwards.
func (lc *LiveCapture) Add(frame entity.WeightTally) error {
	select {
	case <-lc.done:
		return ErrCaptureStopped
	default:
	}

	select {
	case lc.frames <- frame:
		return nil
	case <-lc.done:
		return ErrCaptureStopped
	}
}

func (lc *LiveCapture) Snapshot() (CaptureState, error) {
	reply := make(chan CaptureState, 1)
	select {
	case lc.snapshots <- reply:
		return <-reply, nil
	case <-lc.done:
		return CaptureState{}, ErrCaptureStopped
	}
}

// Stop ends the capture and returns the final state. Calling it again returns the same state.
func (lc *LiveCapture) Stop() CaptureState {
	lc.stopOnce.Do(func() {
		close(lc.stop)
	})
	<-lc.done
	return CaptureState{Tally: lc.final.Tally.Clone(), Frames: lc.final.Frames}
}
