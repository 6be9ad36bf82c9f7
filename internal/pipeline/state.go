// Package pipeline couples an asynchronous landmark source to a synchronous
// per-frame render loop.
//
// Completed detections are published into a State as whole immutable
// snapshots. The render path reads the latest snapshot on every frame and
// never waits for the detector, so a frame may be drawn with a result that
// is one or more frames old.
package pipeline

import (
	"sync/atomic"

	"github.com/gestellence/gestellence/internal/detector"
	"github.com/gestellence/gestellence/internal/gesture"
)

// Snapshot is the latest detection together with the gesture derived from
// it. A Snapshot is never modified after it has been published.
type Snapshot struct {
	Result    detector.DetectionResult `json:"result"`
	Gesture   gesture.Gesture          `json:"gesture"`
	Populated bool                     `json:"populated"`
}

// Empty is the snapshot seen before the first detection completes.
var Empty = Snapshot{Gesture: gesture.NoHand}

// State holds the most recent Snapshot. The zero value is ready to use and
// starts empty. Loads and publishes are safe from any goroutine.
type State struct {
	latest atomic.Pointer[Snapshot]

	// DiscardStale makes Publish ignore results whose timestamp is older
	// than the one already held.
	DiscardStale bool
}

// Load returns the current snapshot.
func (s *State) Load() Snapshot {
	if p := s.latest.Load(); p != nil {
		return *p
	}
	return Empty
}

// Publish classifies result and replaces the current snapshot with it in one
// step. It reports whether the result was accepted; it is only rejected when
// DiscardStale is set and a newer result is already held.
func (s *State) Publish(result detector.DetectionResult) bool {
	r := result.Clone()
	next := &Snapshot{
		Result:    r,
		Gesture:   gesture.ForResult(r),
		Populated: true,
	}

	if !s.DiscardStale {
		s.latest.Store(next)
		return true
	}

	for {
		cur := s.latest.Load()
		if cur != nil && cur.Result.TimestampMs > r.TimestampMs {
			return false
		}
		if s.latest.CompareAndSwap(cur, next) {
			return true
		}
	}
}
