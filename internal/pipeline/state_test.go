package pipeline

import (
	"sync"
	"testing"

	"github.com/gestellence/gestellence/internal/detector"
	"github.com/gestellence/gestellence/internal/gesture"
)

func TestState_Empty(t *testing.T) {
	var s State

	snap := s.Load()
	if snap.Gesture != gesture.NoHand {
		t.Errorf("expected NO_HAND before first publish, got %s", snap.Gesture)
	}
	if snap.Populated {
		t.Error("empty state should not be populated")
	}
	if len(snap.Result.Hands) != 0 {
		t.Errorf("expected no hands, got %d", len(snap.Result.Hands))
	}
}

func TestState_Publish(t *testing.T) {
	tests := []struct {
		name  string
		hands []detector.Hand
		want  gesture.Gesture
	}{
		{name: "no hands", hands: nil, want: gesture.NoHand},
		{name: "fist", hands: []detector.Hand{detector.FistLandmarks()}, want: gesture.Yes},
		{name: "open palm first", hands: []detector.Hand{detector.OpenPalmLandmarks(), detector.FistLandmarks()}, want: gesture.Stop},
		{name: "malformed", hands: []detector.Hand{{}}, want: gesture.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s State
			if !s.Publish(detector.DetectionResult{Hands: tt.hands, TimestampMs: 33}) {
				t.Fatal("publish should be accepted")
			}

			snap := s.Load()
			if snap.Gesture != tt.want {
				t.Errorf("gesture = %s, want %s", snap.Gesture, tt.want)
			}
			if !snap.Populated {
				t.Error("state should be populated after publish")
			}
			if snap.Result.TimestampMs != 33 {
				t.Errorf("timestamp = %d, want 33", snap.Result.TimestampMs)
			}
			if len(snap.Result.Hands) != len(tt.hands) {
				t.Errorf("hands = %d, want %d", len(snap.Result.Hands), len(tt.hands))
			}
		})
	}
}

func TestState_PublishCopiesResult(t *testing.T) {
	var s State

	hands := []detector.Hand{detector.OpenPalmLandmarks()}
	s.Publish(detector.DetectionResult{Hands: hands})

	// The source reusing its buffers must not leak into the snapshot.
	hands[0].Landmarks[detector.IndexTip].Y = 0.99

	snap := s.Load()
	if snap.Result.Hands[0].Landmarks[detector.IndexTip].Y == 0.99 {
		t.Error("snapshot shares landmark storage with the published result")
	}
	if snap.Gesture != gesture.Stop {
		t.Errorf("gesture = %s, want STOP", snap.Gesture)
	}
}

func TestState_NoReturnToEmpty(t *testing.T) {
	var s State
	s.Publish(detector.DetectionResult{Hands: []detector.Hand{detector.FistLandmarks()}})
	s.Publish(detector.DetectionResult{})

	snap := s.Load()
	if !snap.Populated {
		t.Error("state must stay populated once a result has landed")
	}
	if snap.Gesture != gesture.NoHand {
		t.Errorf("gesture = %s, want NO_HAND", snap.Gesture)
	}
}

func TestState_OutOfOrderCompletion(t *testing.T) {
	newer := detector.DetectionResult{Hands: []detector.Hand{detector.FistLandmarks()}, TimestampMs: 66}
	older := detector.DetectionResult{Hands: []detector.Hand{detector.OpenPalmLandmarks()}, TimestampMs: 33}

	t.Run("latest completion wins by default", func(t *testing.T) {
		var s State
		s.Publish(newer)
		if !s.Publish(older) {
			t.Fatal("older result should be accepted")
		}
		if got := s.Load(); got.Gesture != gesture.Stop || got.Result.TimestampMs != 33 {
			t.Errorf("expected older STOP result to be shown, got %s at %d", got.Gesture, got.Result.TimestampMs)
		}
	})

	t.Run("discard stale keeps the newer result", func(t *testing.T) {
		s := State{DiscardStale: true}
		s.Publish(newer)
		if s.Publish(older) {
			t.Fatal("older result should be rejected")
		}
		if got := s.Load(); got.Gesture != gesture.Yes || got.Result.TimestampMs != 66 {
			t.Errorf("expected newer YES result to remain, got %s at %d", got.Gesture, got.Result.TimestampMs)
		}
	})
}

func TestState_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	var s State

	// Each result's timestamp identifies which gesture it must carry.
	results := []detector.DetectionResult{
		{TimestampMs: 0},
		{Hands: []detector.Hand{detector.FistLandmarks()}, TimestampMs: 1},
		{Hands: []detector.Hand{detector.OpenPalmLandmarks(), detector.FistLandmarks()}, TimestampMs: 2},
		{Hands: []detector.Hand{detector.VictoryLandmarks()}, TimestampMs: 3},
	}
	wantGesture := []gesture.Gesture{gesture.NoHand, gesture.Yes, gesture.Stop, gesture.No}
	wantHands := []int{0, 1, 2, 1}

	const (
		writers = 4
		readers = 8
		rounds  = 2000
	)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				s.Publish(results[(w+i)%len(results)])
			}
		}(w)
	}

	errs := make(chan string, readers)
	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				snap := s.Load()
				if !snap.Populated {
					if snap.Gesture != gesture.NoHand {
						errs <- "empty snapshot with gesture " + string(snap.Gesture)
						return
					}
					continue
				}
				k := snap.Result.TimestampMs
				if snap.Gesture != wantGesture[k] || len(snap.Result.Hands) != wantHands[k] {
					errs <- "torn snapshot: gesture " + string(snap.Gesture)
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
