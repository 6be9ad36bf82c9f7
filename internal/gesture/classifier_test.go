package gesture

import (
	"testing"

	"github.com/gestellence/gestellence/internal/detector"
)

var (
	tips  = []int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	bases = []int{detector.IndexPIP, detector.MiddlePIP, detector.RingPIP, detector.PinkyPIP}
)

// restHand returns a hand with every landmark at the frame center.
func restHand() detector.Hand {
	points := make([]detector.Landmark, detector.NumLandmarks)
	for i := range points {
		points[i] = detector.Landmark{X: 0.5, Y: 0.5}
	}
	return detector.Hand{Landmarks: points}
}

// fingers sets the four finger tips and bases. Each entry is tip y for
// index, middle, ring, pinky; all bases sit at y=0.5.
func fingers(h detector.Hand, tipY [4]float64) detector.Hand {
	for i := range tips {
		h.Landmarks[bases[i]].Y = 0.5
		h.Landmarks[tips[i]].Y = tipY[i]
	}
	return h
}

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		hand detector.Hand
		want Gesture
	}{
		{
			name: "fingers extended",
			hand: fingers(restHand(), [4]float64{0.3, 0.3, 0.3, 0.3}),
			want: Stop,
		},
		{
			name: "fingers curled",
			hand: fingers(restHand(), [4]float64{0.7, 0.7, 0.7, 0.7}),
			want: Yes,
		},
		{
			name: "index and middle up, ring and pinky down",
			hand: fingers(restHand(), [4]float64{0.3, 0.3, 0.7, 0.7}),
			want: No,
		},
		{
			name: "all at rest",
			hand: restHand(),
			want: Unknown,
		},
		{
			name: "mixed fingers",
			hand: fingers(restHand(), [4]float64{0.3, 0.7, 0.3, 0.7}),
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.hand); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassify_Stop_AnyExtension(t *testing.T) {
	for _, tipY := range []float64{0.0, 0.1, 0.25, 0.49, 0.4999} {
		h := fingers(restHand(), [4]float64{tipY, tipY, tipY, tipY})
		if got := Classify(h); got != Stop {
			t.Errorf("tip y=%v: Classify() = %s, want STOP", tipY, got)
		}
	}
}

func TestClassify_Yes_AnyCurl(t *testing.T) {
	for _, tipY := range []float64{0.5001, 0.6, 0.9, 1.0} {
		h := fingers(restHand(), [4]float64{tipY, tipY, tipY, tipY})
		if got := Classify(h); got != Yes {
			t.Errorf("tip y=%v: Classify() = %s, want YES", tipY, got)
		}
	}
}

func TestClassify_StrictComparison(t *testing.T) {
	// A tip level with its base is neither up nor down.
	h := fingers(restHand(), [4]float64{0.3, 0.3, 0.3, 0.5})
	if got := Classify(h); got == Stop {
		t.Error("a pinky tip level with its base must not count as extended")
	}
}

func TestClassify_CallMe(t *testing.T) {
	h := fingers(restHand(), [4]float64{0.7, 0.7, 0.7, 0.3})
	h.Landmarks[detector.ThumbTip] = detector.Landmark{X: 0.7, Y: 0.4}

	if got := Classify(h); got != CallMe {
		t.Errorf("Classify() = %s, want CALL_ME", got)
	}

	t.Run("thumb below index base", func(t *testing.T) {
		h := fingers(restHand(), [4]float64{0.7, 0.7, 0.7, 0.3})
		h.Landmarks[detector.ThumbTip] = detector.Landmark{X: 0.7, Y: 0.6}

		if got := Classify(h); got == CallMe {
			t.Error("thumb tip below the index base must not be CALL_ME")
		}
	})
}

func TestClassify_OK(t *testing.T) {
	pinch := func(thumbX float64) detector.Hand {
		h := fingers(restHand(), [4]float64{0.6, 0.3, 0.3, 0.3})
		h.Landmarks[detector.IndexTip].X = 0.5
		h.Landmarks[detector.ThumbTip] = detector.Landmark{X: thumbX, Y: 0.6}
		return h
	}

	t.Run("tips touching", func(t *testing.T) {
		if got := Classify(pinch(0.52)); got != OK {
			t.Errorf("Classify() = %s, want OK", got)
		}
	})

	t.Run("tips apart", func(t *testing.T) {
		h := pinch(0.5625)
		if d := distance2D(h.Landmarks[detector.ThumbTip], h.Landmarks[detector.IndexTip]); d < OKDistance {
			t.Fatalf("test setup: distance %v should be >= %v", d, OKDistance)
		}
		if got := Classify(h); got == OK {
			t.Error("tips 0.0625 apart must not be OK")
		}
	})

	t.Run("just inside threshold", func(t *testing.T) {
		if got := Classify(pinch(0.5 + OKDistance*0.99)); got != OK {
			t.Errorf("Classify() = %s, want OK", got)
		}
	})
}

func TestClassify_Presets(t *testing.T) {
	tests := []struct {
		name string
		hand detector.Hand
		want Gesture
	}{
		{name: "open palm", hand: detector.OpenPalmLandmarks(), want: Stop},
		{name: "fist", hand: detector.FistLandmarks(), want: Yes},
		{name: "victory", hand: detector.VictoryLandmarks(), want: No},
		{name: "call me", hand: detector.CallMeLandmarks(), want: CallMe},
		{name: "ok", hand: detector.OKLandmarks(), want: OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.hand); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassify_MalformedHand(t *testing.T) {
	for _, n := range []int{0, 1, 9, 20, 22} {
		h := detector.Hand{Landmarks: make([]detector.Landmark, n)}
		if got := Classify(h); got != Unknown {
			t.Errorf("%d landmarks: Classify() = %s, want UNKNOWN", n, got)
		}
	}
}

func TestRules_Order(t *testing.T) {
	want := []Gesture{Stop, Yes, No, CallMe, OK}

	got := Rules()
	if len(got) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(got))
	}
	for i, r := range got {
		if r.Gesture != want[i] {
			t.Errorf("rule %d = %s, want %s", i, r.Gesture, want[i])
		}
	}

	// Mutating the returned slice must not reorder classification.
	got[0], got[1] = got[1], got[0]
	if Rules()[0].Gesture != Stop {
		t.Error("Rules() must return a copy")
	}
}

func TestRules_StopShadowsOK(t *testing.T) {
	// All four fingers up with thumb and index tips touching satisfies both
	// the STOP and the OK predicates. STOP comes first.
	h := fingers(restHand(), [4]float64{0.3, 0.3, 0.3, 0.3})
	h.Landmarks[detector.ThumbTip] = detector.Landmark{X: 0.51, Y: 0.3}
	h.Landmarks[detector.IndexTip].X = 0.5

	var matched []Gesture
	for _, r := range Rules() {
		if r.Match(h) {
			matched = append(matched, r.Gesture)
		}
	}
	if len(matched) != 2 || matched[0] != Stop || matched[1] != OK {
		t.Fatalf("expected STOP and OK predicates to hold, got %v", matched)
	}

	if got := Classify(h); got != Stop {
		t.Errorf("Classify() = %s, want STOP", got)
	}
}

func TestForResult(t *testing.T) {
	t.Run("no hands is NO_HAND", func(t *testing.T) {
		if got := ForResult(detector.DetectionResult{TimestampMs: 99}); got != NoHand {
			t.Errorf("ForResult() = %s, want NO_HAND", got)
		}
	})

	t.Run("first hand decides", func(t *testing.T) {
		r := detector.DetectionResult{Hands: []detector.Hand{
			detector.FistLandmarks(),
			detector.OpenPalmLandmarks(),
		}}
		if got := ForResult(r); got != Yes {
			t.Errorf("ForResult() = %s, want YES", got)
		}
	})

	t.Run("malformed first hand is UNKNOWN", func(t *testing.T) {
		r := detector.DetectionResult{Hands: []detector.Hand{{}, detector.OpenPalmLandmarks()}}
		if got := ForResult(r); got != Unknown {
			t.Errorf("ForResult() = %s, want UNKNOWN", got)
		}
	})
}

func TestGesture_Label(t *testing.T) {
	tests := map[Gesture]string{
		Stop:    "STOP",
		Yes:     "YES",
		No:      "NO",
		CallMe:  "CALL ME",
		OK:      "OK",
		Unknown: "UNKNOWN",
		NoHand:  "No Hand",
	}
	for g, want := range tests {
		if got := g.Label(); got != want {
			t.Errorf("%s.Label() = %q, want %q", g, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   Gesture
		wantOK bool
	}{
		{"STOP", Stop, true},
		{"call me", CallMe, true},
		{"CALL_ME", CallMe, true},
		{"No Hand", NoHand, true},
		{" ok ", OK, true},
		{"wave", Unknown, false},
		{"", Unknown, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parse(%q) = %s, %v; want %s, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
