// Package detector defines the hand landmark data model and the asynchronous
// landmark source used by the gesture pipeline.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Landmark is one hand joint. X and Y are normalized to [0,1] of the frame
// width and height, with Y growing downward. Z is relative depth.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is the landmark skeleton of one detected hand.
// A well-formed hand has exactly NumLandmarks points in index order.
type Hand struct {
	Landmarks  []Landmark `json:"landmarks"`
	Handedness string     `json:"handedness,omitempty"` // "Left" or "Right"
	Score      float64    `json:"score,omitempty"`
}

// Valid reports whether the hand carries the full landmark set.
func (h Hand) Valid() bool {
	return len(h.Landmarks) == NumLandmarks
}

// Clone returns a deep copy of the hand.
func (h Hand) Clone() Hand {
	c := h
	if h.Landmarks != nil {
		c.Landmarks = make([]Landmark, len(h.Landmarks))
		copy(c.Landmarks, h.Landmarks)
	}
	return c
}

// DetectionResult is the set of hands found in one analyzed frame.
// TimestampMs is the timestamp the frame was submitted with.
// A result with no hands is valid and means no hand was visible.
type DetectionResult struct {
	Hands       []Hand `json:"hands"`
	TimestampMs int64  `json:"timestamp_ms"`
}

// Clone returns a deep copy of the result.
func (r DetectionResult) Clone() DetectionResult {
	c := DetectionResult{TimestampMs: r.TimestampMs}
	if len(r.Hands) > 0 {
		c.Hands = make([]Hand, len(r.Hands))
		for i, h := range r.Hands {
			c.Hands[i] = h.Clone()
		}
	}
	return c
}
