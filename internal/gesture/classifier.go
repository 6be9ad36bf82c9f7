package gesture

import (
	"math"

	"github.com/gestellence/gestellence/internal/detector"
)

// OKDistance is the normalized thumb-to-index tip distance below which the
// two tips count as touching.
const OKDistance = 0.05

// Rule pairs a gesture with the predicate that recognizes it.
type Rule struct {
	Gesture Gesture
	Match   func(h detector.Hand) bool
}

// rules are evaluated in order and the first match wins. Several predicates
// can hold for the same pose, so the order is part of the behavior.
var rules = []Rule{
	{Gesture: Stop, Match: isStop},
	{Gesture: Yes, Match: isYes},
	{Gesture: No, Match: isNo},
	{Gesture: CallMe, Match: isCallMe},
	{Gesture: OK, Match: isOK},
}

// Rules returns the classification rules in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify maps one hand to a gesture. A hand without the full landmark set
// is Unknown.
func Classify(h detector.Hand) Gesture {
	if !h.Valid() {
		return Unknown
	}
	for _, r := range rules {
		if r.Match(h) {
			return r.Gesture
		}
	}
	return Unknown
}

// ForResult returns the headline gesture of a detection: NoHand when nothing
// was detected, otherwise the classification of the first hand.
//
// Additional hands are drawn but do not affect the label.
func ForResult(r detector.DetectionResult) Gesture {
	if len(r.Hands) == 0 {
		return NoHand
	}
	return Classify(r.Hands[0])
}

// up reports whether a fingertip is above (smaller y than) its PIP joint.
func up(h detector.Hand, tip, pip int) bool {
	return h.Landmarks[tip].Y < h.Landmarks[pip].Y
}

// down reports whether a fingertip is below (larger y than) its PIP joint.
func down(h detector.Hand, tip, pip int) bool {
	return h.Landmarks[tip].Y > h.Landmarks[pip].Y
}

func indexUp(h detector.Hand) bool    { return up(h, detector.IndexTip, detector.IndexPIP) }
func middleUp(h detector.Hand) bool   { return up(h, detector.MiddleTip, detector.MiddlePIP) }
func ringUp(h detector.Hand) bool     { return up(h, detector.RingTip, detector.RingPIP) }
func pinkyUp(h detector.Hand) bool    { return up(h, detector.PinkyTip, detector.PinkyPIP) }
func indexDown(h detector.Hand) bool  { return down(h, detector.IndexTip, detector.IndexPIP) }
func middleDown(h detector.Hand) bool { return down(h, detector.MiddleTip, detector.MiddlePIP) }
func ringDown(h detector.Hand) bool   { return down(h, detector.RingTip, detector.RingPIP) }
func pinkyDown(h detector.Hand) bool  { return down(h, detector.PinkyTip, detector.PinkyPIP) }

func isStop(h detector.Hand) bool {
	return indexUp(h) && middleUp(h) && ringUp(h) && pinkyUp(h)
}

func isYes(h detector.Hand) bool {
	return indexDown(h) && middleDown(h) && ringDown(h) && pinkyDown(h)
}

func isNo(h detector.Hand) bool {
	return indexUp(h) && middleUp(h) && ringDown(h) && pinkyDown(h)
}

// isCallMe compares the thumb tip against the index PIP joint, not a thumb
// joint, since an extended thumb points sideways.
func isCallMe(h detector.Hand) bool {
	thumbUp := h.Landmarks[detector.ThumbTip].Y < h.Landmarks[detector.IndexPIP].Y
	return thumbUp && pinkyUp(h) && indexDown(h) && middleDown(h) && ringDown(h)
}

func isOK(h detector.Hand) bool {
	pinch := distance2D(h.Landmarks[detector.ThumbTip], h.Landmarks[detector.IndexTip]) < OKDistance
	return pinch && middleUp(h) && ringUp(h) && pinkyUp(h)
}

// distance2D is the Euclidean distance in the normalized image plane.
func distance2D(a, b detector.Landmark) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
