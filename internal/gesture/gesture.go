// Package gesture classifies a hand skeleton into one of a fixed set of
// named poses.
package gesture

import "strings"

// Gesture is a classified hand pose.
type Gesture string

const (
	// Stop: all four fingers extended upward.
	Stop Gesture = "STOP"
	// Yes: all four fingers curled (closed fist).
	Yes Gesture = "YES"
	// No: index and middle extended, ring and pinky curled.
	No Gesture = "NO"
	// CallMe: thumb and pinky extended, the middle three curled.
	CallMe Gesture = "CALL_ME"
	// OK: thumb and index tips touching, the other three fingers extended.
	OK Gesture = "OK"
	// Unknown: a hand was detected but matched no pose.
	Unknown Gesture = "UNKNOWN"
	// NoHand: no hand was detected.
	NoHand Gesture = "NO_HAND"
)

// All lists every gesture value.
var All = []Gesture{Stop, Yes, No, CallMe, OK, Unknown, NoHand}

// Label returns the text shown on screen for the gesture.
func (g Gesture) Label() string {
	switch g {
	case CallMe:
		return "CALL ME"
	case NoHand:
		return "No Hand"
	case "":
		return string(Unknown)
	default:
		return string(g)
	}
}

// Valid reports whether g is one of the known gestures.
func (g Gesture) Valid() bool {
	for _, v := range All {
		if g == v {
			return true
		}
	}
	return false
}

// Parse maps a gesture name or display label back to a Gesture.
// It is case-insensitive and accepts spaces in place of underscores.
func Parse(s string) (Gesture, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "_")
	g := Gesture(norm)
	if !g.Valid() {
		return Unknown, false
	}
	return g, true
}
