package detector

// Preset hands for tests and the mock source. Coordinates describe a right
// hand, palm facing the camera, in a mirrored frame.

func presetHand(points [NumLandmarks]Landmark) Hand {
	return Hand{
		Landmarks:  points[:],
		Handedness: "Right",
		Score:      0.95,
	}
}

// OpenPalmLandmarks returns a hand with all four fingers extended upward.
func OpenPalmLandmarks() Hand {
	var p [NumLandmarks]Landmark

	p[Wrist] = Landmark{X: 0.5, Y: 0.8}

	// Thumb extended to the side
	p[ThumbCMC] = Landmark{X: 0.55, Y: 0.75, Z: 0.02}
	p[ThumbMCP] = Landmark{X: 0.62, Y: 0.70, Z: 0.03}
	p[ThumbIP] = Landmark{X: 0.68, Y: 0.65, Z: 0.03}
	p[ThumbTip] = Landmark{X: 0.73, Y: 0.60, Z: 0.03}

	p[IndexMCP] = Landmark{X: 0.55, Y: 0.68}
	p[IndexPIP] = Landmark{X: 0.57, Y: 0.55}
	p[IndexDIP] = Landmark{X: 0.58, Y: 0.45}
	p[IndexTip] = Landmark{X: 0.58, Y: 0.35}

	p[MiddleMCP] = Landmark{X: 0.50, Y: 0.66}
	p[MiddlePIP] = Landmark{X: 0.50, Y: 0.52}
	p[MiddleDIP] = Landmark{X: 0.50, Y: 0.40}
	p[MiddleTip] = Landmark{X: 0.50, Y: 0.28}

	p[RingMCP] = Landmark{X: 0.45, Y: 0.68}
	p[RingPIP] = Landmark{X: 0.43, Y: 0.55}
	p[RingDIP] = Landmark{X: 0.42, Y: 0.45}
	p[RingTip] = Landmark{X: 0.42, Y: 0.35}

	p[PinkyMCP] = Landmark{X: 0.40, Y: 0.70}
	p[PinkyPIP] = Landmark{X: 0.37, Y: 0.60}
	p[PinkyDIP] = Landmark{X: 0.35, Y: 0.50}
	p[PinkyTip] = Landmark{X: 0.34, Y: 0.42}

	return presetHand(p)
}

// FistLandmarks returns a closed fist: every fingertip below its PIP joint.
func FistLandmarks() Hand {
	p := curledPalm()
	return presetHand(p)
}

// VictoryLandmarks returns index and middle extended, ring and pinky curled.
func VictoryLandmarks() Hand {
	p := curledPalm()

	p[IndexPIP] = Landmark{X: 0.57, Y: 0.55}
	p[IndexDIP] = Landmark{X: 0.58, Y: 0.45}
	p[IndexTip] = Landmark{X: 0.58, Y: 0.35}

	p[MiddlePIP] = Landmark{X: 0.50, Y: 0.52}
	p[MiddleDIP] = Landmark{X: 0.50, Y: 0.40}
	p[MiddleTip] = Landmark{X: 0.50, Y: 0.28}

	return presetHand(p)
}

// CallMeLandmarks returns thumb and pinky extended, the middle three curled.
func CallMeLandmarks() Hand {
	p := curledPalm()

	p[ThumbMCP] = Landmark{X: 0.62, Y: 0.68}
	p[ThumbIP] = Landmark{X: 0.67, Y: 0.58}
	p[ThumbTip] = Landmark{X: 0.70, Y: 0.50}

	p[PinkyPIP] = Landmark{X: 0.37, Y: 0.60}
	p[PinkyDIP] = Landmark{X: 0.35, Y: 0.50}
	p[PinkyTip] = Landmark{X: 0.34, Y: 0.42}

	return presetHand(p)
}

// OKLandmarks returns a thumb-index pinch with the other three fingers up.
func OKLandmarks() Hand {
	p := OpenPalmLandmarks().Landmarks

	var q [NumLandmarks]Landmark
	copy(q[:], p)

	q[ThumbIP] = Landmark{X: 0.60, Y: 0.60}
	q[ThumbTip] = Landmark{X: 0.56, Y: 0.55}

	q[IndexPIP] = Landmark{X: 0.60, Y: 0.52}
	q[IndexDIP] = Landmark{X: 0.60, Y: 0.55}
	q[IndexTip] = Landmark{X: 0.58, Y: 0.56}

	return presetHand(q)
}

// curledPalm is a fist with the thumb folded across the fingers.
func curledPalm() [NumLandmarks]Landmark {
	var p [NumLandmarks]Landmark

	p[Wrist] = Landmark{X: 0.5, Y: 0.8}

	p[ThumbCMC] = Landmark{X: 0.55, Y: 0.76}
	p[ThumbMCP] = Landmark{X: 0.58, Y: 0.72}
	p[ThumbIP] = Landmark{X: 0.56, Y: 0.68}
	p[ThumbTip] = Landmark{X: 0.52, Y: 0.66}

	p[IndexMCP] = Landmark{X: 0.55, Y: 0.66, Z: -0.02}
	p[IndexPIP] = Landmark{X: 0.55, Y: 0.62, Z: -0.05}
	p[IndexDIP] = Landmark{X: 0.55, Y: 0.67, Z: -0.04}
	p[IndexTip] = Landmark{X: 0.54, Y: 0.70, Z: -0.02}

	p[MiddleMCP] = Landmark{X: 0.50, Y: 0.65, Z: -0.02}
	p[MiddlePIP] = Landmark{X: 0.50, Y: 0.60, Z: -0.05}
	p[MiddleDIP] = Landmark{X: 0.50, Y: 0.66, Z: -0.04}
	p[MiddleTip] = Landmark{X: 0.49, Y: 0.69, Z: -0.02}

	p[RingMCP] = Landmark{X: 0.45, Y: 0.66, Z: -0.02}
	p[RingPIP] = Landmark{X: 0.45, Y: 0.62, Z: -0.05}
	p[RingDIP] = Landmark{X: 0.45, Y: 0.67, Z: -0.04}
	p[RingTip] = Landmark{X: 0.45, Y: 0.70, Z: -0.02}

	p[PinkyMCP] = Landmark{X: 0.40, Y: 0.68, Z: -0.02}
	p[PinkyPIP] = Landmark{X: 0.40, Y: 0.65, Z: -0.05}
	p[PinkyDIP] = Landmark{X: 0.40, Y: 0.69, Z: -0.04}
	p[PinkyTip] = Landmark{X: 0.40, Y: 0.72, Z: -0.02}

	return p
}
