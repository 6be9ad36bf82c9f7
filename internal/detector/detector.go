package detector

import (
	"errors"
	"time"

	"gocv.io/x/gocv"
)

// ErrClosed is returned when submitting to a source that has been closed.
var ErrClosed = errors.New("detector is closed")

// ResultFunc receives completed detections. It may be called from any goroutine.
type ResultFunc func(DetectionResult)

// Source is an asynchronous hand landmark detector.
type Source interface {
	// DetectAsync submits a frame for detection and returns without waiting
	// for the result. Timestamps must be strictly increasing. The frame is
	// not retained after the call returns.
	DetectAsync(frame gocv.Mat, timestampMs int64) error

	// OnResult registers the callback that receives completed detections.
	// Not every submission is guaranteed to produce a result.
	OnResult(fn ResultFunc)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinDetectionConfidence is the palm detection threshold (0.0-1.0).
	MinDetectionConfidence float64

	// MinPresenceConfidence is the hand presence threshold (0.0-1.0).
	MinPresenceConfidence float64

	// MinTrackingConfidence is the landmark tracking threshold (0.0-1.0).
	MinTrackingConfidence float64

	// ModelPath is the hand_landmarker.task asset handed to the service.
	ModelPath string

	// Script overrides the location of mediapipe_service.py.
	Script string

	// Python overrides the interpreter used to run Script.
	Python string

	// IdleTimeout stops the service after this long without frames
	// (default: 30s). It is started again by the next frame.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:               2,
		MinDetectionConfidence: 0.7,
		MinPresenceConfidence:  0.7,
		MinTrackingConfidence:  0.7,
	}
}
