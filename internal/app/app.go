// Package app ties the frame source, the landmark source and the gesture
// pipeline together and keeps the latest annotated frame for viewers.
package app

import (
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gestellence/gestellence/internal/capture"
	"github.com/gestellence/gestellence/internal/detector"
	"github.com/gestellence/gestellence/internal/gesture"
	"github.com/gestellence/gestellence/internal/pipeline"
	"github.com/gestellence/gestellence/internal/store"
)

// DefaultJPEGQuality is the encoding quality of published frames.
const DefaultJPEGQuality = 80

// Config holds configuration options for the application.
type Config struct {
	Store       *store.Store
	Camera      capture.Options
	Detector    detector.Config
	Pipeline    pipeline.Config
	JPEGQuality int

	// FrameSource and LandmarkSource replace the camera and detector that
	// would otherwise be built from Camera and Detector.
	FrameSource    capture.Camera
	LandmarkSource detector.Source
}

// Change describes a transition of the headline gesture.
type Change struct {
	Gesture     gesture.Gesture `json:"gesture"`
	Label       string          `json:"label"`
	Previous    gesture.Gesture `json:"previous"`
	Hands       int             `json:"hands"`
	TimestampMs int64           `json:"timestamp_ms"`
	At          time.Time       `json:"at"`
}

// Stats are the running counters reported by the health endpoint.
type Stats struct {
	Pipeline pipeline.Stats  `json:"pipeline"`
	Detector *detector.Stats `json:"detector,omitempty"`
}

// GestureFunc is called on the capture goroutine for every gesture change.
type GestureFunc func(Change)

// App is the main application that runs the capture loop.
type App struct {
	config   Config
	camera   capture.Camera
	source   detector.Source
	pipeline *pipeline.Pipeline

	mu        sync.RWMutex
	enabled   bool
	stopCh    chan struct{}
	done      chan struct{}
	listeners []GestureFunc

	frameMu sync.RWMutex
	frame   []byte
	seq     uint64

	// Owned by the capture goroutine.
	last      gesture.Gesture
	readFails int
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.JPEGQuality <= 0 || config.JPEGQuality > 100 {
		config.JPEGQuality = DefaultJPEGQuality
	}

	a := &App{
		config:  config,
		camera:  config.FrameSource,
		source:  config.LandmarkSource,
		enabled: true,
		last:    gesture.NoHand,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(config.Camera)
	}

	// Try MediaPipe first, fall back to mock detector
	if a.source == nil {
		if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
			a.source = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.source = detector.NewMockDetector()
		}
	}

	a.pipeline = pipeline.New(a.source, config.Pipeline)
	a.loadEnabled()

	return a
}

// loadEnabled restores the persisted enabled flag.
func (a *App) loadEnabled() {
	if a.config.Store == nil {
		return
	}
	v, err := a.config.Store.Settings().Get(store.SettingEnabled)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Failed to load enabled setting: %v", err)
		}
		return
	}
	if enabled, err := strconv.ParseBool(v); err == nil {
		a.enabled = enabled
	}
}

// SetEnabled enables or disables frame processing and persists the choice.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if a.config.Store == nil {
		return
	}
	if err := a.config.Store.Settings().Set(store.SettingEnabled, strconv.FormatBool(enabled)); err != nil {
		log.Printf("Failed to save enabled setting: %v", err)
	}
}

// IsEnabled returns whether frame processing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// OnGesture registers a listener for gesture changes.
func (a *App) OnGesture(fn GestureFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Start opens the camera and begins the capture loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stopCh, a.done)

	log.Println("Capture loop started")
	return nil
}

// Stop halts the capture loop and closes the camera.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	log.Println("Capture loop stopped")
}

// Close stops the loop and releases the landmark source.
func (a *App) Close() error {
	a.Stop()
	return a.source.Close()
}

// LatestFrame returns the last annotated JPEG frame and its sequence number.
// The sequence is 0 until the first frame is published.
func (a *App) LatestFrame() ([]byte, uint64) {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.frame, a.seq
}

// Snapshot returns the latest detection snapshot.
func (a *App) Snapshot() pipeline.Snapshot {
	return a.pipeline.Snapshot()
}

// Gesture returns the current headline gesture.
func (a *App) Gesture() gesture.Gesture {
	return a.pipeline.Gesture()
}

// Stats returns the pipeline counters and, when the landmark source keeps
// them, the source's own counters.
func (a *App) Stats() Stats {
	stats := Stats{Pipeline: a.pipeline.Stats()}
	if s, ok := a.source.(interface{ Stats() detector.Stats }); ok {
		ds := s.Stats()
		stats.Detector = &ds
	}
	return stats
}
