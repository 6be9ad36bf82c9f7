package pipeline

import (
	"log"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/gestellence/gestellence/internal/detector"
	"github.com/gestellence/gestellence/internal/gesture"
	"github.com/gestellence/gestellence/internal/render"
)

// DefaultFrameInterval is the nominal spacing of submission timestamps.
const DefaultFrameInterval = 33 * time.Millisecond

// submitLogEvery throttles logging of repeated submission failures.
const submitLogEvery = 100

// Config holds pipeline options.
type Config struct {
	// FrameInterval is added to the submission timestamp for every frame.
	// The detector needs strictly increasing timestamps; a fixed step keeps
	// them increasing however long a frame actually takes.
	FrameInterval time.Duration

	// Mirror flips frames horizontally (selfie view) before detection and
	// display. Landmarks are then already in the displayed orientation.
	Mirror bool

	// DiscardStale drops completions older than the result already shown.
	// By default the most recently completed result always wins, even when
	// it belongs to an older submission.
	DiscardStale bool

	Render render.Options
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		FrameInterval: DefaultFrameInterval,
		Mirror:        true,
		Render:        render.DefaultOptions(),
	}
}

// Stats are running counters of the pipeline.
type Stats struct {
	Frames      int64 `json:"frames"`
	SubmitFails int64 `json:"submit_failures"`
	Completions int64 `json:"completions"`
	Rejected    int64 `json:"rejected"`
}

// Pipeline drives frames through the landmark source, the shared state and
// the renderer.
type Pipeline struct {
	config   Config
	source   detector.Source
	renderer *render.Renderer
	state    State
	nextTS   atomic.Int64

	frames      atomic.Int64
	submitFails atomic.Int64
	completions atomic.Int64
	rejected    atomic.Int64
}

// New creates a pipeline and registers it as the source's result callback.
func New(source detector.Source, config Config) *Pipeline {
	if config.FrameInterval <= 0 {
		config.FrameInterval = DefaultFrameInterval
	}
	if config.Render == (render.Options{}) {
		config.Render = render.DefaultOptions()
	}

	p := &Pipeline{
		config:   config,
		source:   source,
		renderer: render.New(config.Render),
	}
	p.state.DiscardStale = config.DiscardStale

	source.OnResult(p.complete)
	return p
}

// Process handles one frame: it reads the latest snapshot, submits the frame
// for detection without waiting, and returns the frame annotated with the
// snapshot. The caller owns the returned Mat; frame is not modified.
func (p *Pipeline) Process(frame gocv.Mat) (gocv.Mat, Snapshot) {
	p.frames.Add(1)

	view := gocv.NewMat()
	defer view.Close()
	if p.config.Mirror {
		gocv.Flip(frame, &view, 1)
	} else {
		frame.CopyTo(&view)
	}

	snap := p.state.Load()

	step := p.config.FrameInterval.Milliseconds()
	ts := p.nextTS.Add(step) - step
	if err := p.source.DetectAsync(view, ts); err != nil {
		if n := p.submitFails.Add(1); n == 1 || n%submitLogEvery == 0 {
			log.Printf("Frame submission failed (%d so far): %v", n, err)
		}
	}

	out := p.renderer.Render(view, snap.Result.Hands, snap.Gesture)
	return out, snap
}

// Snapshot returns the latest published snapshot.
func (p *Pipeline) Snapshot() Snapshot {
	return p.state.Load()
}

// Gesture returns the latest headline gesture, NoHand until the first
// detection completes.
func (p *Pipeline) Gesture() gesture.Gesture {
	return p.state.Load().Gesture
}

// Stats returns the current counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Frames:      p.frames.Load(),
		SubmitFails: p.submitFails.Load(),
		Completions: p.completions.Load(),
		Rejected:    p.rejected.Load(),
	}
}

// complete is the detector callback. It runs on the detector's goroutine.
func (p *Pipeline) complete(result detector.DetectionResult) {
	p.completions.Add(1)
	if !p.state.Publish(result) {
		p.rejected.Add(1)
	}
}
