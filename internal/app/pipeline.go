package app

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/gestellence/gestellence/internal/pipeline"
	"github.com/gestellence/gestellence/internal/store"
)

// readLogEvery throttles logging of repeated frame read failures.
const readLogEvery = 100

// run is the capture loop. It ticks at the camera frame rate and hands every
// frame to Step while processing is enabled.
func (a *App) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	fps := a.camera.FPS()
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			if err := a.Step(); err != nil {
				a.readFails++
				if a.readFails == 1 || a.readFails%readLogEvery == 0 {
					log.Printf("Error reading frame (%d so far): %v", a.readFails, err)
				}
			}
		}
	}
}

// Step reads one frame, runs it through the pipeline, publishes the
// annotated frame and reports a gesture change. It must not be called
// concurrently with itself or with a running loop.
func (a *App) Step() error {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		return err
	}
	defer frame.Close()

	out, snap := a.pipeline.Process(*frame)
	defer out.Close()

	if err := a.publishFrame(out); err != nil {
		log.Printf("Failed to encode frame: %v", err)
	}
	a.observe(snap)

	return nil
}

// publishFrame encodes img and makes it the latest frame.
func (a *App) publishFrame(img gocv.Mat) error {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{int(gocv.IMWriteJpegQuality), a.config.JPEGQuality})
	if err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	data := bytes.Clone(buf.GetBytes())
	buf.Close()

	a.frameMu.Lock()
	a.frame = data
	a.seq++
	a.frameMu.Unlock()

	return nil
}

// observe compares the headline gesture with the last reported one and, on a
// change, records an event and notifies listeners.
func (a *App) observe(snap pipeline.Snapshot) {
	if snap.Gesture == a.last {
		return
	}

	change := Change{
		Gesture:     snap.Gesture,
		Label:       snap.Gesture.Label(),
		Previous:    a.last,
		Hands:       len(snap.Result.Hands),
		TimestampMs: snap.Result.TimestampMs,
		At:          time.Now(),
	}
	a.last = snap.Gesture

	log.Printf("Gesture changed: %s -> %s", change.Previous, change.Gesture)

	if a.config.Store != nil {
		err := a.config.Store.Events().Create(&store.Event{
			Gesture:     string(change.Gesture),
			Previous:    string(change.Previous),
			Hands:       change.Hands,
			TimestampMs: change.TimestampMs,
		})
		if err != nil {
			log.Printf("Failed to record gesture event: %v", err)
		}
	}

	a.mu.RLock()
	listeners := a.listeners
	a.mu.RUnlock()
	for _, fn := range listeners {
		fn(change)
	}
}
