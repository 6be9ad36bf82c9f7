package detector

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"
)

// DefaultIdleTimeout is how long the service may go without frames before
// it is stopped.
const DefaultIdleTimeout = 30 * time.Second

const (
	// restartBackoff is how long frames are skipped after the service failed.
	restartBackoff = time.Second

	// failLogEvery throttles logging of repeated detection failures.
	failLogEvery = 100
)

// MediaPipeDetector implements Source using a Python MediaPipe subprocess.
//
// Frames are handed to a single worker goroutine through a one-slot mailbox.
// When the worker is still busy with an earlier frame, a newer submission
// replaces the waiting one, so the detector always works on the freshest
// frame and never blocks the caller.
type MediaPipeDetector struct {
	config Config
	script string

	// mu guards the process handles below. They are only replaced by the
	// worker goroutine; Close reads stdin to unblock it.
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	onResult atomic.Pointer[ResultFunc]
	pending  chan request
	done     chan struct{}
	closed   atomic.Bool
	wg       sync.WaitGroup
	exitErr  error

	dropped   atomic.Int64
	completed atomic.Int64
	failures  atomic.Int64
}

// Stats are running counters of a MediaPipeDetector.
type Stats struct {
	Dropped   int64 `json:"dropped"`
	Completed int64 `json:"completed"`
	Failures  int64 `json:"failures"`
	Running   bool  `json:"running"`
}

type request struct {
	jpeg        []byte
	timestampMs int64
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on the first submitted frame, so a
// missing script or model is reported here rather than on every frame.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.Script
	if script == "" {
		script = findMediaPipeScript()
	}
	if script == "" {
		return nil, fmt.Errorf("mediapipe_service.py not found")
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("mediapipe service script: %w", err)
	}
	if config.ModelPath != "" {
		if _, err := os.Stat(config.ModelPath); err != nil {
			return nil, fmt.Errorf("hand landmark model: %w", err)
		}
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}

	d := &MediaPipeDetector{
		config:  config,
		script:  script,
		pending: make(chan request, 1),
		done:    make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d, nil
}

// OnResult registers the completion callback.
func (d *MediaPipeDetector) OnResult(fn ResultFunc) {
	d.onResult.Store(&fn)
}

// DetectAsync encodes the frame and queues it for the worker.
func (d *MediaPipeDetector) DetectAsync(frame gocv.Mat, timestampMs int64) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if frame.Empty() {
		return errors.New("empty frame")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	data := bytes.Clone(buf.GetBytes())
	buf.Close()

	d.offer(request{jpeg: data, timestampMs: timestampMs})
	return nil
}

// offer places req in the mailbox, evicting a request the worker has not
// picked up yet.
func (d *MediaPipeDetector) offer(req request) {
	for {
		select {
		case d.pending <- req:
			return
		default:
		}
		select {
		case <-d.pending:
			d.dropped.Add(1)
		default:
		}
	}
}

// Stats returns the current counters. Dropped counts submissions that were
// superseded or skipped while the service was backing off after a failure.
func (d *MediaPipeDetector) Stats() Stats {
	return Stats{
		Dropped:   d.dropped.Load(),
		Completed: d.completed.Load(),
		Failures:  d.failures.Load(),
		Running:   d.running(),
	}
}

func (d *MediaPipeDetector) running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cmd != nil
}

// Close stops the worker and shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(d.done)

	// Closing stdin makes the service exit, which unblocks a pending read.
	d.mu.Lock()
	if d.stdin != nil {
		d.stdin.Close()
	}
	d.mu.Unlock()

	d.wg.Wait()
	return d.exitErr
}

func (d *MediaPipeDetector) run() {
	defer d.wg.Done()
	defer func() { d.exitErr = d.shutdown(false) }()

	idle := time.NewTimer(d.config.IdleTimeout)
	defer idle.Stop()
	var retryAt time.Time

	for {
		select {
		case <-d.done:
			return
		case <-idle.C:
			if d.running() {
				log.Printf("MediaPipe service idle for %v, stopping", d.config.IdleTimeout)
				if err := d.shutdown(false); err != nil {
					log.Printf("MediaPipe service exited: %v", err)
				}
			}
		case req := <-d.pending:
			idle.Reset(d.config.IdleTimeout)
			if time.Now().Before(retryAt) {
				d.dropped.Add(1)
				continue
			}

			hands, err := d.detect(req)
			if err != nil {
				if d.closed.Load() {
					return
				}
				n := d.failures.Add(1)
				exitErr := d.shutdown(true)
				if n == 1 || n%failLogEvery == 0 {
					log.Printf("MediaPipe detection failed (%d so far): %v", n, err)
					if exitErr != nil {
						log.Printf("MediaPipe service exited: %v", exitErr)
					}
				}
				retryAt = time.Now().Add(restartBackoff)
				continue
			}

			d.completed.Add(1)
			if fn := d.onResult.Load(); fn != nil && *fn != nil {
				(*fn)(DetectionResult{Hands: hands, TimestampMs: req.timestampMs})
			}
		}
	}
}

// detect sends one encoded frame to the service and waits for its answer.
func (d *MediaPipeDetector) detect(req request) ([]Hand, error) {
	if err := d.ensureStarted(); err != nil {
		return nil, err
	}
	if err := writeFrame(d.stdin, req.timestampMs, req.jpeg); err != nil {
		return nil, err
	}
	return readHands(d.stdout)
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.cmd != nil {
		return nil
	}

	// Use virtual environment Python if available
	pythonPath := d.config.Python
	if pythonPath == "" {
		pythonPath = findVenvPython()
	}
	if pythonPath == "" {
		pythonPath = "python3"
	}

	cmd := exec.Command(pythonPath, serviceArgs(d.script, d.config)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.mu.Lock()
	d.cmd = cmd
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.mu.Unlock()

	log.Printf("MediaPipe service started (pid %d)", cmd.Process.Pid)
	return nil
}

// shutdown stops the service process. With kill set the process is
// terminated instead of being asked to exit.
func (d *MediaPipeDetector) shutdown(kill bool) error {
	d.mu.Lock()
	cmd, stdin := d.cmd, d.stdin
	d.cmd, d.stdin, d.stdout = nil, nil, nil
	d.mu.Unlock()

	if cmd == nil {
		return nil
	}

	stdin.Close()
	if kill && cmd.Process != nil {
		cmd.Process.Kill()
	}
	return cmd.Wait()
}

// serviceArgs builds the command line for the Python service.
func serviceArgs(script string, config Config) []string {
	args := []string{
		script,
		"--max-hands", strconv.Itoa(config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(config.MinDetectionConfidence, 'f', -1, 64),
		"--min-presence-confidence", strconv.FormatFloat(config.MinPresenceConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(config.MinTrackingConfidence, 'f', -1, 64),
	}
	if config.ModelPath != "" {
		args = append(args, "--model", config.ModelPath)
	}
	return args
}

// writeFrame writes one JPEG frame preceded by its length (4 bytes) and
// timestamp in milliseconds (8 bytes), both big-endian.
func writeFrame(w io.Writer, timestampMs int64, data []byte) error {
	header := make([]byte, 12)
	binary.BigEndian.PutUint32(header[:4], uint32(len(data)))
	binary.BigEndian.PutUint64(header[4:], uint64(timestampMs))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

// readHands reads one JSON response line from the service.
func readHands(r *bufio.Reader) ([]Hand, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Hands []jsonHand `json:"hands"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("service error: %s", response.Error)
	}

	hands := make([]Hand, len(response.Hands))
	for i, h := range response.Hands {
		hands[i] = h.toHand()
	}
	return hands, nil
}

func findMediaPipeScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".gestellence/scripts/mediapipe_service.py"),
	}
	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".gestellence/venv/bin/python"),
	}
	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []Landmark `json:"points"`
	Handedness string     `json:"handedness"`
	Score      float64    `json:"score"`
}

// toHand keeps every point the service sent; a short or long list is left
// for the classifier and renderer to reject.
func (h jsonHand) toHand() Hand {
	landmarks := make([]Landmark, len(h.Points))
	copy(landmarks, h.Points)
	return Hand{
		Landmarks:  landmarks,
		Handedness: h.Handedness,
		Score:      h.Score,
	}
}
