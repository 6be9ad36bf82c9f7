package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Source interface.
// By default every submission completes immediately, inside DetectAsync,
// with the configured hands. In manual mode submissions are queued until
// Complete or CompleteWith is called, which lets tests control latency.
type MockDetector struct {
	mu        sync.Mutex
	hands     []Hand
	err       error
	manual    bool
	pending   []int64
	submitted []int64
	onResult  ResultFunc
	closed    bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands delivered with each completion.
func (m *MockDetector) SetHands(hands []Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error returned by DetectAsync.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetManual switches between immediate and manual completion.
func (m *MockDetector) SetManual(manual bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manual = manual
}

// OnResult registers the completion callback.
func (m *MockDetector) OnResult(fn ResultFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onResult = fn
}

// DetectAsync records the submission and completes it unless in manual mode.
func (m *MockDetector) DetectAsync(frame gocv.Mat, timestampMs int64) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return err
	}
	m.submitted = append(m.submitted, timestampMs)
	if m.manual {
		m.pending = append(m.pending, timestampMs)
		m.mu.Unlock()
		return nil
	}
	fn, result := m.onResult, m.resultLocked(timestampMs, m.hands)
	m.mu.Unlock()

	if fn != nil {
		fn(result)
	}
	return nil
}

// Complete delivers the oldest pending submission with the configured hands.
// It reports false when nothing is pending.
func (m *MockDetector) Complete() bool {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return false
	}
	ts := m.pending[0]
	m.pending = m.pending[1:]
	fn, result := m.onResult, m.resultLocked(ts, m.hands)
	m.mu.Unlock()

	if fn != nil {
		fn(result)
	}
	return true
}

// CompleteWith delivers an arbitrary result, regardless of what is pending.
func (m *MockDetector) CompleteWith(timestampMs int64, hands []Hand) {
	m.mu.Lock()
	fn, result := m.onResult, m.resultLocked(timestampMs, hands)
	m.mu.Unlock()

	if fn != nil {
		fn(result)
	}
}

// Pending returns the number of submissions awaiting completion.
func (m *MockDetector) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Submitted returns the timestamps of every accepted submission in order.
func (m *MockDetector) Submitted() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.submitted))
	copy(out, m.submitted)
	return out
}

// Close marks the detector closed; later submissions fail with ErrClosed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockDetector) resultLocked(timestampMs int64, hands []Hand) DetectionResult {
	return DetectionResult{Hands: hands, TimestampMs: timestampMs}.Clone()
}
