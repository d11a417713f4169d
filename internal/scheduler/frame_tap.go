package scheduler

import "sync"

// FrameTap records the last N frame deltas into a ring buffer so a status
// line can report the recent frame rate. Record and Snapshot may run on
// different goroutines.
type FrameTap struct {
	buffer    []float64
	nextIndex int
	filled    int
	mu        sync.RWMutex
}

func NewFrameTap(ringSize int) *FrameTap {
	if ringSize < 1 {
		ringSize = 1
	}
	return &FrameTap{buffer: make([]float64, ringSize)}
}

// Record stores one frame delta in seconds.
func (t *FrameTap) Record(delta float64) {
	t.mu.Lock()
	t.buffer[t.nextIndex] = delta
	t.nextIndex++
	if t.nextIndex >= len(t.buffer) {
		t.nextIndex = 0
	}
	if t.filled < len(t.buffer) {
		t.filled++
	}
	t.mu.Unlock()
}

// Snapshot returns up to the last n deltas, oldest first.
func (t *FrameTap) Snapshot(n int) []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > t.filled {
		n = t.filled
	}
	out := make([]float64, n)
	idx := t.nextIndex - n
	if idx < 0 {
		idx += len(t.buffer)
	}
	for i := range out {
		out[i] = t.buffer[idx]
		idx++
		if idx >= len(t.buffer) {
			idx = 0
		}
	}
	return out
}

// FPS is the mean frame rate over the recorded window. Zero-length deltas,
// such as the first frame after a start, are skipped.
func (t *FrameTap) FPS() float64 {
	var sum float64
	var n int
	for _, d := range t.Snapshot(len(t.buffer)) {
		if d > 0 {
			sum += d
			n++
		}
	}
	if sum == 0 {
		return 0
	}
	return float64(n) / sum
}
