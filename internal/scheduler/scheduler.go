// Package scheduler owns the run/stop lifecycle of the render loop. It keeps
// exactly one frame request in flight while running and stops itself when the
// per-frame hook fails.
package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Hook is invoked once per frame with the seconds since the previous frame
// and the cumulative running time.
type Hook func(delta, elapsed float64) error

// FaultError wraps a hook failure that stopped the loop.
type FaultError struct {
	Frame uint64
	Err   error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Frame, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }

type Option func(*Scheduler)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// OnFault registers a callback run after a hook failure has stopped the loop.
func OnFault(fn func(error)) Option {
	return func(s *Scheduler) { s.onFault = fn }
}

// Scheduler is not safe for concurrent use; the host calls it from a single
// goroutine.
type Scheduler struct {
	host FrameHost
	hook Hook
	log  zerolog.Logger

	running    bool
	gen        uint64
	pending    Handle
	hasPending bool

	last    time.Time
	elapsed float64
	frames  uint64
	err     error
	onFault func(error)
}

func New(host FrameHost, hook Hook, opts ...Option) *Scheduler {
	s := &Scheduler{
		host: host,
		hook: hook,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the loop. Calling it while running is a no-op.
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.err = nil
	s.last = time.Time{}
	s.request()
	s.log.Debug().Float64("elapsed", s.elapsed).Msg("frame loop started")
}

// Stop ends the loop and cancels the pending request. A callback already
// executing finishes its frame.
func (s *Scheduler) Stop() {
	if !s.running && !s.hasPending {
		return
	}
	s.running = false
	s.cancel()
	s.log.Debug().Uint64("frames", s.frames).Msg("frame loop stopped")
}

// Reset zeroes the cumulative elapsed time.
func (s *Scheduler) Reset() { s.elapsed = 0 }

func (s *Scheduler) Running() bool { return s.running }
func (s *Scheduler) Elapsed() float64 { return s.elapsed }
func (s *Scheduler) Frames() uint64 { return s.frames }

// Err is the fault that last stopped the loop, nil after a clean Start.
func (s *Scheduler) Err() error { return s.err }

func (s *Scheduler) request() {
	if s.hasPending {
		return
	}
	s.gen++
	gen := s.gen
	s.pending = s.host.RequestFrame(func(now time.Time) { s.frame(gen, now) })
	s.hasPending = true
}

func (s *Scheduler) cancel() {
	if !s.hasPending {
		return
	}
	s.host.CancelFrame(s.pending)
	s.hasPending = false
	s.gen++
}

func (s *Scheduler) frame(gen uint64, now time.Time) {
	if gen != s.gen {
		return
	}
	s.hasPending = false
	if !s.running {
		return
	}

	var delta float64
	if !s.last.IsZero() {
		delta = now.Sub(s.last).Seconds()
		if delta < 0 {
			delta = 0
		}
	}
	s.last = now
	s.elapsed += delta
	s.frames++

	if err := s.invoke(delta); err != nil {
		s.fault(err)
		return
	}
	if s.running {
		s.request()
	}
}

func (s *Scheduler) invoke(delta float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.hook(delta, s.elapsed)
}

func (s *Scheduler) fault(err error) {
	s.running = false
	s.cancel()
	s.err = &FaultError{Frame: s.frames, Err: err}
	s.log.Error().Err(err).Uint64("frame", s.frames).Msg("frame hook failed; loop stopped")
	if s.onFault != nil {
		s.onFault(s.err)
	}
}
