package scheduler

import (
	"context"
	"errors"
	"time"
)

// FrameFunc is a one-shot frame callback.
type FrameFunc func(now time.Time)

// Handle identifies a pending frame request.
type Handle uint64

// FrameHost is the display-synchronized callback facility the scheduler runs
// on. A request fires at most once, on the next frame.
type FrameHost interface {
	RequestFrame(fn FrameFunc) Handle
	CancelFrame(h Handle)
}

// Pump is a FrameHost driven by explicit Fire calls. Window hosts call Fire
// from their update hook; tests call it directly.
type Pump struct {
	next     Handle
	pending  []request
	requests int
	cancels  int
}

type request struct {
	h  Handle
	fn FrameFunc
}

func (p *Pump) RequestFrame(fn FrameFunc) Handle {
	p.next++
	p.requests++
	p.pending = append(p.pending, request{h: p.next, fn: fn})
	return p.next
}

func (p *Pump) CancelFrame(h Handle) {
	for i, r := range p.pending {
		if r.h == h {
			p.pending = append(p.pending[:i], p.pending[i+1:]...)
			p.cancels++
			return
		}
	}
}

// Fire runs the callbacks registered before this call. Callbacks requested
// while firing wait for the next Fire.
func (p *Pump) Fire(now time.Time) int {
	batch := p.pending
	p.pending = nil
	for _, r := range batch {
		r.fn(now)
	}
	return len(batch)
}

// Pending is the number of requests waiting for the next Fire.
func (p *Pump) Pending() int { return len(p.pending) }

// Requests counts every RequestFrame call since creation.
func (p *Pump) Requests() int { return p.requests }

// Cancels counts CancelFrame calls that removed a pending request.
func (p *Pump) Cancels() int { return p.cancels }

// ErrIdle is returned by TickerHost.Run when nothing is waiting for a frame.
var ErrIdle = errors.New("scheduler: no frame requested")

// TickerHost fires a Pump from a time.Ticker on the goroutine that calls Run.
type TickerHost struct {
	Pump
	Hz int
}

// Run fires frames until ctx is done, maxFrames frames have fired (0 means
// no limit) or no callback is pending.
func (t *TickerHost) Run(ctx context.Context, maxFrames uint64) (uint64, error) {
	hz := t.Hz
	if hz <= 0 {
		hz = 60
	}
	tk := time.NewTicker(time.Second / time.Duration(hz))
	defer tk.Stop()

	var frames uint64
	for {
		if t.Pending() == 0 {
			return frames, ErrIdle
		}
		select {
		case <-ctx.Done():
			return frames, ctx.Err()
		case now := <-tk.C:
			t.Fire(now)
			frames++
			if maxFrames > 0 && frames >= maxFrames {
				return frames, nil
			}
		}
	}
}
