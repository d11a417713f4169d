package timeline

import "image/color"

type Role int

const (
	Past Role = iota
	Current
	Future
)

// Style is how one line is drawn.
type Style struct {
	Role    Role
	Opacity float64
	Scale   float64
	Size    float64
	Color   color.NRGBA
}

var (
	currentColor = color.RGBA{R: 255, G: 215, B: 0, A: 255}
	otherColor   = color.RGBA{R: 240, G: 240, B: 255, A: 255}
	Background   = color.RGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xff}
)

// StyleFor returns the fixed style of a past or future line, or the
// progress-driven style of the current one.
func StyleFor(role Role, progress float64) Style {
	switch role {
	case Current:
		return Style{Role: role, Opacity: progress, Scale: 0.9 + 0.1*progress, Size: 32, Color: tint(currentColor, progress)}
	case Past:
		return Style{Role: role, Opacity: 0.6, Scale: 0.9, Size: 26, Color: tint(otherColor, 0.6*0.8)}
	default:
		return Style{Role: Future, Opacity: 0.8, Scale: 0.95, Size: 26, Color: tint(otherColor, 0.8*0.8)}
	}
}

func tint(c color.RGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(a*255 + 0.5)}
}

// TextSurface receives one frame of lines. Y is the line's vertical centre.
type TextSurface interface {
	Size() (w, h float64)
	Clear(bg color.RGBA)
	DrawLine(text string, x, y float64, st Style)
}

// Cursor is the playback position and the eased scroll offset.
type Cursor struct {
	Elapsed float64
	Scroll  float64
}

type Option func(*Renderer)

func WithLineHeight(h float64) Option {
	return func(r *Renderer) { r.lineHeight = h }
}

// WithSmoothing sets the fraction of the remaining scroll distance covered
// per tick.
func WithSmoothing(k float64) Option {
	return func(r *Renderer) { r.smoothing = k }
}

type Renderer struct {
	tl         *Timeline
	surface    TextSurface
	cursor     Cursor
	running    bool
	lineHeight float64
	smoothing  float64
	renders    int
}

func NewRenderer(tl *Timeline, surface TextSurface, opts ...Option) *Renderer {
	r := &Renderer{
		tl:         tl,
		surface:    surface,
		lineHeight: 80,
		smoothing:  0.2,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Timeline() *Timeline { return r.tl }
func (r *Renderer) Cursor() Cursor { return r.cursor }
func (r *Renderer) Running() bool { return r.running }

// Renders counts frames drawn since creation.
func (r *Renderer) Renders() int { return r.renders }

// SetTimeline swaps the sequence and rewinds to the start.
func (r *Renderer) SetTimeline(tl *Timeline) {
	r.tl = tl
	r.cursor = Cursor{}
	r.Render()
}

func (r *Renderer) SetRunning(on bool) { r.running = on }

// Finished reports whether playback reached the end of the last line.
func (r *Renderer) Finished() bool { return r.cursor.Elapsed >= r.tl.Duration() }

// Tick advances the clock by delta while running, eases the scroll towards
// the active line and draws the frame. The clock stops at the end of the
// sequence.
func (r *Renderer) Tick(delta float64) {
	if r.running && !r.Finished() {
		r.cursor.Elapsed += delta
		if end := r.tl.Duration(); r.cursor.Elapsed > end {
			r.cursor.Elapsed = end
		}
		r.ease()
	}
	r.Render()
}

func (r *Renderer) ease() {
	idx := r.tl.ActiveIndex(r.cursor.Elapsed)
	if idx == None {
		return
	}
	_, h := r.surface.Size()
	target := float64(idx)*r.lineHeight - h/3
	r.cursor.Scroll += (target - r.cursor.Scroll) * r.smoothing
}

// Seek sets the clock directly. While stopped it draws exactly one frame;
// the scroll offset is left for the next tick to ease.
func (r *Renderer) Seek(t float64) {
	r.cursor.Elapsed = t
	if !r.running {
		r.Render()
	}
}

// Render draws the visible lines at the current cursor.
func (r *Renderer) Render() {
	r.renders++
	w, h := r.surface.Size()
	r.surface.Clear(Background)

	idx := r.tl.ActiveIndex(r.cursor.Elapsed)
	for i, l := range r.tl.lines {
		y := float64(i)*r.lineHeight - r.cursor.Scroll
		if y < -r.lineHeight || y > h+r.lineHeight {
			continue
		}
		var st Style
		switch {
		case i == idx:
			st = StyleFor(Current, LineProgress(r.cursor.Elapsed, l))
		case i < idx:
			st = StyleFor(Past, 0)
		default:
			st = StyleFor(Future, 0)
		}
		r.surface.DrawLine(l.Text, w/2, y, st)
	}
}
