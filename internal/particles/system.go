// Package particles draws the orbit model onto an immediate-mode 2D surface.
package particles

import (
	"image/color"
	"math"
	"sync/atomic"

	"github.com/iburimskiy/orbit-visualization/internal/motion"
)

// Stop is one colour stop of a radial gradient. Offset runs from 0 at the
// centre to 1 at the rim.
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// Surface is the 2D drawing context. Coordinates are logical pixels; the
// implementation applies any device pixel ratio.
type Surface interface {
	Size() (w, h float64)
	// Fade overpaints the whole surface with c, alpha included.
	Fade(c color.NRGBA)
	RadialGradient(cx, cy, r float64, stops []Stop)
	FillCircle(cx, cy, r float64, c color.NRGBA)
}

// frameConfig is published as a whole. A tick sees either the old or the
// new one, never a mix of count and palette.
type frameConfig struct {
	preset   motion.Preset
	cx, cy   float64
	entities []motion.Entity
}

type Option func(*System)

// WithTrailAlpha sets the alpha of the per-frame background overpaint.
func WithTrailAlpha(a float64) Option {
	return func(s *System) { s.trailAlpha = a }
}

func WithBackground(c color.RGBA) Option {
	return func(s *System) { s.background = c }
}

func WithColorCycleRate(r float64) Option {
	return func(s *System) { s.cycleRate = r }
}

// System owns the surface and the entity collection.
type System struct {
	surface    Surface
	cfg        atomic.Pointer[frameConfig]
	trailAlpha float64
	background color.RGBA
	cycleRate  float64
}

func New(surface Surface, p motion.Preset, opts ...Option) *System {
	s := &System{
		surface:    surface,
		trailAlpha: 0.05,
		background: color.RGBA{A: 0xff},
		cycleRate:  motion.DefaultColorCycleRate,
	}
	for _, opt := range opts {
		opt(s)
	}
	w, h := surface.Size()
	s.publish(p, w/2, h/2)
	return s
}

func (s *System) publish(p motion.Preset, cx, cy float64) {
	s.cfg.Store(&frameConfig{
		preset:   p,
		cx:       cx,
		cy:       cy,
		entities: motion.CreateEntities(p, cx, cy),
	})
}

// SetPreset replaces speed, count and palette together and rebuilds the
// entity collection.
func (s *System) SetPreset(p motion.Preset) {
	cur := s.cfg.Load()
	s.publish(p, cur.cx, cur.cy)
}

// Resize re-reads the surface size. Entities are rebuilt around the new
// centre only when it moved.
func (s *System) Resize() bool {
	cur := s.cfg.Load()
	w, h := s.surface.Size()
	cx, cy := w/2, h/2
	if cx == cur.cx && cy == cur.cy {
		return false
	}
	s.publish(cur.preset, cx, cy)
	return true
}

func (s *System) Preset() motion.Preset { return s.cfg.Load().preset }

// Entities returns a copy of the current collection.
func (s *System) Entities() []motion.Entity {
	return append([]motion.Entity(nil), s.cfg.Load().entities...)
}

// Frame advances every entity by delta and then draws the frame.
func (s *System) Frame(delta, elapsed float64) {
	cfg := s.cfg.Load()
	s.advance(cfg, delta, elapsed)
	s.draw(cfg, elapsed)
}

// Redraw paints the current state without advancing it.
func (s *System) Redraw(elapsed float64) {
	s.draw(s.cfg.Load(), elapsed)
}

func (s *System) advance(cfg *frameConfig, delta, elapsed float64) {
	p := motion.Params{
		Delta:          delta,
		Elapsed:        elapsed,
		Speed:          cfg.preset.SpeedMultiplier,
		ColorCycleRate: s.cycleRate,
		CenterX:        cfg.cx,
		CenterY:        cfg.cy,
		Palette:        cfg.preset.Palette,
	}
	for i := range cfg.entities {
		cfg.entities[i] = motion.Step(cfg.entities[i], p)
	}
}

func (s *System) draw(cfg *frameConfig, elapsed float64) {
	bg := s.background
	s.surface.Fade(color.NRGBA{R: bg.R, G: bg.G, B: bg.B, A: alpha8(s.trailAlpha)})

	for _, e := range cfg.entities {
		drawEntity(s.surface, e)
	}
	drawCenterPulse(s.surface, cfg.cx, cfg.cy, elapsed)
}

func drawEntity(dst Surface, e motion.Entity) {
	if e.Radius <= 0 {
		return
	}
	c := e.Color
	tint := func(a float64) color.NRGBA {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha8(a * e.Opacity)}
	}
	dst.RadialGradient(e.X, e.Y, e.Radius, []Stop{
		{0, tint(0xdd / 255.0)},
		{0.7, tint(0x88 / 255.0)},
		{1, tint(0)},
	})
	dst.FillCircle(e.X, e.Y, e.Radius*0.3, tint(0xaa/255.0))
}

func drawCenterPulse(dst Surface, cx, cy, t float64) {
	r := 20 + 15*math.Sin(3*t)
	a := 0.3 + 0.2*math.Sin(2*t)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff}
	inner := white
	inner.A = alpha8(a)
	dst.RadialGradient(cx, cy, r, []Stop{{0, inner}, {1, white}})
}

func alpha8(a float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, a)) * 255))
}
