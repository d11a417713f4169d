// Package engine is the control surface around the frame loop. UI handlers
// send discrete commands (start, stop, preset, seek, mode); the scheduler
// drives the per-frame work; observers see a coarse State only when it
// changes.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/iburimskiy/orbit-visualization/internal/gpu"
	"github.com/iburimskiy/orbit-visualization/internal/motion"
	"github.com/iburimskiy/orbit-visualization/internal/particles"
	"github.com/iburimskiy/orbit-visualization/internal/scheduler"
	"github.com/iburimskiy/orbit-visualization/internal/shader"
	"github.com/iburimskiy/orbit-visualization/internal/timeline"
)

type Mode int

const (
	ModeParticles Mode = iota
	ModeShader
)

func (m Mode) String() string {
	if m == ModeShader {
		return "shader"
	}
	return "particles"
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "particles", "":
		return ModeParticles, nil
	case "shader":
		return ModeShader, nil
	}
	return ModeParticles, fmt.Errorf("unknown mode %q", s)
}

// State is what the surrounding UI observes.
type State struct {
	Running         bool
	CanStart        bool
	Preset          string
	Mode            Mode
	Displayed       float64 // lyric clock, 0.1 s steps
	Duration        float64
	Fault           string
	ShaderAvailable bool
}

// Config wires an engine to its host and surfaces. GPU may be nil when no
// GPU surface exists.
type Config struct {
	Host      scheduler.FrameHost
	Particles particles.Surface
	GPU       gpu.Surface
	Text      timeline.TextSurface

	Preset         string
	Mode           Mode
	Timeline       *timeline.Timeline
	TrailAlpha     float64
	ColorCycleRate float64
	LineHeight     float64
	Smoothing      float64
	FragmentSource string

	// OnFrame sees every frame delta, after the frame is drawn.
	OnFrame func(delta float64)
	Logger  zerolog.Logger
}

type Engine struct {
	log       zerolog.Logger
	sched     *scheduler.Scheduler
	particles *particles.System
	pipeline  *shader.Pipeline
	lyrics    *timeline.Renderer
	mode      Mode
	shaderErr error
	onFrame   func(float64)

	observers []func(State)
	last      State
}

func New(cfg Config) (*Engine, error) {
	if cfg.Preset == "" {
		cfg.Preset = "default"
	}
	p, ok := motion.Lookup(cfg.Preset)
	if !ok {
		return nil, &InvalidPresetError{Name: cfg.Preset}
	}
	tl := cfg.Timeline
	if tl == nil {
		tl = timeline.Demo()
	}

	e := &Engine{
		log:     cfg.Logger.With().Str("component", "engine").Logger(),
		mode:    cfg.Mode,
		onFrame: cfg.OnFrame,
	}

	var popts []particles.Option
	if cfg.TrailAlpha > 0 {
		popts = append(popts, particles.WithTrailAlpha(cfg.TrailAlpha))
	}
	if cfg.ColorCycleRate > 0 {
		popts = append(popts, particles.WithColorCycleRate(cfg.ColorCycleRate))
	}
	e.particles = particles.New(cfg.Particles, p, popts...)

	var topts []timeline.Option
	if cfg.LineHeight > 0 {
		topts = append(topts, timeline.WithLineHeight(cfg.LineHeight))
	}
	if cfg.Smoothing > 0 {
		topts = append(topts, timeline.WithSmoothing(cfg.Smoothing))
	}
	e.lyrics = timeline.NewRenderer(tl, cfg.Text, topts...)

	sopts := []shader.Option{shader.WithLogger(cfg.Logger.With().Str("component", "shader").Logger())}
	if cfg.FragmentSource != "" {
		sopts = append(sopts, shader.WithFragmentSource(cfg.FragmentSource))
	}
	e.pipeline = shader.New(sopts...)
	if cfg.GPU == nil {
		e.shaderErr = &shader.UnsupportedContextError{Reason: "no GPU surface"}
	} else {
		e.shaderErr = e.pipeline.Init(cfg.GPU)
	}
	if e.shaderErr != nil {
		e.log.Warn().Err(e.shaderErr).Msg("shader mode unavailable")
	}

	e.sched = scheduler.New(cfg.Host, e.frame,
		scheduler.WithLogger(cfg.Logger.With().Str("component", "scheduler").Logger()),
		scheduler.OnFault(e.fault),
	)

	e.redraw()
	e.lyrics.Render()
	e.last = e.State()
	return e, nil
}

// State is the current coarse state.
func (e *Engine) State() State {
	s := State{
		Running:         e.sched.Running(),
		CanStart:        e.mode == ModeParticles || e.shaderErr == nil,
		Preset:          e.particles.Preset().Name,
		Mode:            e.mode,
		Displayed:       math.Floor(e.lyrics.Cursor().Elapsed*10) / 10,
		Duration:        e.lyrics.Timeline().Duration(),
		ShaderAvailable: e.shaderErr == nil,
	}
	if err := e.sched.Err(); err != nil {
		s.Fault = err.Error()
	}
	return s
}

// Subscribe registers fn for state changes and calls it once with the
// current state.
func (e *Engine) Subscribe(fn func(State)) {
	e.observers = append(e.observers, fn)
	fn(e.last)
}

func (e *Engine) notify() {
	s := e.State()
	if s == e.last {
		return
	}
	e.last = s
	for _, fn := range e.observers {
		fn(s)
	}
}

// Err is the frame fault that stopped the loop, if any.
func (e *Engine) Err() error { return e.sched.Err() }

// ShaderErr is why shader mode is unavailable, or nil.
func (e *Engine) ShaderErr() error { return e.shaderErr }

func (e *Engine) Entities() []motion.Entity { return e.particles.Entities() }
func (e *Engine) Cursor() timeline.Cursor { return e.lyrics.Cursor() }
func (e *Engine) Elapsed() float64 { return e.sched.Elapsed() }
func (e *Engine) Frames() uint64 { return e.sched.Frames() }
func (e *Engine) Pipeline() *shader.Pipeline { return e.pipeline }

// Start runs the loop. It is a no-op while running and fails when the
// current mode cannot render.
func (e *Engine) Start() error {
	if e.sched.Running() {
		return nil
	}
	if e.mode == ModeShader {
		if e.shaderErr != nil {
			return e.shaderErr
		}
		if err := e.pipeline.Start(); err != nil {
			return err
		}
	}
	e.lyrics.SetRunning(true)
	e.sched.Start()
	e.log.Info().Str("mode", e.mode.String()).Str("preset", e.particles.Preset().Name).Msg("started")
	e.notify()
	return nil
}

// Stop halts the loop. The frame in progress, if any, completes.
func (e *Engine) Stop() {
	if !e.sched.Running() {
		return
	}
	e.sched.Stop()
	e.halt()
	e.log.Info().Uint64("frames", e.sched.Frames()).Msg("stopped")
	e.notify()
}

func (e *Engine) halt() {
	e.lyrics.SetRunning(false)
	if e.pipeline.State() == shader.Running {
		_ = e.pipeline.Stop()
	}
}

// SelectPreset swaps the whole preset. Unknown names are rejected and leave
// the current preset in place.
func (e *Engine) SelectPreset(name string) error {
	p, ok := motion.Lookup(name)
	if !ok {
		e.log.Warn().Str("preset", name).Msg("rejected unknown preset")
		return &InvalidPresetError{Name: name}
	}
	e.particles.SetPreset(p)
	if !e.sched.Running() {
		e.redraw()
	}
	e.log.Info().Str("preset", name).Int("entities", p.EntityCount).Msg("preset selected")
	e.notify()
	return nil
}

// Seek sets the lyric clock. While stopped it redraws the lyrics once.
func (e *Engine) Seek(t float64) error {
	if math.IsNaN(t) || t < 0 {
		return &InvalidSeekError{Time: t}
	}
	e.lyrics.Seek(t)
	e.notify()
	return nil
}

// SetMode switches between the particle canvas and the shader.
func (e *Engine) SetMode(m Mode) error {
	if m == e.mode {
		return nil
	}
	if m == ModeShader && e.shaderErr != nil {
		return fmt.Errorf("shader mode: %w", e.shaderErr)
	}
	if e.sched.Running() {
		var err error
		if m == ModeShader {
			err = e.pipeline.Start()
		} else {
			err = e.pipeline.Stop()
		}
		if err != nil {
			return err
		}
	}
	e.mode = m
	if !e.sched.Running() {
		e.redraw()
	}
	e.log.Info().Str("mode", m.String()).Msg("mode changed")
	e.notify()
	return nil
}

// LoadTimeline replaces the lyric sequence and rewinds it.
func (e *Engine) LoadTimeline(tl *timeline.Timeline) error {
	if tl == nil {
		return errors.New("engine: nil timeline")
	}
	e.lyrics.SetTimeline(tl)
	e.log.Info().Int("lines", tl.Len()).Float64("duration", tl.Duration()).Msg("timeline loaded")
	e.notify()
	return nil
}

// Resize re-reads surface sizes. Unchanged sizes allocate nothing.
func (e *Engine) Resize() {
	moved := e.particles.Resize()
	e.pipeline.Resize()
	if moved && !e.sched.Running() {
		e.redraw()
	}
	if !e.sched.Running() {
		e.lyrics.Render()
	}
}

// Dispose stops the loop and releases GPU resources.
func (e *Engine) Dispose() {
	e.Stop()
	e.pipeline.Dispose()
}

func (e *Engine) redraw() {
	if e.mode == ModeParticles {
		e.particles.Redraw(e.sched.Elapsed())
	}
}

func (e *Engine) frame(delta, elapsed float64) error {
	switch e.mode {
	case ModeShader:
		if err := e.pipeline.Render(elapsed); err != nil {
			return err
		}
	default:
		e.particles.Frame(delta, elapsed)
	}
	e.lyrics.Tick(delta)
	if e.onFrame != nil {
		e.onFrame(delta)
	}
	e.notify()
	return nil
}

func (e *Engine) fault(error) {
	e.halt()
	e.notify()
}
