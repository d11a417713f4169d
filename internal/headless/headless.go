// Package headless runs the engine without a window: frames come from a
// ticker, drawing goes to counting surfaces, and a summary is returned.
package headless

import (
	"context"
	"errors"
	"image/color"

	"github.com/rs/zerolog"

	"github.com/iburimskiy/orbit-visualization/internal/config"
	"github.com/iburimskiy/orbit-visualization/internal/engine"
	"github.com/iburimskiy/orbit-visualization/internal/particles"
	"github.com/iburimskiy/orbit-visualization/internal/scheduler"
	"github.com/iburimskiy/orbit-visualization/internal/timeline"
)

type Config struct {
	Hz    int
	Ticks uint64

	Preset     string
	Mode       engine.Mode
	Timeline   *timeline.Timeline
	Seek       float64
	TrailAlpha float64
	LineHeight float64
	Smoothing  float64

	Logger zerolog.Logger
}

type Summary struct {
	Frames     uint64
	Elapsed    float64
	FPS        float64
	Lyric      float64
	ActiveLine string
	Preset     string
	Entities   int
	Draws      int
}

// Run starts the engine, fires Ticks frames (0 means until ctx is done) and
// stops it again.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	log := cfg.Logger.With().Str("component", "headless").Logger()

	host := &scheduler.TickerHost{Hz: cfg.Hz}
	tap := scheduler.NewFrameTap(config.FrameRingSize)
	canvas := &countingCanvas{w: config.CanvasSize, h: config.CanvasSize}
	text := &lineRecorder{w: config.LyricsWidth, h: config.LyricsHeight}

	e, err := engine.New(engine.Config{
		Host:       host,
		Particles:  canvas,
		Text:       text,
		Preset:     cfg.Preset,
		Mode:       cfg.Mode,
		Timeline:   cfg.Timeline,
		TrailAlpha: cfg.TrailAlpha,
		LineHeight: cfg.LineHeight,
		Smoothing:  cfg.Smoothing,
		OnFrame:    tap.Record,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return Summary{}, err
	}
	defer e.Dispose()

	if cfg.Seek > 0 {
		if err := e.Seek(cfg.Seek); err != nil {
			return Summary{}, err
		}
	}
	if err := e.Start(); err != nil {
		return Summary{}, err
	}

	frames, err := host.Run(ctx, cfg.Ticks)
	if errors.Is(err, scheduler.ErrIdle) {
		err = e.Err()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}

	st := e.State()
	sum := Summary{
		Frames:     frames,
		Elapsed:    e.Elapsed(),
		FPS:        tap.FPS(),
		Lyric:      e.Cursor().Elapsed,
		ActiveLine: text.current,
		Preset:     st.Preset,
		Entities:   len(e.Entities()),
		Draws:      canvas.gradients,
	}
	log.Info().
		Uint64("frames", sum.Frames).
		Float64("elapsed", sum.Elapsed).
		Float64("fps", sum.FPS).
		Str("line", sum.ActiveLine).
		Msg("headless run finished")
	return sum, err
}

type countingCanvas struct {
	w, h      float64
	fades     int
	gradients int
	circles   int
}

func (c *countingCanvas) Size() (float64, float64) { return c.w, c.h }
func (c *countingCanvas) Fade(color.NRGBA) { c.fades++ }
func (c *countingCanvas) RadialGradient(_, _, _ float64, _ []particles.Stop) {
	c.gradients++
}
func (c *countingCanvas) FillCircle(_, _, _ float64, _ color.NRGBA) { c.circles++ }

// lineRecorder remembers which line was drawn as current in the last frame.
type lineRecorder struct {
	w, h    float64
	current string
}

func (r *lineRecorder) Size() (float64, float64) { return r.w, r.h }
func (r *lineRecorder) Clear(color.RGBA) { r.current = "" }
func (r *lineRecorder) DrawLine(text string, _, _ float64, st timeline.Style) {
	if st.Role == timeline.Current {
		r.current = text
	}
}
