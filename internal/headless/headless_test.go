package headless

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/orbit-visualization/internal/engine"
	"github.com/iburimskiy/orbit-visualization/internal/shader"
	"github.com/iburimskiy/orbit-visualization/internal/timeline"
)

func TestRunFixedTicks(t *testing.T) {
	sum, err := Run(context.Background(), Config{Hz: 1000, Ticks: 20, Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Equal(t, uint64(20), sum.Frames)
	assert.Equal(t, "default", sum.Preset)
	assert.Equal(t, 6, sum.Entities)
	assert.Equal(t, "I see the future", sum.ActiveLine)
	assert.Greater(t, sum.Elapsed, 0.0)
	assert.Greater(t, sum.Draws, 0)
}

func TestRunFromSeek(t *testing.T) {
	sum, err := Run(context.Background(), Config{
		Hz:     1000,
		Ticks:  10,
		Preset: "many",
		Seek:   16,
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	assert.Equal(t, 12, sum.Entities)
	assert.Equal(t, "I hear the echoes", sum.ActiveLine)
	assert.GreaterOrEqual(t, sum.Lyric, 16.0)
}

func TestRunCustomTimeline(t *testing.T) {
	tl, err := timeline.New([]timeline.Line{{Text: "only", Start: 0, Duration: 1}})
	require.NoError(t, err)

	sum, err := Run(context.Background(), Config{Hz: 1000, Ticks: 5, Timeline: tl, Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, "only", sum.ActiveLine)
}

func TestRunShaderModeUnavailable(t *testing.T) {
	_, err := Run(context.Background(), Config{Ticks: 1, Mode: engine.ModeShader, Logger: zerolog.Nop()})
	var uce *shader.UnsupportedContextError
	assert.ErrorAs(t, err, &uce)
}

func TestRunUnknownPreset(t *testing.T) {
	_, err := Run(context.Background(), Config{Ticks: 1, Preset: "nope", Logger: zerolog.Nop()})
	var ipe *engine.InvalidPresetError
	assert.ErrorAs(t, err, &ipe)
}

func TestRunStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	sum, err := Run(ctx, Config{Hz: 200, Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Greater(t, sum.Frames, uint64(0))
}
