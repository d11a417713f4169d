package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameTapSnapshotOrder(t *testing.T) {
	tap := NewFrameTap(4)
	assert.Empty(t, tap.Snapshot(10))

	for _, d := range []float64{1, 2, 3} {
		tap.Record(d)
	}
	assert.Equal(t, []float64{2, 3}, tap.Snapshot(2))
	assert.Equal(t, []float64{1, 2, 3}, tap.Snapshot(10))

	for _, d := range []float64{4, 5, 6} {
		tap.Record(d)
	}
	assert.Equal(t, []float64{3, 4, 5, 6}, tap.Snapshot(4))
}

func TestFrameTapFPS(t *testing.T) {
	tap := NewFrameTap(8)
	assert.Zero(t, tap.FPS())

	tap.Record(0)
	for i := 0; i < 5; i++ {
		tap.Record(0.02)
	}
	assert.InDelta(t, 50, tap.FPS(), 1e-9)
}
