package timeline

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveIndex(t *testing.T) {
	tl := Demo()
	cases := []struct {
		at   float64
		want int
	}{
		{-1, None},
		{0, 0},
		{2.999, 0},
		{3, 1},
		{16, 4},
		{14, 4},
		{17, 5},
		{27.99, 7},
		{28, None},
		{100, None},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tl.ActiveIndex(tc.at), "t=%v", tc.at)
	}
	assert.Equal(t, "I hear the echoes", tl.Line(tl.ActiveIndex(16)).Text)
	assert.Equal(t, 28.0, tl.Duration())
}

func TestActiveIndexGapIsNone(t *testing.T) {
	tl, err := New([]Line{{"a", 0, 2}, {"b", 5, 1}})
	require.NoError(t, err)
	assert.Equal(t, None, tl.ActiveIndex(2))
	assert.Equal(t, None, tl.ActiveIndex(4.9))
	assert.Equal(t, 1, tl.ActiveIndex(5))
}

func TestLineProgress(t *testing.T) {
	l := Line{Text: "x", Start: 10, Duration: 4}
	assert.Equal(t, 0.0, LineProgress(9, l))
	assert.Equal(t, 0.5, LineProgress(12, l))
	assert.Equal(t, 1.0, LineProgress(20, l))
}

func TestNewValidates(t *testing.T) {
	cases := []struct {
		name  string
		lines []Line
		index int
	}{
		{"empty text", []Line{{" ", 0, 1}}, 0},
		{"negative start", []Line{{"a", -1, 1}}, 0},
		{"zero duration", []Line{{"a", 0, 1}, {"b", 1, 0}}, 1},
		{"overlap", []Line{{"a", 0, 3}, {"b", 2, 1}}, 1},
		{"unsorted", []Line{{"a", 5, 1}, {"b", 0, 1}}, 1},
	}
	for _, tc := range cases {
		_, err := New(tc.lines)
		var ve *ValidationError
		if assert.ErrorAs(t, err, &ve, tc.name) {
			assert.Equal(t, tc.index, ve.Index, tc.name)
		}
	}

	_, err := New(nil)
	assert.Error(t, err)
}

func TestParseAndLoad(t *testing.T) {
	tl, err := Parse([]byte(`
lines:
  - text: first
    start: 0
    duration: 2.5
  - text: second
    start: 2.5
    duration: 1
`))
	require.NoError(t, err)
	assert.Equal(t, 2, tl.Len())
	assert.Equal(t, 3.5, tl.Duration())

	data, err := Demo().Marshal()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "lyrics.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Demo().Lines(), loaded.Lines())

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("lines:\n  - text: a\n    start: 0\n    duration: -1\n"), 0o644))
	_, err = Load(bad)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), bad)

	_, err = Parse([]byte("lines: [oops"))
	assert.Error(t, err)
}

type drawn struct {
	text string
	y    float64
	st   Style
}

type recordingText struct {
	w, h   float64
	clears int
	lines  []drawn
}

func (r *recordingText) Size() (float64, float64) { return r.w, r.h }
func (r *recordingText) Clear(color.RGBA) {
	r.clears++
	r.lines = r.lines[:0]
}
func (r *recordingText) DrawLine(text string, x, y float64, st Style) {
	r.lines = append(r.lines, drawn{text, y, st})
}

func TestScrollConvergesMonotonically(t *testing.T) {
	surf := &recordingText{w: 600, h: 300}
	r := NewRenderer(Demo(), surf)
	r.SetRunning(true)
	r.Seek(15)

	target := 4*80.0 - 300.0/3
	prev := target - r.Cursor().Scroll
	for i := 0; i < 50; i++ {
		r.Tick(0.01)
		d := target - r.Cursor().Scroll
		assert.Less(t, d, prev, "tick %d", i)
		assert.Greater(t, d, 0.0, "scroll never overshoots")
		prev = d
	}
	assert.InDelta(t, target, r.Cursor().Scroll, 0.01)
}

func TestSeekWhileStoppedRendersOnceAndKeepsScroll(t *testing.T) {
	surf := &recordingText{w: 600, h: 300}
	r := NewRenderer(Demo(), surf)
	before := r.Renders()

	r.Seek(16)
	assert.Equal(t, before+1, r.Renders())
	assert.Equal(t, 16.0, r.Cursor().Elapsed)
	assert.Equal(t, 0.0, r.Cursor().Scroll)

	r.SetRunning(true)
	r.Seek(20)
	assert.Equal(t, before+1, r.Renders(), "running seek waits for the next tick")

	r.Tick(0.016)
	scroll := r.Cursor().Scroll
	target := 5*80.0 - 100
	assert.InDelta(t, target*0.2, scroll, 1e-9, "eases, does not jump")
}

func TestRenderStyles(t *testing.T) {
	surf := &recordingText{w: 600, h: 300}
	r := NewRenderer(Demo(), surf)
	r.Seek(15.5)

	var current []drawn
	for _, l := range surf.lines {
		switch {
		case l.st.Role == Current:
			current = append(current, l)
		case l.text == "I see the future":
			assert.Equal(t, Past, l.st.Role)
			assert.Equal(t, 0.6, l.st.Opacity)
			assert.Equal(t, 0.9, l.st.Scale)
		case l.text == "Fading from view":
			t.Fatalf("line 7 at y=%v should be culled", l.y)
		}
	}
	require.Len(t, current, 1)
	assert.Equal(t, "I hear the echoes", current[0].text)
	assert.InDelta(t, 0.5, current[0].st.Opacity, 1e-9)
	assert.InDelta(t, 0.95, current[0].st.Scale, 1e-9)
	assert.Equal(t, 32.0, current[0].st.Size)
	assert.Equal(t, uint8(215), current[0].st.Color.G)
}

func TestNoActiveLineMeansAllFuture(t *testing.T) {
	surf := &recordingText{w: 600, h: 1000}
	r := NewRenderer(Demo(), surf)
	r.Seek(28)
	require.NotEmpty(t, surf.lines)
	for _, l := range surf.lines {
		assert.Equal(t, Future, l.st.Role, l.text)
	}
	assert.Equal(t, StyleFor(Future, 0).Color, color.NRGBA{R: 240, G: 240, B: 255, A: 163})
}

func TestTickStopsAtEnd(t *testing.T) {
	surf := &recordingText{w: 600, h: 300}
	r := NewRenderer(Demo(), surf)
	r.SetRunning(true)
	r.Seek(27.9)
	r.Tick(1)
	assert.Equal(t, 28.0, r.Cursor().Elapsed)
	assert.True(t, r.Finished())

	r.Tick(1)
	assert.Equal(t, 28.0, r.Cursor().Elapsed)
}

func TestSetTimelineRewinds(t *testing.T) {
	surf := &recordingText{w: 600, h: 300}
	r := NewRenderer(Demo(), surf)
	r.Seek(10)

	tl, err := New([]Line{{"only", 0, 1}})
	require.NoError(t, err)
	r.SetTimeline(tl)
	assert.Equal(t, Cursor{}, r.Cursor())
	require.Len(t, surf.lines, 1)
	assert.Equal(t, "only", surf.lines[0].text)
}
