package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/orbit-visualization/internal/gpu"
	"github.com/iburimskiy/orbit-visualization/internal/gpu/gputest"
)

func newSurface() (*gputest.Surface, *gputest.Device) {
	dev := &gputest.Device{}
	return &gputest.Surface{W: 400, H: 300, DPR: 2, Device: dev}, dev
}

func TestBuiltinProgramHonoursContract(t *testing.T) {
	ok, log := gpu.CheckContract(RingsSource())
	assert.True(t, ok, log)
}

func TestInitReady(t *testing.T) {
	surf, dev := newSurface()
	p := New()
	require.NoError(t, p.Init(surf))

	assert.Equal(t, Ready, p.State())
	assert.Equal(t, [][2]int{{800, 600}}, surf.Backings)
	assert.Equal(t, []gpu.Attributes{{Alpha: true, PremultipliedAlpha: false}}, surf.Attrs)
	assert.Equal(t, 800, dev.Width)
	// program + quad buffer; both shader objects were released after linking.
	assert.Equal(t, 2, dev.Live())
	assert.Zero(t, dev.DoubleFree)

	var te *TransitionError
	assert.ErrorAs(t, p.Init(surf), &te)
}

func TestInitWithoutContext(t *testing.T) {
	surf := &gputest.Surface{W: 100, H: 100, DPR: 1}
	p := New()

	var ue *UnsupportedContextError
	require.ErrorAs(t, p.Init(surf), &ue)
	assert.Equal(t, Uninitialized, p.State())
	assert.ErrorAs(t, p.Start(), new(*TransitionError))
}

func TestCompileFailureReleasesObjects(t *testing.T) {
	for _, stage := range []gpu.Stage{gpu.Vertex, gpu.Fragment} {
		t.Run(stage.String(), func(t *testing.T) {
			surf, dev := newSurface()
			dev.FailCompile = map[gpu.Stage]string{stage: "0:1: syntax error"}

			p := New()
			err := p.Init(surf)
			var ce *ShaderCompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, stage, ce.Stage)
			assert.Equal(t, "0:1: syntax error", ce.Log)

			assert.Equal(t, Uninitialized, p.State())
			assert.Zero(t, dev.Live())
			assert.Equal(t, dev.Created, dev.Deleted)
			assert.Zero(t, dev.DoubleFree)
		})
	}
}

func TestLinkFailureReleasesObjects(t *testing.T) {
	surf, dev := newSurface()
	p := New(WithFragmentSource("package main\nvar Resolution vec2\n"))

	err := p.Init(surf)
	var le *ShaderLinkError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Log, "ElapsedTime")
	assert.Equal(t, Uninitialized, p.State())
	assert.Zero(t, dev.Live())
	assert.Equal(t, 3, dev.Deleted)
}

func TestInitRetryAfterFailure(t *testing.T) {
	surf, dev := newSurface()
	dev.FailLink = "boom"
	p := New()
	require.Error(t, p.Init(surf))

	dev.FailLink = ""
	require.NoError(t, p.Init(surf))
	assert.Equal(t, Ready, p.State())
	assert.Equal(t, 2, dev.Live())
}

func TestTransitions(t *testing.T) {
	surf, _ := newSurface()
	p := New()

	var te *TransitionError
	require.ErrorAs(t, p.Start(), &te)
	assert.Equal(t, Uninitialized, te.From)
	assert.Equal(t, Uninitialized, p.State())

	require.NoError(t, p.Init(surf))
	assert.ErrorAs(t, p.Stop(), &te)
	assert.ErrorAs(t, p.Render(1), &te)

	require.NoError(t, p.Start())
	require.NoError(t, p.Start())
	assert.Equal(t, Running, p.State())

	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop())
	assert.Equal(t, Stopped, p.State())
	assert.ErrorAs(t, p.Render(1), &te)

	require.NoError(t, p.Start())
	assert.Equal(t, Running, p.State())
}

func TestRenderUploadsUniforms(t *testing.T) {
	surf, dev := newSurface()
	p := New()
	require.NoError(t, p.Init(surf))
	require.NoError(t, p.Start())

	require.NoError(t, p.Render(1.5))
	require.NoError(t, p.Render(2))

	assert.Equal(t, 2, dev.Clears)
	require.Len(t, dev.Draws, 2)
	assert.Equal(t, float32(1.5), dev.Draws[0][gpu.UniformElapsedTime])
	assert.Equal(t, []float32{800, 600}, dev.Draws[1][gpu.UniformResolution])
}

func TestDisposeIsIdempotent(t *testing.T) {
	surf, dev := newSurface()
	p := New()
	require.NoError(t, p.Init(surf))
	require.NoError(t, p.Start())
	created := dev.Created

	p.Dispose()
	p.Dispose()
	assert.Equal(t, Disposed, p.State())
	assert.Zero(t, dev.Live())
	assert.Zero(t, dev.DoubleFree)

	assert.NotPanics(t, func() {
		assert.NoError(t, p.Render(3))
	})
	assert.Equal(t, created, dev.Created)
	assert.Empty(t, dev.Draws)
	assert.False(t, p.Resize())

	var te *TransitionError
	assert.ErrorAs(t, p.Start(), &te)
	assert.ErrorAs(t, p.Init(surf), &te)
}

func TestDisposeBeforeInit(t *testing.T) {
	p := New()
	p.Dispose()
	assert.Equal(t, Disposed, p.State())
	assert.NoError(t, p.Render(0))
}

func TestResizeIsIdempotent(t *testing.T) {
	surf, dev := newSurface()
	p := New()
	require.NoError(t, p.Init(surf))
	created, viewports := dev.Created, dev.Viewports

	assert.False(t, p.Resize())
	assert.False(t, p.Resize())
	assert.Equal(t, viewports, dev.Viewports)
	assert.Len(t, surf.Backings, 1)

	surf.W = 500
	assert.True(t, p.Resize())
	assert.False(t, p.Resize())
	w, h := p.BackingSize()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 600, h)
	assert.Equal(t, viewports+1, dev.Viewports)
	assert.Equal(t, created, dev.Created)
}
