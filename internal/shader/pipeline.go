// Package shader runs the ring fragment program on a GPU device and owns the
// lifecycle of its program and quad buffer.
package shader

import (
	_ "embed"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iburimskiy/orbit-visualization/internal/gpu"
)

//go:embed rings.kage
var ringsSource string

// RingsSource is the built-in fragment program.
func RingsSource() string { return ringsSource }

type State int

const (
	Uninitialized State = iota
	Ready
	Running
	Stopped
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Disposed:
		return "disposed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Option func(*Pipeline)

// WithFragmentSource replaces the built-in ring program.
func WithFragmentSource(src string) Option {
	return func(p *Pipeline) { p.fragment = src }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// Pipeline is owned by one engine and used from one goroutine.
type Pipeline struct {
	state    State
	fragment string
	log      zerolog.Logger

	surface gpu.Surface
	dev     gpu.Device
	program gpu.Handle
	buffer  gpu.Handle
	width   int
	height  int
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		fragment: ringsSource,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) State() State { return p.state }

// BackingSize is the current pixel size of the render target.
func (p *Pipeline) BackingSize() (int, int) { return p.width, p.height }

// Init sizes the surface, acquires a context and builds the program and quad.
// On any failure the pipeline stays Uninitialized and holds no device objects.
func (p *Pipeline) Init(surface gpu.Surface) error {
	if p.state != Uninitialized {
		return &TransitionError{Op: "init", From: p.state}
	}

	w, h := surface.DisplaySize()
	bw, bh := gpu.BackingSize(w, h, surface.DevicePixelRatio())
	surface.SetBackingSize(bw, bh)

	dev, ok := surface.Context(gpu.Attributes{Alpha: true, PremultipliedAlpha: false})
	if !ok || dev == nil {
		p.log.Warn().Msg("no GPU context")
		return &UnsupportedContextError{}
	}

	program, buffer, err := setup(dev, p.fragment)
	if err != nil {
		p.log.Error().Err(err).Msg("shader setup failed")
		return err
	}
	dev.Viewport(bw, bh)

	p.surface, p.dev = surface, dev
	p.program, p.buffer = program, buffer
	p.width, p.height = bw, bh
	p.state = Ready
	p.log.Info().Int("width", bw).Int("height", bh).Msg("shader pipeline ready")
	return nil
}

// setup compiles, links and uploads the quad. Every object created before a
// failure is deleted before the error is returned.
func setup(dev gpu.Device, fragment string) (program, buffer gpu.Handle, err error) {
	var release []func()
	defer func() {
		if err != nil {
			for i := len(release) - 1; i >= 0; i-- {
				release[i]()
			}
		}
	}()

	vs := dev.CreateShader(gpu.Vertex, gpu.PassthroughVertex)
	release = append(release, func() { dev.DeleteShader(vs) })
	if ok, log := dev.CompileShader(vs); !ok {
		return 0, 0, &ShaderCompileError{Stage: gpu.Vertex, Log: log}
	}

	fs := dev.CreateShader(gpu.Fragment, fragment)
	release = append(release, func() { dev.DeleteShader(fs) })
	if ok, log := dev.CompileShader(fs); !ok {
		return 0, 0, &ShaderCompileError{Stage: gpu.Fragment, Log: log}
	}

	prog := dev.CreateProgram(vs, fs)
	release = append(release, func() { dev.DeleteProgram(prog) })
	if ok, log := dev.LinkProgram(prog); !ok {
		return 0, 0, &ShaderLinkError{Log: log}
	}

	// The linked program keeps what it needs.
	dev.DeleteShader(vs)
	dev.DeleteShader(fs)

	return prog, dev.CreateBuffer(gpu.QuadStrip), nil
}

// Start moves Ready or Stopped to Running. Starting while Running is a no-op.
func (p *Pipeline) Start() error {
	switch p.state {
	case Running:
		return nil
	case Ready, Stopped:
		p.state = Running
		return nil
	}
	return &TransitionError{Op: "start", From: p.state}
}

// Stop moves Running to Stopped. Stopping while Stopped is a no-op.
func (p *Pipeline) Stop() error {
	switch p.state {
	case Stopped:
		return nil
	case Running:
		p.state = Stopped
		return nil
	}
	return &TransitionError{Op: "stop", From: p.state}
}

// Render draws one frame at elapsed seconds. After Dispose it does nothing.
func (p *Pipeline) Render(elapsed float64) error {
	switch p.state {
	case Disposed:
		return nil
	case Running:
	default:
		return &TransitionError{Op: "render", From: p.state}
	}
	p.dev.Clear()
	return p.dev.Draw(p.program, p.buffer, map[string]any{
		gpu.UniformResolution:  []float32{float32(p.width), float32(p.height)},
		gpu.UniformElapsedTime: float32(elapsed),
	})
}

// Resize re-reads the display size and pixel ratio. It reports whether the
// backing size changed; an unchanged size touches nothing.
func (p *Pipeline) Resize() bool {
	switch p.state {
	case Ready, Running, Stopped:
	default:
		return false
	}
	w, h := p.surface.DisplaySize()
	bw, bh := gpu.BackingSize(w, h, p.surface.DevicePixelRatio())
	if bw == p.width && bh == p.height {
		return false
	}
	p.surface.SetBackingSize(bw, bh)
	p.dev.Viewport(bw, bh)
	p.width, p.height = bw, bh
	return true
}

// Dispose releases the program and buffer once. It is valid from any state.
func (p *Pipeline) Dispose() {
	if p.state == Disposed {
		return
	}
	if p.dev != nil {
		if p.program != 0 {
			p.dev.DeleteProgram(p.program)
		}
		if p.buffer != 0 {
			p.dev.DeleteBuffer(p.buffer)
		}
	}
	p.program, p.buffer = 0, 0
	p.dev, p.surface = nil, nil
	p.state = Disposed
	p.log.Debug().Msg("shader pipeline disposed")
}
