// Package gpu describes the small slice of a GPU API the shader pipeline
// needs: shader objects, a program, one vertex buffer and a draw call.
package gpu

import "fmt"

type Stage int

const (
	Vertex Stage = iota
	Fragment
)

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// PassthroughVertex names the fixed full-screen quad vertex program. It is
// the only vertex source devices are required to accept.
const PassthroughVertex = "passthrough"

// Uniform names of the fragment contract.
const (
	UniformResolution  = "Resolution"
	UniformElapsedTime = "ElapsedTime"
)

// Handle identifies a device object. Zero is never a valid handle.
type Handle uint32

// Attributes are requested when acquiring a context.
type Attributes struct {
	Alpha              bool
	PremultipliedAlpha bool
}

// Device is an acquired GPU context. Objects follow create, use, delete; a
// device never frees an object on its own.
type Device interface {
	CreateShader(stage Stage, source string) Handle
	// CompileShader reports success and the diagnostic log.
	CompileShader(h Handle) (bool, string)
	DeleteShader(h Handle)

	CreateProgram(vs, fs Handle) Handle
	LinkProgram(p Handle) (bool, string)
	DeleteProgram(p Handle)

	// CreateBuffer uploads a triangle strip of clip-space xy pairs.
	CreateBuffer(vertices []float32) Handle
	DeleteBuffer(b Handle)

	Viewport(w, h int)
	Clear()
	Draw(p, b Handle, uniforms map[string]any) error
}

// Surface is where the pipeline renders. Context returns false when no GPU
// context can be obtained.
type Surface interface {
	DisplaySize() (w, h int)
	DevicePixelRatio() float64
	SetBackingSize(w, h int)
	Context(attrs Attributes) (Device, bool)
}

// BackingSize is the pixel size for a display size and device pixel ratio.
func BackingSize(w, h int, dpr float64) (int, int) {
	if dpr <= 0 {
		dpr = 1
	}
	return int(float64(w)*dpr + 0.5), int(float64(h)*dpr + 0.5)
}

// QuadStrip is the full-screen quad as a triangle strip.
var QuadStrip = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}
