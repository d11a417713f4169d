// Package gputest provides an in-memory gpu.Device that records every call
// and can be told to fail compilation or linking.
package gputest

import (
	"fmt"

	"github.com/iburimskiy/orbit-visualization/internal/gpu"
)

type objectKind int

const (
	shaderObject objectKind = iota
	programObject
	bufferObject
)

type object struct {
	kind   objectKind
	stage  gpu.Stage
	source string
}

// Device is a recording fake. The zero value is ready to use.
type Device struct {
	// FailCompile makes CompileShader fail for that stage with the given log.
	FailCompile map[gpu.Stage]string
	// FailLink makes LinkProgram fail with this log when non-empty.
	FailLink string
	FailDraw error

	next    gpu.Handle
	live    map[gpu.Handle]object
	Created int
	Deleted int
	// DoubleFree counts deletes of handles that were not live.
	DoubleFree int

	Width, Height int
	Viewports     int
	Clears        int
	Draws         []map[string]any
}

func (d *Device) alloc(o object) gpu.Handle {
	if d.live == nil {
		d.live = make(map[gpu.Handle]object)
	}
	d.next++
	d.live[d.next] = o
	d.Created++
	return d.next
}

func (d *Device) free(h gpu.Handle, kind objectKind) {
	o, ok := d.live[h]
	if !ok || o.kind != kind {
		d.DoubleFree++
		return
	}
	delete(d.live, h)
	d.Deleted++
}

// Live is the number of objects created and not yet deleted.
func (d *Device) Live() int { return len(d.live) }

func (d *Device) CreateShader(stage gpu.Stage, source string) gpu.Handle {
	return d.alloc(object{kind: shaderObject, stage: stage, source: source})
}

func (d *Device) CompileShader(h gpu.Handle) (bool, string) {
	o, ok := d.live[h]
	if !ok || o.kind != shaderObject {
		return false, fmt.Sprintf("invalid shader %d", h)
	}
	if log, fail := d.FailCompile[o.stage]; fail {
		return false, log
	}
	if o.stage == gpu.Vertex && o.source != gpu.PassthroughVertex {
		return false, fmt.Sprintf("unknown vertex program %q", o.source)
	}
	return true, ""
}

func (d *Device) DeleteShader(h gpu.Handle) { d.free(h, shaderObject) }

func (d *Device) CreateProgram(vs, fs gpu.Handle) gpu.Handle {
	return d.alloc(object{kind: programObject, source: d.live[fs].source})
}

func (d *Device) LinkProgram(p gpu.Handle) (bool, string) {
	if d.FailLink != "" {
		return false, d.FailLink
	}
	o, ok := d.live[p]
	if !ok || o.kind != programObject {
		return false, fmt.Sprintf("invalid program %d", p)
	}
	return gpu.CheckContract(o.source)
}

func (d *Device) DeleteProgram(p gpu.Handle) { d.free(p, programObject) }

func (d *Device) CreateBuffer(vertices []float32) gpu.Handle {
	return d.alloc(object{kind: bufferObject})
}

func (d *Device) DeleteBuffer(b gpu.Handle) { d.free(b, bufferObject) }

func (d *Device) Viewport(w, h int) {
	d.Width, d.Height = w, h
	d.Viewports++
}

func (d *Device) Clear() { d.Clears++ }

func (d *Device) Draw(p, b gpu.Handle, uniforms map[string]any) error {
	if d.FailDraw != nil {
		return d.FailDraw
	}
	if _, ok := d.live[p]; !ok {
		return fmt.Errorf("draw with deleted program %d", p)
	}
	if _, ok := d.live[b]; !ok {
		return fmt.Errorf("draw with deleted buffer %d", b)
	}
	cp := make(map[string]any, len(uniforms))
	for k, v := range uniforms {
		cp[k] = v
	}
	d.Draws = append(d.Draws, cp)
	return nil
}

// Surface is a fake gpu.Surface. A nil Device means no context is available.
type Surface struct {
	W, H     int
	DPR      float64
	Device   *Device
	Backings [][2]int
	Attrs    []gpu.Attributes
}

func (s *Surface) DisplaySize() (int, int) { return s.W, s.H }
func (s *Surface) DevicePixelRatio() float64 { return s.DPR }
func (s *Surface) SetBackingSize(w, h int) { s.Backings = append(s.Backings, [2]int{w, h}) }

func (s *Surface) Context(attrs gpu.Attributes) (gpu.Device, bool) {
	s.Attrs = append(s.Attrs, attrs)
	if s.Device == nil {
		return nil, false
	}
	return s.Device, true
}
