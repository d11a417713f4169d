// Package kage implements gpu.Device on ebiten. Fragment programs are Kage
// sources compiled with ebiten.NewShader; the vertex stage is ebiten's own
// passthrough, so only gpu.PassthroughVertex is accepted for it.
package kage

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/orbit-visualization/internal/gpu"
)

type shaderObject struct {
	stage    gpu.Stage
	source   string
	compiled *ebiten.Shader
	// linked means a program took ownership of compiled.
	linked bool
}

type program struct {
	vs, fs gpu.Handle
	shader *ebiten.Shader
}

type buffer struct {
	clip     []float32
	vertices []ebiten.Vertex
	indices  []uint16
	w, h     int
}

// Device draws into the target image of its Surface.
type Device struct {
	surface  *Surface
	next     gpu.Handle
	shaders  map[gpu.Handle]*shaderObject
	programs map[gpu.Handle]*program
	buffers  map[gpu.Handle]*buffer
	w, h     int
}

func newDevice(s *Surface) *Device {
	return &Device{
		surface:  s,
		shaders:  map[gpu.Handle]*shaderObject{},
		programs: map[gpu.Handle]*program{},
		buffers:  map[gpu.Handle]*buffer{},
	}
}

func (d *Device) handle() gpu.Handle {
	d.next++
	return d.next
}

func (d *Device) CreateShader(stage gpu.Stage, source string) gpu.Handle {
	h := d.handle()
	d.shaders[h] = &shaderObject{stage: stage, source: source}
	return h
}

func (d *Device) CompileShader(h gpu.Handle) (bool, string) {
	s, ok := d.shaders[h]
	if !ok {
		return false, fmt.Sprintf("no shader object %d", h)
	}
	if s.stage == gpu.Vertex {
		if s.source != gpu.PassthroughVertex {
			return false, fmt.Sprintf("unsupported vertex program %q", s.source)
		}
		return true, ""
	}
	sh, err := ebiten.NewShader([]byte(s.source))
	if err != nil {
		return false, err.Error()
	}
	s.compiled = sh
	return true, ""
}

func (d *Device) DeleteShader(h gpu.Handle) {
	s, ok := d.shaders[h]
	if !ok {
		return
	}
	if s.compiled != nil && !s.linked {
		s.compiled.Deallocate()
	}
	delete(d.shaders, h)
}

func (d *Device) CreateProgram(vs, fs gpu.Handle) gpu.Handle {
	h := d.handle()
	d.programs[h] = &program{vs: vs, fs: fs}
	return h
}

// LinkProgram checks both stages compiled and that the fragment declares
// the uniforms the pipeline uploads.
func (d *Device) LinkProgram(h gpu.Handle) (bool, string) {
	p, ok := d.programs[h]
	if !ok {
		return false, fmt.Sprintf("no program %d", h)
	}
	vs, fs := d.shaders[p.vs], d.shaders[p.fs]
	if vs == nil || fs == nil || vs.stage != gpu.Vertex || fs.stage != gpu.Fragment {
		return false, "program needs one vertex and one fragment shader"
	}
	if fs.compiled == nil {
		return false, "fragment shader not compiled"
	}
	if ok, log := gpu.CheckContract(fs.source); !ok {
		return false, log
	}
	p.shader = fs.compiled
	fs.linked = true
	return true, ""
}

func (d *Device) DeleteProgram(h gpu.Handle) {
	p, ok := d.programs[h]
	if !ok {
		return
	}
	if p.shader != nil {
		p.shader.Deallocate()
	}
	delete(d.programs, h)
}

func (d *Device) CreateBuffer(clip []float32) gpu.Handle {
	h := d.handle()
	b := &buffer{clip: append([]float32(nil), clip...)}
	for i := 0; i+2 < len(clip)/2; i++ {
		b.indices = append(b.indices, uint16(i), uint16(i+1), uint16(i+2))
	}
	d.buffers[h] = b
	return h
}

func (d *Device) DeleteBuffer(h gpu.Handle) { delete(d.buffers, h) }

func (d *Device) Viewport(w, h int) { d.w, d.h = w, h }

func (d *Device) Clear() {
	if img := d.surface.Image(); img != nil {
		img.Clear()
	}
}

func (d *Device) Draw(ph, bh gpu.Handle, uniforms map[string]any) error {
	p, ok := d.programs[ph]
	if !ok || p.shader == nil {
		return fmt.Errorf("kage: draw with unlinked program %d", ph)
	}
	b, ok := d.buffers[bh]
	if !ok {
		return fmt.Errorf("kage: draw with deleted buffer %d", bh)
	}
	dst := d.surface.Image()
	if dst == nil {
		return fmt.Errorf("kage: no render target")
	}
	if b.w != d.w || b.h != d.h {
		b.layout(d.w, d.h)
	}
	dst.DrawTrianglesShader(b.vertices, b.indices, p.shader, &ebiten.DrawTrianglesShaderOptions{
		Uniforms: uniforms,
	})
	return nil
}

// layout maps clip-space positions onto a w×h target.
func (b *buffer) layout(w, h int) {
	b.w, b.h = w, h
	b.vertices = b.vertices[:0]
	for i := 0; i+1 < len(b.clip); i += 2 {
		x, y := b.clip[i], b.clip[i+1]
		b.vertices = append(b.vertices, ebiten.Vertex{
			DstX:   (x + 1) / 2 * float32(w),
			DstY:   (1 - y) / 2 * float32(h),
			ColorR: 1,
			ColorG: 1,
			ColorB: 1,
			ColorA: 1,
		})
	}
}
