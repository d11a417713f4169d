// Package canvas holds the ebiten drawing surfaces behind the particle
// system and the lyric renderer.
package canvas

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/orbit-visualization/internal/particles"
)

const gradientSegments = 48

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(whiteImage.Bounds().Inset(1)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Particles is a persistent offscreen image the particle system paints
// into. It is never cleared between frames; the system fades it instead.
type Particles struct {
	w, h  float64
	scale float64
	img   *ebiten.Image

	vs []ebiten.Vertex
	is []uint16
}

func NewParticles(w, h, scale float64) *Particles {
	p := &Particles{}
	p.Resize(w, h, scale)
	return p
}

// Resize reallocates the backing image when the pixel size changes.
func (p *Particles) Resize(w, h, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	pw, ph := int(math.Round(w*scale)), int(math.Round(h*scale))
	if p.img != nil {
		if b := p.img.Bounds(); b.Dx() == pw && b.Dy() == ph {
			p.w, p.h, p.scale = w, h, scale
			return
		}
		p.img.Deallocate()
	}
	p.w, p.h, p.scale = w, h, scale
	p.img = ebiten.NewImage(pw, ph)
	p.img.Fill(color.Black)
}

func (p *Particles) Size() (float64, float64) { return p.w, p.h }

func (p *Particles) Fade(c color.NRGBA) {
	b := p.img.Bounds()
	vector.DrawFilledRect(p.img, 0, 0, float32(b.Dx()), float32(b.Dy()), c, false)
}

func (p *Particles) FillCircle(cx, cy, r float64, c color.NRGBA) {
	k := p.scale
	vector.DrawFilledCircle(p.img, float32(cx*k), float32(cy*k), float32(r*k), c, true)
}

// RadialGradient draws a triangle fan with one ring of vertices per stop;
// the GPU interpolates colour between rings.
func (p *Particles) RadialGradient(cx, cy, r float64, stops []particles.Stop) {
	if len(stops) < 2 || r <= 0 {
		return
	}
	k := p.scale
	cx, cy, r = cx*k, cy*k, r*k

	p.vs, p.is = p.vs[:0], p.is[:0]
	vertex := func(x, y float64, c color.NRGBA) ebiten.Vertex {
		return ebiten.Vertex{
			DstX: float32(x), DstY: float32(y),
			SrcX: 1, SrcY: 1,
			ColorR: float32(c.R) / 0xff, ColorG: float32(c.G) / 0xff,
			ColorB: float32(c.B) / 0xff, ColorA: float32(c.A) / 0xff,
		}
	}

	// ring 0 is the centre point when the first stop sits at offset 0.
	rings := make([]int, len(stops))
	for i, s := range stops {
		rings[i] = len(p.vs)
		rr := s.Offset * r
		if rr == 0 {
			p.vs = append(p.vs, vertex(cx, cy, s.Color))
			continue
		}
		for j := 0; j < gradientSegments; j++ {
			a := 2 * math.Pi * float64(j) / gradientSegments
			p.vs = append(p.vs, vertex(cx+rr*math.Cos(a), cy+rr*math.Sin(a), s.Color))
		}
	}

	for i := 1; i < len(stops); i++ {
		inner, outer := rings[i-1], rings[i]
		innerIsPoint := outer-inner == 1
		for j := 0; j < gradientSegments; j++ {
			n := (j + 1) % gradientSegments
			o0, o1 := uint16(outer+j), uint16(outer+n)
			if innerIsPoint {
				p.is = append(p.is, uint16(inner), o0, o1)
				continue
			}
			i0, i1 := uint16(inner+j), uint16(inner+n)
			p.is = append(p.is, i0, o0, o1, i0, o1, i1)
		}
	}

	p.img.DrawTriangles(p.vs, p.is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// Draw composites the surface onto dst at (x, y) in logical pixels.
func (p *Particles) Draw(dst *ebiten.Image, x, y float64) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(1/p.scale, 1/p.scale)
	op.GeoM.Translate(x, y)
	dst.DrawImage(p.img, op)
}
