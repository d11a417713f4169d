package kage

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/orbit-visualization/internal/gpu"
)

// Surface is a gpu.Surface backed by an offscreen ebiten image. The image
// is reallocated only when the backing size changes.
type Surface struct {
	W, H int
	// Scale reports the device pixel ratio; nil means the current monitor's.
	Scale func() float64

	img *ebiten.Image
	dev *Device
}

func (s *Surface) DisplaySize() (int, int) { return s.W, s.H }

func (s *Surface) DevicePixelRatio() float64 {
	if s.Scale != nil {
		return s.Scale()
	}
	return ebiten.Monitor().DeviceScaleFactor()
}

func (s *Surface) SetBackingSize(w, h int) {
	if s.img != nil {
		b := s.img.Bounds()
		if b.Dx() == w && b.Dy() == h {
			return
		}
		s.img.Deallocate()
	}
	s.img = ebiten.NewImage(w, h)
}

// Context hands out one device per surface. Ebiten always has a GPU
// context once the game loop runs.
func (s *Surface) Context(attrs gpu.Attributes) (gpu.Device, bool) {
	if !attrs.Alpha {
		return nil, false
	}
	if s.dev == nil {
		s.dev = newDevice(s)
	}
	return s.dev, true
}

// Image is the render target, nil before the first SetBackingSize.
func (s *Surface) Image() *ebiten.Image { return s.img }

// Draw composites the target onto dst at (x, y) in logical pixels.
func (s *Surface) Draw(dst *ebiten.Image, x, y float64) {
	if s.img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	if b := s.img.Bounds(); b.Dx() > 0 && s.W > 0 {
		k := float64(s.W) / float64(b.Dx())
		op.GeoM.Scale(k, k)
	}
	op.GeoM.Translate(x, y)
	dst.DrawImage(s.img, op)
}
