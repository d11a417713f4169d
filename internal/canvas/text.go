package canvas

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/iburimskiy/orbit-visualization/internal/timeline"
)

// glyphHeight is the cell height of basicfont.Face7x13.
const glyphHeight = 13

// Lyrics renders timeline lines into an offscreen image. Each distinct line
// is rasterised once into a white sprite and then scaled and tinted.
type Lyrics struct {
	w, h    float64
	img     *ebiten.Image
	sprites map[string]*ebiten.Image
}

func NewLyrics(w, h float64) *Lyrics {
	return &Lyrics{
		w:       w,
		h:       h,
		img:     ebiten.NewImage(int(w), int(h)),
		sprites: map[string]*ebiten.Image{},
	}
}

func (l *Lyrics) Size() (float64, float64) { return l.w, l.h }

func (l *Lyrics) Clear(bg color.RGBA) { l.img.Fill(bg) }

func (l *Lyrics) DrawLine(text string, x, y float64, st timeline.Style) {
	sp := l.sprite(text)
	b := sp.Bounds()
	k := st.Scale * st.Size / glyphHeight

	at := func(dx, dy float64) *ebiten.DrawImageOptions {
		op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
		op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
		op.GeoM.Scale(k, k)
		op.GeoM.Translate(x+dx, y+dy)
		return op
	}

	shadow := at(0, 2)
	shadow.ColorScale.Scale(0, 0, 0, float32(0.5*float64(st.Color.A)/0xff))
	l.img.DrawImage(sp, shadow)

	op := at(0, 0)
	op.ColorScale.ScaleWithColor(st.Color)
	l.img.DrawImage(sp, op)
}

func (l *Lyrics) sprite(text string) *ebiten.Image {
	if sp, ok := l.sprites[text]; ok {
		return sp
	}
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	if w == 0 {
		w = 1
	}
	rgba := image.NewRGBA(image.Rect(0, 0, w, glyphHeight+3))
	d := &font.Drawer{
		Dst:  rgba,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: fixed.I(face.Ascent)},
	}
	d.DrawString(text)
	sp := ebiten.NewImageFromImage(rgba)
	l.sprites[text] = sp
	return sp
}

// Draw composites the lyric view onto dst at (x, y).
func (l *Lyrics) Draw(dst *ebiten.Image, x, y float64) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	dst.DrawImage(l.img, op)
}

// Reset drops cached sprites, for example after loading another timeline.
func (l *Lyrics) Reset() {
	for _, sp := range l.sprites {
		sp.Deallocate()
	}
	l.sprites = map[string]*ebiten.Image{}
}
