// Package motion holds the orbit model: presets, entity construction and the
// per-tick transition. Everything here is pure data; drawing lives in
// package particles.
package motion

import (
	"image/color"
	"math"
)

const (
	baseRadius  = 30.0
	radiusStep  = 25.0
	orbitBase   = 80.0
	orbitStep   = 15.0
	baseSpeed   = 1.2 // rad/s
	speedStep   = 0.3 // rad/s per index
	phaseStep   = 0.5
	pulseRate   = 1.8 // rad/s
	pulseAmp    = 10.0
	opacityBase = 0.6
	opacityAmp  = 0.3
	opacityFreq = 1.5

	// DefaultColorCycleRate is how many palette steps an entity takes per second.
	DefaultColorCycleRate = 0.5
)

// Entity is one orbiting, pulsing particle. Angle and PulsePhase grow without
// bound; they are never wrapped in stored state.
type Entity struct {
	Index        int
	BaseRadius   float64
	OrbitRadius  float64
	Angle        float64
	AngularSpeed float64
	PulsePhase   float64

	X, Y       float64
	Radius     float64
	Opacity    float64
	ColorIndex int
	Color      color.RGBA
}

// CreateEntities builds the deterministic initial collection for p centred on
// (cx, cy). Entity i depends only on i and the preset's count.
func CreateEntities(p Preset, cx, cy float64) []Entity {
	n := p.EntityCount
	out := make([]Entity, n)
	for i := range out {
		fi := float64(i)
		e := Entity{
			Index:        i,
			BaseRadius:   baseRadius + fi*radiusStep,
			OrbitRadius:  orbitBase + fi*orbitStep,
			Angle:        fi * 2 * math.Pi / float64(n),
			AngularSpeed: baseSpeed + fi*speedStep,
			PulsePhase:   fi * phaseStep,
		}
		e.derive(cx, cy, 0, DefaultColorCycleRate, p.Palette)
		out[i] = e
	}
	return out
}

// Params is the per-tick input shared by every entity.
type Params struct {
	Delta          float64 // seconds since the previous tick
	Elapsed        float64 // seconds since start
	Speed          float64 // preset speed multiplier
	ColorCycleRate float64
	CenterX        float64
	CenterY        float64
	Palette        []color.RGBA
}

// Step returns e advanced by one tick.
func Step(e Entity, p Params) Entity {
	e.Angle += p.Delta * e.AngularSpeed * p.Speed
	e.PulsePhase += p.Delta * pulseRate * p.Speed
	e.derive(p.CenterX, p.CenterY, p.Elapsed, p.ColorCycleRate, p.Palette)
	return e
}

func (e *Entity) derive(cx, cy, elapsed, rate float64, palette []color.RGBA) {
	e.X = cx + e.OrbitRadius*math.Cos(e.Angle)
	e.Y = cy + e.OrbitRadius*math.Sin(e.Angle)
	e.Radius = e.BaseRadius + pulseAmp*math.Sin(e.PulsePhase)
	e.Opacity = opacityBase + opacityAmp*math.Sin(e.PulsePhase*opacityFreq)
	e.ColorIndex = ColorIndex(e.Index, elapsed, rate, len(palette))
	if len(palette) > 0 {
		e.Color = palette[e.ColorIndex]
	}
}

// ColorIndex is the palette slot for entity index at time t.
func ColorIndex(index int, t, rate float64, paletteLen int) int {
	if paletteLen == 0 {
		return 0
	}
	step := int(math.Floor(t * rate))
	i := (index + step) % paletteLen
	if i < 0 {
		i += paletteLen
	}
	return i
}

// DisplayAngle is the stored angle reduced to [0, 2π).
func DisplayAngle(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
