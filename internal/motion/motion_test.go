package motion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetTable(t *testing.T) {
	cases := []struct {
		name    string
		speed   float64
		count   int
		palette int
	}{
		{"default", 1.0, 6, 6},
		{"fast", 2.5, 8, 6},
		{"slow", 0.5, 4, 4},
		{"many", 1.2, 12, 12},
	}
	for _, tc := range cases {
		p, ok := Lookup(tc.name)
		require.True(t, ok, tc.name)
		assert.Equal(t, tc.speed, p.SpeedMultiplier, tc.name)
		assert.Equal(t, tc.count, p.EntityCount, tc.name)
		assert.Len(t, p.Palette, tc.palette, tc.name)
	}
	assert.Equal(t, []string{"default", "fast", "slow", "many"}, Names())

	_, ok := Lookup("sparkle")
	assert.False(t, ok)
}

func TestLookupReturnsPaletteCopy(t *testing.T) {
	p, _ := Lookup("slow")
	p.Palette[0].R = 0
	again, _ := Lookup("slow")
	assert.Equal(t, uint8(0x66), again.Palette[0].R)
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#45b7d1")
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{0x45, 0xb7, 0xd1, 0xff}, [4]uint8{c.R, c.G, c.B, c.A})

	_, err = ParseHex("45b7d1")
	assert.Error(t, err)
	_, err = ParseHex("#zzzzzz")
	assert.Error(t, err)
}

func TestCreateEntitiesIsDeterministic(t *testing.T) {
	p, _ := Lookup("default")
	es := CreateEntities(p, 200, 200)
	require.Len(t, es, 6)

	for i, e := range es {
		fi := float64(i)
		assert.Equal(t, i, e.Index)
		assert.Equal(t, 80+15*fi, e.OrbitRadius)
		assert.InDelta(t, fi*2*math.Pi/6, e.Angle, 1e-12)
		assert.Equal(t, 1.2+0.3*fi, e.AngularSpeed)
		assert.Equal(t, 0.5*fi, e.PulsePhase)
	}
	assert.Equal(t, es, CreateEntities(p, 200, 200))
}

func TestAngleAccumulatesWithoutWrapping(t *testing.T) {
	p, _ := Lookup("fast")
	es := CreateEntities(p, 0, 0)
	initial := make([]float64, len(es))
	for i, e := range es {
		initial[i] = e.Angle
	}

	const n, d = 5000, 1.0 / 60
	elapsed := 0.0
	for k := 0; k < n; k++ {
		elapsed += d
		for i := range es {
			es[i] = Step(es[i], Params{Delta: d, Elapsed: elapsed, Speed: p.SpeedMultiplier, ColorCycleRate: DefaultColorCycleRate, Palette: p.Palette})
		}
	}

	for i, e := range es {
		want := initial[i] + n*d*e.AngularSpeed*p.SpeedMultiplier
		assert.InEpsilon(t, want, e.Angle, 1e-9, "entity %d", i)
		assert.Greater(t, e.Angle, 2*math.Pi, "stored angle must not be renormalized")
		assert.Less(t, DisplayAngle(e.Angle), 2*math.Pi)
	}
}

func TestStepDerivedVisuals(t *testing.T) {
	p, _ := Lookup("default")
	e := CreateEntities(p, 100, 50)[2]
	e = Step(e, Params{Delta: 0.5, Elapsed: 0.5, Speed: 1, ColorCycleRate: 0.5, CenterX: 100, CenterY: 50, Palette: p.Palette})

	assert.InDelta(t, 100+e.OrbitRadius*math.Cos(e.Angle), e.X, 1e-9)
	assert.InDelta(t, 50+e.OrbitRadius*math.Sin(e.Angle), e.Y, 1e-9)
	assert.InDelta(t, e.BaseRadius+10*math.Sin(e.PulsePhase), e.Radius, 1e-9)
	assert.InDelta(t, 0.6+0.3*math.Sin(1.5*e.PulsePhase), e.Opacity, 1e-9)
	assert.GreaterOrEqual(t, e.Opacity, 0.3)
	assert.LessOrEqual(t, e.Opacity, 0.9)
}

func TestColorIsPureFunctionOfTime(t *testing.T) {
	p, _ := Lookup("slow")
	for _, tc := range []struct {
		index int
		t     float64
		want  int
	}{
		{0, 0, 0},
		{0, 1.99, 0},
		{0, 2.0, 1},
		{3, 2.0, 0},
		{1, 9.0, 1},
	} {
		assert.Equal(t, tc.want, ColorIndex(tc.index, tc.t, 0.5, len(p.Palette)), "index %d t %.2f", tc.index, tc.t)
	}

	// Same inputs, same colour, regardless of how the entity got there.
	a := CreateEntities(p, 0, 0)[1]
	b := a
	for k := 0; k < 10; k++ {
		a = Step(a, Params{Delta: 0.3, Elapsed: 3, Speed: 1, ColorCycleRate: 0.5, Palette: p.Palette})
	}
	b = Step(b, Params{Delta: 0.01, Elapsed: 3, Speed: 1, ColorCycleRate: 0.5, Palette: p.Palette})
	assert.Equal(t, a.Color, b.Color)
	assert.Equal(t, p.Palette[(1+1)%4], a.Color)
}
