package motion

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
)

// Preset is an immutable named configuration. Selecting one replaces the
// active configuration wholesale.
type Preset struct {
	Name            string
	SpeedMultiplier float64
	EntityCount     int
	Palette         []color.RGBA
}

var presets = map[string]Preset{
	"default": {
		Name:            "default",
		SpeedMultiplier: 1.0,
		EntityCount:     6,
		Palette:         mustPalette("#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4", "#feca57", "#ff9ff3"),
	},
	"fast": {
		Name:            "fast",
		SpeedMultiplier: 2.5,
		EntityCount:     8,
		Palette:         mustPalette("#ff3838", "#ff9500", "#ffdd00", "#00ff00", "#0099ff", "#9500ff"),
	},
	"slow": {
		Name:            "slow",
		SpeedMultiplier: 0.5,
		EntityCount:     4,
		Palette:         mustPalette("#667eea", "#764ba2", "#f093fb", "#f5576c"),
	},
	"many": {
		Name:            "many",
		SpeedMultiplier: 1.2,
		EntityCount:     12,
		Palette: mustPalette(
			"#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4", "#feca57", "#ff9ff3",
			"#6c5ce7", "#fd79a8", "#fdcb6e", "#55a3ff", "#00b894", "#e17055",
		),
	},
}

// Lookup returns the named preset. The palette is a copy, so callers cannot
// mutate the registry.
func Lookup(name string) (Preset, bool) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, false
	}
	p.Palette = append([]color.RGBA(nil), p.Palette...)
	return p, true
}

// Names lists the preset names in display order.
func Names() []string {
	order := map[string]int{"default": 0, "fast": 1, "slow": 2, "many": 3}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return order[names[i]] < order[names[j]] })
	return names
}

// ParseHex parses "#rrggbb" into an opaque colour.
func ParseHex(s string) (color.RGBA, error) {
	var c color.RGBA
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("colour %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return c, fmt.Errorf("colour %q: %w", s, err)
	}
	c.R, c.G, c.B, c.A = uint8(v>>16), uint8(v>>8), uint8(v), 0xff
	return c, nil
}

func mustPalette(hex ...string) []color.RGBA {
	out := make([]color.RGBA, len(hex))
	for i, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}
