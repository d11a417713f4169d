// Package timeline maps a playback clock to timed text lines and renders them
// as a smoothly scrolling column.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// None is returned by ActiveIndex when no line covers the time.
const None = -1

type Line struct {
	Text     string  `yaml:"text"`
	Start    float64 `yaml:"start"`
	Duration float64 `yaml:"duration"`
}

func (l Line) End() float64 { return l.Start + l.Duration }

// ValidationError describes the first bad line of a sequence.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Index, e.Reason)
}

// Timeline is an immutable, sorted, non-overlapping line sequence.
type Timeline struct {
	lines []Line
}

// New validates and copies lines.
func New(lines []Line) (*Timeline, error) {
	if len(lines) == 0 {
		return nil, errors.New("timeline: no lines")
	}
	for i, l := range lines {
		switch {
		case strings.TrimSpace(l.Text) == "":
			return nil, &ValidationError{Index: i, Reason: "empty text"}
		case math.IsNaN(l.Start) || l.Start < 0:
			return nil, &ValidationError{Index: i, Reason: fmt.Sprintf("start %.3f is negative", l.Start)}
		case !(l.Duration > 0):
			return nil, &ValidationError{Index: i, Reason: fmt.Sprintf("duration %.3f must be positive", l.Duration)}
		case i > 0 && l.Start < lines[i-1].End():
			return nil, &ValidationError{Index: i, Reason: fmt.Sprintf("starts at %.3f before line %d ends at %.3f", l.Start, i-1, lines[i-1].End())}
		}
	}
	return &Timeline{lines: append([]Line(nil), lines...)}, nil
}

func (t *Timeline) Len() int { return len(t.lines) }
func (t *Timeline) Line(i int) Line { return t.lines[i] }
func (t *Timeline) Lines() []Line { return append([]Line(nil), t.lines...) }
func (t *Timeline) Duration() float64 { return t.lines[len(t.lines)-1].End() }

// ActiveIndex returns the line whose half-open window [start, end) holds at,
// or None. Gaps between lines and the end of the last line map to None.
func (t *Timeline) ActiveIndex(at float64) int {
	if math.IsNaN(at) {
		return None
	}
	// first line starting after at; the candidate is the one before it.
	i := sort.Search(len(t.lines), func(i int) bool { return t.lines[i].Start > at }) - 1
	if i < 0 || at >= t.lines[i].End() {
		return None
	}
	return i
}

// LineProgress is how far at is through l, clamped to [0, 1].
func LineProgress(at float64, l Line) float64 {
	if l.Duration <= 0 {
		return 1
	}
	return math.Max(0, math.Min(1, (at-l.Start)/l.Duration))
}

type file struct {
	Lines []Line `yaml:"lines"`
}

// Parse reads a YAML document of the form `lines: [{text, start, duration}]`.
func Parse(data []byte) (*Timeline, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	return New(f.Lines)
}

func Load(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tl, nil
}

// Marshal encodes t in the format Parse reads.
func (t *Timeline) Marshal() ([]byte, error) {
	return yaml.Marshal(file{Lines: t.lines})
}

var demo = []Line{
	{"I see the future", 0, 3},
	{"But I don't see you there", 3, 4},
	{"All of my memories", 7, 3},
	{"Are painted in the air", 10, 4},
	{"I hear the echoes", 14, 3},
	{"Of voices I once knew", 17, 4},
	{"But they're just shadows now", 21, 4},
	{"Fading from view", 25, 3},
}

// Demo is the built-in eight line sequence.
func Demo() *Timeline {
	return &Timeline{lines: append([]Line(nil), demo...)}
}
