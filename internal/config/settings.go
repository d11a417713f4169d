package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Window struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	TPS    int `yaml:"tps"`
}

type Lyrics struct {
	File       string  `yaml:"file,omitempty"` // empty uses the built-in sample
	LineHeight float64 `yaml:"line_height"`
	Smoothing  float64 `yaml:"smoothing"`
}

type Settings struct {
	Window     Window  `yaml:"window"`
	Mode       string  `yaml:"mode"` // "particles" | "shader"
	Preset     string  `yaml:"preset"`
	TrailAlpha float64 `yaml:"trail_alpha"`
	LogLevel   string  `yaml:"log_level"`
	Lyrics     Lyrics  `yaml:"lyrics"`
}

func Default() *Settings {
	return &Settings{
		Window: Window{
			Width:  WindowWidth,
			Height: WindowHeight,
			TPS:    60,
		},
		Mode:       "particles",
		Preset:     "default",
		TrailAlpha: TrailAlpha,
		LogLevel:   "info",
		Lyrics: Lyrics{
			LineHeight: LineHeight,
			Smoothing:  ScrollSmoothing,
		},
	}
}

// Load reads path over the defaults, so a partial file only overrides what it names.
func Load(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := Default()
	if err := yaml.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return s, nil
}

func Save(path string, s *Settings) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (s *Settings) Validate() error {
	var errs []error
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", s.Window.Width, s.Window.Height))
	}
	if s.Window.TPS <= 0 {
		errs = append(errs, fmt.Errorf("tps %d must be positive", s.Window.TPS))
	}
	switch s.Mode {
	case "particles", "shader":
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", s.Mode))
	}
	if s.TrailAlpha <= 0 || s.TrailAlpha > 1 {
		errs = append(errs, fmt.Errorf("trail_alpha %.3f must be in (0, 1]", s.TrailAlpha))
	}
	if s.Lyrics.LineHeight <= 0 {
		errs = append(errs, fmt.Errorf("lyrics.line_height %.1f must be positive", s.Lyrics.LineHeight))
	}
	if s.Lyrics.Smoothing <= 0 || s.Lyrics.Smoothing >= 1 {
		errs = append(errs, fmt.Errorf("lyrics.smoothing %.3f must be in (0, 1)", s.Lyrics.Smoothing))
	}
	return errors.Join(errs...)
}
