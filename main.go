package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iburimskiy/orbit-visualization/internal/config"
	"github.com/iburimskiy/orbit-visualization/internal/engine"
	"github.com/iburimskiy/orbit-visualization/internal/game"
	"github.com/iburimskiy/orbit-visualization/internal/headless"
	"github.com/iburimskiy/orbit-visualization/internal/motion"
	"github.com/iburimskiy/orbit-visualization/internal/timeline"
)

var (
	configPath  string
	preset      string
	mode        string
	lyricsFile  string
	logLevel    string
	runHeadless bool
	ticks       uint64
	seek        float64
)

var rootCmd = &cobra.Command{
	Use:           "orbit",
	Short:         "Orbiting particles, a ring shader and scrolling lyrics",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "list motion presets",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range motion.Names() {
			p, _ := motion.Lookup(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s entities=%-3d speed=%.1fx\n", p.Name, p.EntityCount, p.SpeedMultiplier)
		}
	},
}

var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "lyric timeline tools",
}

var lyricsCheckCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "validate a lyric timeline file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tl, err := timeline.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d lines, %.1fs\n", args[0], tl.Len(), tl.Duration())
		return nil
	},
}

var lyricsDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "print the built-in lyric timeline as yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := timeline.Demo().Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "path to a yaml settings file")
	f.StringVarP(&preset, "preset", "p", "", "motion preset (default, fast, slow, many)")
	f.StringVarP(&mode, "mode", "m", "", "render mode: particles | shader")
	f.StringVarP(&lyricsFile, "lyrics", "l", "", "lyric timeline yaml; empty uses the built-in sample")
	f.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.BoolVar(&runHeadless, "headless", false, "run without a window and print a summary")
	f.Uint64Var(&ticks, "ticks", 600, "frames to run in headless mode (0 runs until interrupted)")
	f.Float64Var(&seek, "seek", 0, "lyric clock to start from in headless mode, in seconds")

	lyricsCmd.AddCommand(lyricsCheckCmd, lyricsDemoCmd)
	rootCmd.AddCommand(presetsCmd, lyricsCmd)
}

// settings loads the optional settings file and applies flag overrides.
func settings(cmd *cobra.Command) (*config.Settings, error) {
	s := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		s = loaded
	}
	f := cmd.Flags()
	if f.Changed("preset") {
		s.Preset = preset
	}
	if f.Changed("mode") {
		s.Mode = mode
	}
	if f.Changed("lyrics") {
		s.Lyrics.File = lyricsFile
	}
	if f.Changed("log-level") {
		s.LogLevel = logLevel
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func run(cmd *cobra.Command, args []string) error {
	s, err := settings(cmd)
	if err != nil {
		return err
	}
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	var tl *timeline.Timeline
	if s.Lyrics.File != "" {
		if tl, err = timeline.Load(s.Lyrics.File); err != nil {
			return err
		}
	}

	if runHeadless {
		m, err := engine.ParseMode(s.Mode)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sum, err := headless.Run(ctx, headless.Config{
			Hz:         s.Window.TPS,
			Ticks:      ticks,
			Preset:     s.Preset,
			Mode:       m,
			Timeline:   tl,
			Seek:       seek,
			TrailAlpha: s.TrailAlpha,
			LineHeight: s.Lyrics.LineHeight,
			Smoothing:  s.Lyrics.Smoothing,
			Logger:     log.Logger,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "frames=%d elapsed=%.2fs fps=%.1f lyric=%.1fs preset=%s line=%q\n",
			sum.Frames, sum.Elapsed, sum.FPS, sum.Lyric, sum.Preset, sum.ActiveLine)
		return nil
	}

	ebiten.SetWindowSize(s.Window.Width, s.Window.Height)
	ebiten.SetWindowTitle("Orbit - Space: start/stop, 1-4: preset, M: mode, O: lyrics, Esc/Q: quit")
	ebiten.SetTPS(s.Window.TPS)

	g := game.New(game.Options{Settings: s, Timeline: tl, Logger: log.Logger})
	defer g.Close()
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
