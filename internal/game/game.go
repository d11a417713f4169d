// Package game is the ebiten window around the engine: buttons, keys, the
// lyric progress bar and a status line.
package game

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog"

	"github.com/iburimskiy/orbit-visualization/internal/canvas"
	"github.com/iburimskiy/orbit-visualization/internal/config"
	"github.com/iburimskiy/orbit-visualization/internal/engine"
	"github.com/iburimskiy/orbit-visualization/internal/gpu/kage"
	"github.com/iburimskiy/orbit-visualization/internal/motion"
	"github.com/iburimskiy/orbit-visualization/internal/scheduler"
	"github.com/iburimskiy/orbit-visualization/internal/timeline"
)

type button struct {
	r      rect
	label  func() string
	active func() bool
	action func() error
}

type Options struct {
	Settings *config.Settings
	Timeline *timeline.Timeline
	Logger   zerolog.Logger
}

type Game struct {
	opts Options
	log  zerolog.Logger

	host *scheduler.Pump
	tap  *scheduler.FrameTap

	particles *canvas.Particles
	lyrics    *canvas.Lyrics
	gpu       *kage.Surface
	scale     float64

	engine *engine.Engine
	state  engine.State

	buttons []button
	hovered int
	pressed int

	// progress bar
	bar         rect
	barHovered  bool
	barDragging bool
	lastSeek    time.Time

	// input edge detection
	prevKey map[ebiten.Key]bool

	initDone bool
	lastErr  error
}

func New(opts Options) *Game {
	if opts.Settings == nil {
		opts.Settings = config.Default()
	}
	return &Game{
		opts:    opts,
		log:     opts.Logger.With().Str("component", "game").Logger(),
		host:    &scheduler.Pump{},
		tap:     scheduler.NewFrameTap(config.FrameRingSize),
		hovered: -1,
		pressed: -1,
		bar: rect{
			x: config.ProgressX,
			y: config.ProgressY,
			w: config.WindowWidth - 2*config.ProgressX,
			h: config.ProgressHeight,
		},
		prevKey: map[ebiten.Key]bool{},
	}
}

// init runs on the first Update, once the monitor is known.
func (g *Game) init() error {
	s := g.opts.Settings
	mode, err := engine.ParseMode(s.Mode)
	if err != nil {
		return err
	}

	g.scale = ebiten.Monitor().DeviceScaleFactor()
	g.particles = canvas.NewParticles(config.CanvasSize, config.CanvasSize, g.scale)
	g.lyrics = canvas.NewLyrics(config.LyricsWidth, config.LyricsHeight)
	g.gpu = &kage.Surface{W: config.CanvasSize, H: config.CanvasSize}

	e, err := engine.New(engine.Config{
		Host:           g.host,
		Particles:      g.particles,
		GPU:            g.gpu,
		Text:           g.lyrics,
		Preset:         s.Preset,
		Mode:           mode,
		Timeline:       g.opts.Timeline,
		TrailAlpha:     s.TrailAlpha,
		ColorCycleRate: config.ColorCycleRate,
		LineHeight:     s.Lyrics.LineHeight,
		Smoothing:      s.Lyrics.Smoothing,
		OnFrame:        g.tap.Record,
		Logger:         g.opts.Logger,
	})
	if err != nil {
		return err
	}
	g.engine = e
	e.Subscribe(func(st engine.State) { g.state = st })
	g.buttons = g.layoutButtons()
	g.initDone = true
	return nil
}

func (g *Game) layoutButtons() []button {
	at := func(i int) rect {
		return rect{
			x: config.ButtonX + i*(config.ButtonWidth+config.ButtonGap),
			y: config.ButtonY,
			w: config.ButtonWidth,
			h: config.ButtonHeight,
		}
	}

	bs := []button{{
		r: at(0),
		label: func() string {
			if g.state.Running {
				return "Stop"
			}
			return "Start"
		},
		active: func() bool { return g.state.Running },
		action: g.toggle,
	}}
	for _, name := range motion.Names() {
		bs = append(bs, button{
			r:      at(len(bs)),
			label:  func() string { return name },
			active: func() bool { return g.state.Preset == name },
			action: func() error { return g.engine.SelectPreset(name) },
		})
	}
	bs = append(bs,
		button{
			r:      at(len(bs)),
			label:  func() string { return g.state.Mode.String() },
			active: func() bool { return g.state.Mode == engine.ModeShader },
			action: g.toggleMode,
		},
		button{
			r:      at(len(bs) + 1),
			label:  func() string { return "Lyrics..." },
			active: func() bool { return false },
			action: g.openLyricsDialog,
		},
	)
	return bs
}

func (g *Game) Update() error {
	if !g.initDone {
		if err := g.init(); err != nil {
			return err
		}
	}

	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	g.checkScale()

	mouseX, mouseY := ebiten.CursorPosition()
	g.updateButtons(mouseX, mouseY)
	g.updateProgressBar(mouseX, mouseY)

	if justPressed(ebiten.KeySpace) {
		g.report(g.toggle())
	}
	for i, k := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4} {
		if justPressed(k) {
			if names := motion.Names(); i < len(names) {
				g.report(g.engine.SelectPreset(names[i]))
			}
		}
	}
	if justPressed(ebiten.KeyM) {
		g.report(g.toggleMode())
	}
	if justPressed(ebiten.KeyArrowLeft) {
		g.report(g.engine.Seek(math.Max(0, g.engine.Cursor().Elapsed-config.SeekStep)))
	}
	if justPressed(ebiten.KeyArrowRight) {
		g.report(g.engine.Seek(g.engine.Cursor().Elapsed + config.SeekStep))
	}
	if justPressed(ebiten.KeyO) {
		g.report(g.openLyricsDialog())
	}
	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	g.host.Fire(time.Now())
	return nil
}

// checkScale follows the window onto a monitor with another scale factor.
func (g *Game) checkScale() {
	scale := ebiten.Monitor().DeviceScaleFactor()
	if scale == g.scale {
		return
	}
	g.log.Debug().Float64("from", g.scale).Float64("to", scale).Msg("device scale changed")
	g.scale = scale
	g.particles.Resize(config.CanvasSize, config.CanvasSize, scale)
	g.engine.Resize()
}

func (g *Game) updateButtons(mouseX, mouseY int) {
	g.hovered = -1
	for i, b := range g.buttons {
		if b.r.contains(mouseX, mouseY) {
			g.hovered = i
			break
		}
	}
	if g.hovered >= 0 && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.pressed = g.hovered
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.pressed >= 0 && g.pressed == g.hovered {
			g.report(g.buttons[g.pressed].action())
		}
		g.pressed = -1
	}
}

func (g *Game) updateProgressBar(mouseX, mouseY int) {
	g.barHovered = g.bar.contains(mouseX, mouseY)
	duration := g.state.Duration
	if duration <= 0 {
		return
	}

	if g.barHovered && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.barDragging = true
		g.seekTo(g.bar.fraction(mouseX), true)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.barDragging = false
	}
	if g.barDragging {
		// skip micro-seeks while dragging
		current := g.engine.Cursor().Elapsed / duration
		if p := g.bar.fraction(mouseX); math.Abs(p-current) > 0.01 {
			g.seekTo(p, false)
		}
	}
}

func (g *Game) seekTo(p float64, force bool) {
	if !force && time.Since(g.lastSeek) < 50*time.Millisecond {
		return
	}
	g.report(g.engine.Seek(clamp01(p) * g.state.Duration))
	g.lastSeek = time.Now()
}

func (g *Game) toggle() error {
	if g.state.Running {
		g.engine.Stop()
		return nil
	}
	return g.engine.Start()
}

func (g *Game) toggleMode() error {
	if g.state.Mode == engine.ModeShader {
		return g.engine.SetMode(engine.ModeParticles)
	}
	return g.engine.SetMode(engine.ModeShader)
}

func (g *Game) openLyricsDialog() error {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Lyrics"),
		zenity.FileFilters{{
			Name:     "Lyrics",
			Patterns: []string{"*.yaml", "*.yml"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}

	tl, err := timeline.Load(filename)
	if err != nil {
		return err
	}
	g.lyrics.Reset()
	if err := g.engine.LoadTimeline(tl); err != nil {
		return err
	}
	g.log.Info().Str("file", filename).Msg("lyrics loaded")
	return nil
}

// report keeps the last command error for the status line; nil clears it.
func (g *Game) report(err error) {
	if err != nil {
		g.log.Warn().Err(err).Msg("command failed")
	}
	g.lastErr = err
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 10, G: 12, B: 20, A: 255})
	if !g.initDone {
		return
	}

	for i := range g.buttons {
		g.drawButton(screen, i)
	}

	if g.state.Mode == engine.ModeShader {
		vector.DrawFilledRect(screen, config.CanvasX, config.CanvasY, config.CanvasSize, config.CanvasSize, color.Black, false)
		g.gpu.Draw(screen, config.CanvasX, config.CanvasY)
	} else {
		g.particles.Draw(screen, config.CanvasX, config.CanvasY)
	}
	g.lyrics.Draw(screen, config.LyricsX, config.LyricsY)

	g.drawProgressBar(screen)
	ebitenutil.DebugPrintAt(screen, g.status(), 12, 12)
}

func (g *Game) status() string {
	st := g.state
	status := "Stopped"
	if st.Running {
		status = "Running"
	}
	status = fmt.Sprintf("%s | %s | %s | %.1f fps | Space start/stop, 1-4 preset, M mode, arrows seek, O lyrics",
		status, st.Preset, st.Mode, g.tap.FPS())
	if !st.ShaderAvailable && st.Mode == engine.ModeShader {
		status += " | shader unavailable"
	}
	if st.Fault != "" {
		status += " | Fault: " + st.Fault
	} else if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	return status
}

func (g *Game) drawButton(screen *ebiten.Image, i int) {
	b := g.buttons[i]
	r := b.r

	var bgColor color.Color
	switch {
	case g.pressed == i:
		bgColor = color.RGBA{R: 60, G: 80, B: 120, A: 255}
	case b.active():
		bgColor = color.RGBA{R: 120, G: 100, B: 40, A: 255}
	case g.hovered == i:
		bgColor = color.RGBA{R: 80, G: 100, B: 140, A: 255}
	default:
		bgColor = color.RGBA{R: 100, G: 120, B: 160, A: 255}
	}
	if i == 0 && !g.state.CanStart {
		bgColor = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	}

	vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), bgColor, false)
	vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 2, color.RGBA{R: 150, G: 170, B: 200, A: 255}, false)

	text := b.label()
	textWidth := len(text) * 6 // debug font glyph width
	ebitenutil.DebugPrintAt(screen, text, r.x+(r.w-textWidth)/2, r.y+(r.h-16)/2)
}

func (g *Game) drawProgressBar(screen *ebiten.Image) {
	duration := g.state.Duration
	if duration <= 0 {
		return
	}
	r := g.bar
	progress := clamp01(g.engine.Cursor().Elapsed / duration)

	vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), color.RGBA{R: 25, G: 30, B: 40, A: 200}, false)
	vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 2, color.RGBA{R: 70, G: 80, B: 100, A: 255}, false)

	if progress > 0 {
		fill := hsvToRgb(g.engine.Elapsed()*36+progress*180, 0.8, 0.9, 180)
		vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(progress*float64(r.w)), float32(r.h), fill, false)
	}

	ix := float32(float64(r.x) + progress*float64(r.w))
	iy := float32(r.y + r.h/2)
	vector.DrawFilledCircle(screen, ix, iy, 8, color.White, false)
	vector.StrokeCircle(screen, ix, iy, 8, 2, color.RGBA{R: 100, G: 110, B: 130, A: 255}, false)

	current := formatSeconds(g.state.Displayed)
	total := formatSeconds(duration)
	ebitenutil.DebugPrintAt(screen, current, r.x, r.y+r.h+5)
	ebitenutil.DebugPrintAt(screen, total, r.x+r.w-len(total)*6, r.y+r.h+5)

	if !g.barHovered {
		return
	}
	mouseX, mouseY := ebiten.CursorPosition()
	tip := formatSeconds(g.bar.fraction(mouseX) * duration)
	tipW := len(tip)*6 + 10
	tipX := mouseX - tipW/2
	tipY := mouseY - 25
	if tipX < 0 {
		tipX = 0
	}
	if tipX+tipW > config.WindowWidth {
		tipX = config.WindowWidth - tipW
	}
	vector.DrawFilledRect(screen, float32(tipX), float32(tipY), float32(tipW), 20, color.RGBA{A: 200}, false)
	vector.StrokeRect(screen, float32(tipX), float32(tipY), float32(tipW), 20, 1, color.RGBA{R: 100, G: 110, B: 130, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, tip, tipX+5, tipY+5)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.WindowWidth, config.WindowHeight
}

// Close stops the engine and frees GPU resources.
func (g *Game) Close() {
	if g.engine != nil {
		g.engine.Dispose()
	}
}
