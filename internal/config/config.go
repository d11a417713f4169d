package config

const (
	WindowWidth  = 1024
	WindowHeight = 600

	// Frame tap ring size, in frames
	FrameRingSize = 120

	// Button dimensions
	ButtonWidth  = 96
	ButtonHeight = 32
	ButtonGap    = 8
	ButtonX      = 20
	ButtonY      = 40

	// Animation canvas (logical pixels)
	CanvasX    = 20
	CanvasY    = 84
	CanvasSize = 400

	// Lyrics viewport (logical pixels)
	LyricsX      = 440
	LyricsY      = 84
	LyricsWidth  = 564
	LyricsHeight = 400

	// Progress bar
	ProgressX      = 20
	ProgressY      = 512
	ProgressHeight = 24

	// Visualization parameters
	ColorCycleRate  = 0.5
	TrailAlpha      = 0.05
	LineHeight      = 80
	ScrollSmoothing = 0.2
	SeekStep        = 5.0
)
