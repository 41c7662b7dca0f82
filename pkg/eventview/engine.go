package eventview

import (
	"bytes"
	"log"
	"runtime/debug"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gomono"
)

// Engine adapts a FrameComposer to ebiten's game loop.
type Engine struct {
	Width, Height int

	// FrameCaptureDir receives PNG captures requested with the P key.
	FrameCaptureDir string
	// FixedStep, when non-zero, replaces the measured wall delta so offline
	// rendering advances by exactly one frame per tick.
	FixedStep time.Duration
	// StopAt ends the game loop once playback passes this many
	// microseconds. Zero runs until the user quits.
	StopAt float64
	// Interactive enables keyboard and mouse handling.
	Interactive bool
	HideHUD     bool
	// OnFrame is called with every finished frame.
	OnFrame func(screen *ebiten.Image)

	composer   *FrameComposer
	canvas     *EbitenCanvas
	input      *inputPoller
	monoSource *text.GoTextFaceSource

	lastUpdate  time.Time
	captureNext bool
	finished    bool
}

func NewEngine(width, height int, composer *FrameComposer, canvas *EbitenCanvas) *Engine {
	m, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		log.Printf("HUD font unavailable: %v", err)
	}
	return &Engine{
		Width:       width,
		Height:      height,
		Interactive: true,
		composer:    composer,
		canvas:      canvas,
		input:       newInputPoller(nil),
		monoSource:  m,
	}
}

// StartMemoryWatcher periodically returns freed memory to the OS. Dataset
// loading leaves large transient allocations behind.
func (e *Engine) StartMemoryWatcher() {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		for range ticker.C {
			debug.FreeOSMemory()
		}
	}()
}

func (e *Engine) Update() error {
	if e.finished {
		return ebiten.Termination
	}
	now := time.Now()
	delta := e.FixedStep
	if delta == 0 {
		if !e.lastUpdate.IsZero() {
			delta = now.Sub(e.lastUpdate)
		}
		e.lastUpdate = now
	}

	if e.Interactive {
		capture, quit := e.input.poll(e.composer)
		if quit {
			return ebiten.Termination
		}
		e.captureNext = e.captureNext || capture
	}
	e.composer.Tick(delta)
	return nil
}

func (e *Engine) Draw(screen *ebiten.Image) {
	e.canvas.SetTarget(screen)
	e.composer.Render(e.canvas)
	st := e.composer.Status()
	e.drawStatus(screen, st)

	if e.captureNext {
		e.captureNext = false
		e.captureFrame(screen, time.Now())
	}
	if e.OnFrame != nil {
		e.OnFrame(screen)
	}
	if e.StopAt > 0 && st.Elapsed >= e.StopAt {
		e.finished = true
	}
}

func (e *Engine) Layout(w, h int) (int, int) { return e.Width, e.Height }
