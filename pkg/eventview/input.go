package eventview

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	repeatDelay    = 24 // ticks before a held key starts repeating
	repeatInterval = 4
)

// KeyBinding maps a key to an action. Repeat bindings fire again while the
// key is held.
type KeyBinding struct {
	Key    ebiten.Key
	Action Action
	Repeat bool
}

// DefaultKeyBindings is the viewer keyboard layout.
var DefaultKeyBindings = []KeyBinding{
	{ebiten.KeySpace, ActionTogglePause, false},
	{ebiten.KeyM, ActionCycleDisplayMode, false},
	{ebiten.KeyRight, ActionSpeedUp, true},
	{ebiten.KeyLeft, ActionSlowDown, true},
	{ebiten.KeyPeriod, ActionWidenWindow, true},
	{ebiten.KeyComma, ActionNarrowWindow, true},
	{ebiten.KeyBracketRight, ActionRGBAlphaUp, true},
	{ebiten.KeyBracketLeft, ActionRGBAlphaDown, true},
	{ebiten.KeyEqual, ActionEventAlphaUp, true},
	{ebiten.KeyMinus, ActionEventAlphaDown, true},
	{ebiten.KeyUp, ActionDepthUp, true},
	{ebiten.KeyDown, ActionDepthDown, true},
	{ebiten.KeyB, ActionToggleBoundingBox, false},
	{ebiten.KeyR, ActionRestart, false},
	{ebiten.KeyC, ActionResetCamera, false},
}

// shouldFire reports whether a key held for d ticks triggers this tick.
func shouldFire(d int, repeat bool) bool {
	if d == 1 {
		return true
	}
	return repeat && d >= repeatDelay && (d-repeatDelay)%repeatInterval == 0
}

// inputPoller turns raw ebiten input into InputSink calls.
type inputPoller struct {
	bindings []KeyBinding
	dragging bool
	lastX    int
	lastY    int
}

func newInputPoller(bindings []KeyBinding) *inputPoller {
	if bindings == nil {
		bindings = DefaultKeyBindings
	}
	return &inputPoller{bindings: bindings}
}

// poll forwards this tick's input to sink. It reports whether a capture was
// requested and whether the user asked to quit.
func (p *inputPoller) poll(sink InputSink) (capture, quit bool) {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return false, true
	}
	capture = inpututil.IsKeyJustPressed(ebiten.KeyP)
	for _, b := range p.bindings {
		if shouldFire(inpututil.KeyPressDuration(b.Key), b.Repeat) {
			sink.OnAction(b.Action)
		}
	}

	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if p.dragging && (x != p.lastX || y != p.lastY) {
			sink.OnDrag(float32(x-p.lastX), float32(y-p.lastY))
		}
		p.dragging = true
	} else {
		p.dragging = false
	}
	p.lastX, p.lastY = x, y

	if _, wy := ebiten.Wheel(); wy != 0 {
		sink.OnScroll(float32(wy))
	}
	return capture, false
}
