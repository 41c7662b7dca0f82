package eventview

import (
	"fmt"
	"image/color"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	hudBackground = color.RGBA{0, 0, 0, 140}
	hudBorder     = color.RGBA{36, 42, 53, 255}
	hudAccent     = color.RGBA{255, 80, 80, 255}
	hudProgress   = color.RGBA{0, 191, 255, 255}
)

// hudLines formats the overlay text for a status snapshot.
func hudLines(st Status) []string {
	lines := []string{
		fmt.Sprintf("%s  %s", st.Strategy, st.Mode),
		fmt.Sprintf("t %.3fs / %.3fs", st.Elapsed/1e6, st.Duration/1e6),
		fmt.Sprintf("speed %.2fx  window %.1fms", st.Speed, st.WindowUS/1e3),
		fmt.Sprintf("events %s  frames %d", humanize.Comma(int64(st.EventsInWindow)), st.FramesDrawn),
	}
	if st.Paused {
		lines[0] += "  PAUSED"
	}
	return lines
}

// progress returns elapsed/duration clamped to [0, 1].
func (st Status) progress() float64 {
	if st.Duration <= 0 {
		return 0
	}
	return min(max(st.Elapsed/st.Duration, 0), 1)
}

func (e *Engine) drawStatus(screen *ebiten.Image, st Status) {
	if e.HideHUD || e.monoSource == nil {
		return
	}
	margin, fontSize := 16.0, 14.0
	if e.Width > 2000 {
		margin, fontSize = 32.0, 28.0
	}
	face := &text.GoTextFace{Source: e.monoSource, Size: fontSize}
	lines := hudLines(st)

	lineH := fontSize * 1.4
	boxW := 0.0
	for _, l := range lines {
		w, _ := text.Measure(l, face, 0)
		boxW = max(boxW, w)
	}
	boxW += 20
	boxH := lineH*float64(len(lines)) + 20

	vector.DrawFilledRect(screen, float32(margin), float32(margin), float32(boxW), float32(boxH), hudBackground, false)
	vector.StrokeRect(screen, float32(margin), float32(margin), float32(boxW), float32(boxH), 1, hudBorder, false)
	if st.Paused {
		vector.DrawFilledRect(screen, float32(margin), float32(margin), 4, float32(boxH), hudAccent, false)
	}

	op := &text.DrawOptions{}
	for i, l := range lines {
		op.GeoM.Reset()
		op.GeoM.Translate(margin+10, margin+10+float64(i)*lineH)
		op.ColorScale.Reset()
		op.ColorScale.Scale(1, 1, 1, 0.9)
		text.Draw(screen, l, face, op)
	}

	barY := float32(float64(e.Height) - margin/2 - 4)
	barW := float32(float64(e.Width) - 2*margin)
	vector.DrawFilledRect(screen, float32(margin), barY, barW, 4, hudBackground, false)
	vector.DrawFilledRect(screen, float32(margin), barY, barW*float32(st.progress()), 4, hudProgress, false)
}
