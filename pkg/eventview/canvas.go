package eventview

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// BlendMode selects how a draw is combined with the target.
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendAlpha
	BlendAdditive
)

// Shading selects the event colouring contract of a draw.
type Shading int

const (
	// ShadingTimeDecay fades each point linearly with its age.
	ShadingTimeDecay Shading = iota
	// ShadingAgeColor draws opaque points whose colour shifts with age.
	ShadingAgeColor
)

// Palette holds the background and polarity colours.
type Palette struct {
	Background color.RGBA
	On         color.RGBA
	Off        color.RGBA
}

func DefaultPalette() Palette {
	return Palette{
		Background: color.RGBA{255, 255, 255, 255},
		On:         color.RGBA{255, 0, 0, 255},
		Off:        color.RGBA{0, 0, 255, 255},
	}
}

// EventDraw is one draw of a contiguous vertex range.
type EventDraw struct {
	Vertices   []RenderVertex
	MVP        mgl32.Mat4
	Shading    Shading
	Blend      BlendMode
	Now        float32 // relative playback time
	Window     float32 // window width in microseconds
	Alpha      float32
	DepthByAge bool
	Palette    Palette
	PointSize  float32
}

// FrameDraw draws a texture on the unit quad [-1,1]x[-1,1] at z=0.
type FrameDraw struct {
	Texture Texture
	MVP     mgl32.Mat4
	Alpha   float32
	Blend   BlendMode
}

// LineDraw draws independent segments.
type LineDraw struct {
	Segments [][2]mgl32.Vec3
	MVP      mgl32.Mat4
	Color    color.RGBA
}

// Canvas receives the draw calls of one rendered frame.
type Canvas interface {
	Size() (width, height int)
	Clear(c color.RGBA)
	DrawEvents(d EventDraw)
	DrawFrame(d FrameDraw)
	DrawLines(d LineDraw)
}

// EventPosition returns the world-space position of v for draw d.
func EventPosition(v RenderVertex, d EventDraw) mgl32.Vec3 {
	var z float32
	if d.DepthByAge && d.Window > 0 {
		z = 1 - 2*(d.Now-v.T)/d.Window
	}
	return mgl32.Vec3{v.X, v.Y, z}
}

// ProjectPoint maps a world point through mvp to screen pixels. Points
// behind the camera or outside the depth range are rejected.
func ProjectPoint(mvp mgl32.Mat4, p mgl32.Vec3, width, height int) (x, y float32, ok bool) {
	clip := mvp.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / w)
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, false
	}
	x = (ndc.X() + 1) / 2 * float32(width)
	y = (1 - ndc.Y()) / 2 * float32(height)
	return x, y, true
}

// unitCube lists the twelve edges of [-1,1]^3.
var unitCube = func() [][2]mgl32.Vec3 {
	corners := [8]mgl32.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	segs := make([][2]mgl32.Vec3, len(edges))
	for i, e := range edges {
		segs[i] = [2]mgl32.Vec3{corners[e[0]], corners[e[1]]}
	}
	return segs
}()
