package eventview

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// FrameLayer is one frame chosen for compositing with its model transform.
type FrameLayer struct {
	Frame Frame
	Model mgl32.Mat4
}

// ProjectionStrategy holds everything that differs between the 2D
// accumulation view and the 3D orbit view.
type ProjectionStrategy interface {
	Name() string
	NewCamera() Camera
	DefaultState() ViewerState
	Model(state *ViewerState) mgl32.Mat4
	EventStyle() (shading Shading, blend BlendMode, depthByAge bool)
	// FrameLayers appends the frames to composite at absolute time now.
	FrameLayers(dst []FrameLayer, frames *FrameIndex, now float64, state *ViewerState) []FrameLayer
	// FramesFirst reports whether frames are drawn underneath the events.
	FramesFirst() bool
	HasBoundingBox() bool
}

// StrategyByName resolves "2d" and "3d".
func StrategyByName(name string) (ProjectionStrategy, error) {
	switch name {
	case "2d", "2D", "planar":
		return Planar{}, nil
	case "3d", "3D", "volume":
		return Volumetric{}, nil
	}
	return nil, fmt.Errorf("unknown viewer mode %q", name)
}

// Planar is the orthographic time-accumulation view: additive glow that
// decays over the window on top of the single latest frame.
type Planar struct{}

func (Planar) Name() string { return "2d" }

func (Planar) NewCamera() Camera { return NewPanZoomCamera() }

func (Planar) DefaultState() ViewerState { return DefaultViewerState2D() }

func (Planar) Model(*ViewerState) mgl32.Mat4 { return mgl32.Ident4() }

func (Planar) EventStyle() (Shading, BlendMode, bool) {
	return ShadingTimeDecay, BlendAdditive, false
}

func (Planar) FrameLayers(dst []FrameLayer, frames *FrameIndex, now float64, _ *ViewerState) []FrameLayer {
	if f, ok := frames.LatestAt(now); ok {
		dst = append(dst, FrameLayer{Frame: f, Model: mgl32.Ident4()})
	}
	return dst
}

func (Planar) FramesFirst() bool { return true }

func (Planar) HasBoundingBox() bool { return false }

// Volumetric is the orbit view: time is encoded as depth, events are
// discrete points coloured by age and recent frames are stacked along z.
type Volumetric struct{}

func (Volumetric) Name() string { return "3d" }

func (Volumetric) NewCamera() Camera { return NewOrbitCamera() }

func (Volumetric) DefaultState() ViewerState { return DefaultViewerState3D() }

func (Volumetric) Model(state *ViewerState) mgl32.Mat4 {
	return mgl32.Scale3D(1, 1, float32(state.DepthScale))
}

func (Volumetric) EventStyle() (Shading, BlendMode, bool) {
	return ShadingAgeColor, BlendOpaque, true
}

// FrameLayers places every frame with age in [0, window) at
// z = 1 - 2*age/window, newest in front.
func (v Volumetric) FrameLayers(dst []FrameLayer, frames *FrameIndex, now float64, state *ViewerState) []FrameLayer {
	window := state.TimeWindowUS
	first, count := frames.Recent(now, window)
	model := v.Model(state)
	for i := first; i < first+count; i++ {
		f := frames.Frame(i)
		age := now - float64(f.Timestamp)
		z := float32(1 - 2*age/window)
		dst = append(dst, FrameLayer{Frame: f, Model: model.Mul4(mgl32.Translate3D(0, 0, z))})
	}
	return dst
}

func (Volumetric) FramesFirst() bool { return false }

func (Volumetric) HasBoundingBox() bool { return true }

// boundingBoxColor contrasts with the default white background.
var boundingBoxColor = color.RGBA{60, 60, 60, 255}
