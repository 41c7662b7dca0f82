package eventview

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera maps pointer input to view and projection transforms.
type Camera interface {
	View() mgl32.Mat4
	Projection(aspect float32) mgl32.Mat4
	Drag(dx, dy float32, screenW, screenH int)
	Scroll(delta float32)
	Reset()
}

const (
	MinZoom      = 0.05
	MaxZoom      = 5.0
	MinRadius    = 1.0
	MaxRadius    = 20.0
	MaxElevation = 89.0

	zoomSpeed        = 0.1
	orbitSensitivity = 0.2
	radiusSpeed      = 0.2
)

// PanZoomCamera is the orthographic 2D camera.
type PanZoomCamera struct {
	Position mgl32.Vec2
	Zoom     float32
}

func NewPanZoomCamera() *PanZoomCamera {
	c := &PanZoomCamera{}
	c.Reset()
	return c
}

func (c *PanZoomCamera) Reset() {
	c.Position = mgl32.Vec2{0, 0}
	c.Zoom = 1
}

func (c *PanZoomCamera) View() mgl32.Mat4 {
	return mgl32.Translate3D(-c.Position.X(), -c.Position.Y(), 0)
}

func (c *PanZoomCamera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Ortho(-aspect*c.Zoom, aspect*c.Zoom, -c.Zoom, c.Zoom, -1, 1)
}

// Drag pans by the pointer delta. The pan distance scales with zoom so a
// drag covers the same screen distance at any zoom level.
func (c *PanZoomCamera) Drag(dx, dy float32, _, screenH int) {
	if screenH <= 0 {
		return
	}
	k := 2 * c.Zoom / float32(screenH)
	c.Position = c.Position.Add(mgl32.Vec2{-dx * k, dy * k})
}

func (c *PanZoomCamera) Scroll(delta float32) {
	c.Zoom = mgl32.Clamp(c.Zoom-delta*zoomSpeed*c.Zoom, MinZoom, MaxZoom)
}

// OrbitCamera circles a fixed target at the origin.
type OrbitCamera struct {
	Azimuth   float32 // degrees
	Elevation float32 // degrees
	Radius    float32

	position mgl32.Vec3
}

func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{}
	c.Reset()
	return c
}

func (c *OrbitCamera) Reset() {
	c.Azimuth, c.Elevation, c.Radius = -135, -30, 4
	c.update()
}

func (c *OrbitCamera) Position() mgl32.Vec3 { return c.position }

func (c *OrbitCamera) update() {
	az := float64(mgl32.DegToRad(c.Azimuth))
	el := float64(mgl32.DegToRad(c.Elevation))
	r := float64(c.Radius)
	c.position = mgl32.Vec3{
		float32(r * math.Cos(el) * math.Cos(az)),
		float32(r * math.Sin(el)),
		float32(r * math.Cos(el) * math.Sin(az)),
	}
}

func (c *OrbitCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
}

func (c *OrbitCamera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.1, 100)
}

// Drag orbits around the target. Elevation stays off the poles.
func (c *OrbitCamera) Drag(dx, dy float32, _, _ int) {
	c.Azimuth += dx * orbitSensitivity
	c.Elevation = mgl32.Clamp(c.Elevation+dy*orbitSensitivity, -MaxElevation, MaxElevation)
	c.update()
}

func (c *OrbitCamera) Scroll(delta float32) {
	c.Radius = mgl32.Clamp(c.Radius-delta*radiusSpeed, MinRadius, MaxRadius)
	c.update()
}
