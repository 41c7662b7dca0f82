package eventview

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// maxBatchPoints keeps every batch addressable with uint16 indices.
const maxBatchPoints = 65535 / 4

var quadIndices = []uint16{0, 1, 2, 1, 2, 3}

// EbitenCanvas draws composer output onto an ebiten image and acts as the
// Interop layer for the shared event buffer.
type EbitenCanvas struct {
	target   *ebiten.Image
	decay    *ebiten.Shader
	ageColor *ebiten.Shader

	registered bool
	released   bool
	vertices   []ebiten.Vertex
	indices    []uint16
	uniforms   map[string]any
	quad       [4]ebiten.Vertex
}

// NewEbitenCanvas compiles the event shaders. A compile failure is fatal
// to the viewer.
func NewEbitenCanvas() (*EbitenCanvas, error) {
	decay, err := ebiten.NewShader(decayShaderSrc)
	if err != nil {
		return nil, fmt.Errorf("%w: compile decay shader: %v", ErrGPUInterop, err)
	}
	ageColor, err := ebiten.NewShader(ageColorShaderSrc)
	if err != nil {
		decay.Deallocate()
		return nil, fmt.Errorf("%w: compile age colour shader: %v", ErrGPUInterop, err)
	}
	return &EbitenCanvas{
		decay:    decay,
		ageColor: ageColor,
		uniforms: make(map[string]any, 4),
	}, nil
}

// SetTarget selects the image the next draw calls go to.
func (c *EbitenCanvas) SetTarget(img *ebiten.Image) { c.target = img }

// Register allocates the staging vertices the draw path streams buf
// through. The buffer itself is read in place on every draw.
func (c *EbitenCanvas) Register(buf []RenderVertex) error {
	if c.registered || c.released {
		return errors.New("canvas already holds a registration")
	}
	if len(buf) == 0 {
		return errors.New("empty vertex buffer")
	}
	points := min(len(buf), maxBatchPoints)
	c.vertices = make([]ebiten.Vertex, 0, points*4)
	c.indices = make([]uint16, points*6)
	for i := 0; i < points; i++ {
		for j, q := range quadIndices {
			c.indices[i*6+j] = uint16(i*4) + q
		}
	}
	c.registered = true
	return nil
}

func (c *EbitenCanvas) Unregister() error {
	if !c.registered {
		return errors.New("canvas holds no registration")
	}
	c.vertices, c.indices = nil, nil
	c.registered, c.released = false, true
	return nil
}

// Close releases the compiled shaders.
func (c *EbitenCanvas) Close() {
	c.decay.Deallocate()
	c.ageColor.Deallocate()
}

func (c *EbitenCanvas) Size() (int, int) {
	if c.target == nil {
		return 0, 0
	}
	b := c.target.Bounds()
	return b.Dx(), b.Dy()
}

func (c *EbitenCanvas) Clear(col color.RGBA) {
	if c.target != nil {
		c.target.Fill(col)
	}
}

func toEbitenBlend(b BlendMode) ebiten.Blend {
	if b == BlendAdditive {
		return ebiten.BlendLighter
	}
	return ebiten.BlendSourceOver
}

func (c *EbitenCanvas) DrawEvents(d EventDraw) {
	if !c.registered || c.target == nil {
		return
	}
	shader := c.decay
	if d.Shading == ShadingAgeColor {
		shader = c.ageColor
		bg := d.Palette.Background
		c.uniforms["Faded"] = []float32{float32(bg.R) / 255, float32(bg.G) / 255, float32(bg.B) / 255}
	}
	c.uniforms["Time"] = d.Now
	c.uniforms["MaxAge"] = d.Window
	c.uniforms["Alpha"] = d.Alpha
	op := &ebiten.DrawTrianglesShaderOptions{
		Uniforms: c.uniforms,
		Blend:    toEbitenBlend(d.Blend),
	}

	w, h := c.Size()
	half := d.PointSize / 2
	on, off := colorVec(d.Palette.On), colorVec(d.Palette.Off)
	vs := c.vertices[:0]
	for _, v := range d.Vertices {
		x, y, ok := ProjectPoint(d.MVP, EventPosition(v, d), w, h)
		if !ok {
			continue
		}
		col := off
		if v.Polarity != 0 {
			col = on
		}
		vs = appendPoint(vs, x, y, half, col, v.T)
		if len(vs) == cap(vs) {
			c.target.DrawTrianglesShader(vs, c.indices[:len(vs)/4*6], shader, op)
			vs = vs[:0]
		}
	}
	if len(vs) > 0 {
		c.target.DrawTrianglesShader(vs, c.indices[:len(vs)/4*6], shader, op)
	}
	c.vertices = vs[:0]
}

func colorVec(c color.RGBA) [3]float32 {
	return [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

func appendPoint(vs []ebiten.Vertex, x, y, half float32, col [3]float32, t float32) []ebiten.Vertex {
	for _, corner := range [4][2]float32{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		vs = append(vs, ebiten.Vertex{
			DstX:    x + corner[0]*half,
			DstY:    y + corner[1]*half,
			ColorR:  col[0],
			ColorG:  col[1],
			ColorB:  col[2],
			ColorA:  1,
			Custom0: t,
		})
	}
	return vs
}

func (c *EbitenCanvas) DrawFrame(d FrameDraw) {
	img, ok := d.Texture.(*ebiten.Image)
	if !ok || c.target == nil {
		return
	}
	w, h := c.Size()
	b := img.Bounds()
	corners := [4]struct{ wx, wy, sx, sy float32 }{
		{-1, 1, float32(b.Min.X), float32(b.Min.Y)},
		{1, 1, float32(b.Max.X), float32(b.Min.Y)},
		{-1, -1, float32(b.Min.X), float32(b.Max.Y)},
		{1, -1, float32(b.Max.X), float32(b.Max.Y)},
	}
	for i, k := range corners {
		x, y, ok := ProjectPoint(d.MVP, mgl32.Vec3{k.wx, k.wy, 0}, w, h)
		if !ok {
			return
		}
		c.quad[i] = ebiten.Vertex{
			DstX: x, DstY: y,
			SrcX: k.sx, SrcY: k.sy,
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: d.Alpha,
		}
	}
	c.target.DrawTriangles(c.quad[:], quadIndices, img, &ebiten.DrawTrianglesOptions{
		Filter: ebiten.FilterLinear,
		Blend:  toEbitenBlend(d.Blend),
	})
}

func (c *EbitenCanvas) DrawLines(d LineDraw) {
	if c.target == nil {
		return
	}
	w, h := c.Size()
	for _, s := range d.Segments {
		x0, y0, ok0 := ProjectPoint(d.MVP, s[0], w, h)
		x1, y1, ok1 := ProjectPoint(d.MVP, s[1], w, h)
		if !ok0 || !ok1 {
			continue
		}
		vector.StrokeLine(c.target, x0, y0, x1, y1, 1, d.Color, true)
	}
}
