package renderer

import (
	"mini-terrain/internal/config"
	"mini-terrain/internal/gpu"
	"mini-terrain/internal/graphics"
	"mini-terrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// View supplies the matrices a frame is rendered with.
type View interface {
	ProjectionMatrix() mgl32.Mat4
	ViewMatrix() mgl32.Mat4
}

// Params is everything a pass pushes to its program besides the matrices.
type Params struct {
	Controls config.Controls
	Pan      mgl32.Vec2
}

// Renderer owns the framebuffer state: clear color, viewport, polygon mode.
type Renderer struct {
	dev           gpu.Device
	width, height int
	wireframe     bool
}

// New configures dev for depth-tested rendering.
func New(dev gpu.Device) *Renderer {
	dev.SetDepthTest(true)
	return &Renderer{dev: dev}
}

// SetClearColor sets the color Clear fills the framebuffer with.
func (r *Renderer) SetClearColor(red, green, blue, alpha float32) {
	r.dev.ClearColor(red, green, blue, alpha)
}

// SetSize resizes the viewport to cover a width x height framebuffer.
func (r *Renderer) SetSize(width, height int) {
	r.width, r.height = width, height
	r.dev.Viewport(0, 0, int32(width), int32(height))
}

// Size returns the last size passed to SetSize.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Clear clears color and depth.
func (r *Renderer) Clear() { r.dev.Clear() }

// SetWireframe switches between filled and line polygon rasterization.
func (r *Renderer) SetWireframe(on bool) {
	if on == r.wireframe {
		return
	}
	r.wireframe = on
	r.dev.SetWireframe(on)
}

func (r *Renderer) Wireframe() bool { return r.wireframe }

// Render pushes the identity model, projection*view and every parameter to
// prog, then draws each drawable in order. Parameters the program does not
// declare are skipped by the program itself.
func (r *Renderer) Render(view View, prog *graphics.Program, params Params, drawables ...graphics.Drawable) {
	defer profiling.Track("renderer.render")()

	prog.SetModelMatrix(mgl32.Ident4())
	prog.SetViewProjMatrix(view.ProjectionMatrix().Mul4(view.ViewMatrix()))

	c := params.Controls
	prog.SetOctave(c.Octave)
	prog.SetFrequency(c.Frequency)
	prog.SetLacunarity(c.Lacunarity)
	prog.SetAmplitude(c.Amplitude)
	prog.SetGain(c.Gain)
	prog.SetExponent(c.Exponent)
	prog.SetMultiplier(c.Multiply)
	prog.SetLayer(c.Layer)
	prog.SetCellSize(c.CellSize)
	if i, ok := c.Terrain.Index(); ok {
		prog.SetTerrainVariant(i)
	}
	prog.SetPanOffset(params.Pan)

	for _, d := range drawables {
		prog.Draw(d)
	}
}
