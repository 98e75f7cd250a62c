package scene

import (
	"context"
	"errors"
	"sync/atomic"

	"mini-terrain/internal/config"
	"mini-terrain/internal/graphics"
	"mini-terrain/internal/graphics/renderer"
	"mini-terrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ErrNotLoaded is returned by Tick and Run before LoadScene.
var ErrNotLoaded = errors.New("scene not loaded")

// State is the lifecycle stage of a Loop.
type State int

const (
	Uninitialized State = iota
	SceneLoaded
	Running
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case SceneLoaded:
		return "scene loaded"
	case Running:
		return "running"
	}
	return "unknown"
}

// Scene is the drawable set of one frame: the displaced terrain plane and
// the overlay drawn after it with the flat program.
type Scene struct {
	Terrain graphics.Drawable
	Overlay graphics.Drawable
}

// Release frees both drawables.
func (s Scene) Release() {
	if s.Terrain != nil {
		s.Terrain.Release()
	}
	if s.Overlay != nil {
		s.Overlay.Release()
	}
}

// Builder constructs a fresh Scene.
type Builder func() Scene

// Surface reports the framebuffer size in pixels. *glfw.Window satisfies it.
type Surface interface {
	GetFramebufferSize() (width, height int)
}

// ControlSource supplies the operator controls. *config.Store satisfies it.
type ControlSource interface {
	Controls() config.Controls
}

// Loop runs the per-frame orchestration: camera, viewport, pan, program
// selection and the two render passes.
type Loop struct {
	renderer *renderer.Renderer
	camera   *graphics.Camera
	surface  Surface
	controls ControlSource
	programs *Programs
	build    Builder
	log      *zap.Logger

	state   State
	scene   Scene
	held    Held
	pan     mgl32.Vec2
	active  *graphics.Program
	terrain config.Terrain

	limiter *Limiter
	stopped atomic.Bool
}

// NewLoop wires a loop. It starts Uninitialized; call LoadScene before
// ticking.
func NewLoop(r *renderer.Renderer, cam *graphics.Camera, surface Surface, controls ControlSource, programs *Programs, build Builder, log *zap.Logger) *Loop {
	return &Loop{
		renderer: r,
		camera:   cam,
		surface:  surface,
		controls: controls,
		programs: programs,
		build:    build,
		log:      log,
		limiter:  NewLimiter(0),
	}
}

// SetLimiter replaces the tick pacing used by Run.
func (l *Loop) SetLimiter(lim *Limiter) { l.limiter = lim }

// LoadScene builds a fresh scene, releasing any previous one, and resets
// the pan offset and key flags. initial is the program the terrain pass
// uses until a known variant is selected.
func (l *Loop) LoadScene(initial *graphics.Program) {
	l.scene.Release()
	l.scene = l.build()
	l.pan = mgl32.Vec2{}
	l.held = Held{}
	l.active = initial
	l.terrain = ""
	l.state = SceneLoaded
	l.log.Debug("scene loaded")
}

// SetKeyHeld records whether the key for dir is down. The next tick sees
// the latest value.
func (l *Loop) SetKeyHeld(dir Direction, held bool) {
	if dir < 0 || dir >= directionCount {
		return
	}
	l.held[dir] = held
}

// Resize applies a new framebuffer size to the renderer and the camera
// projection right away, so the next frame uses it even if no tick runs
// in between.
func (l *Loop) Resize(width, height int) {
	l.renderer.SetSize(width, height)
	if width > 0 && height > 0 {
		l.camera.SetAspectRatio(float32(width) / float32(height))
	}
	l.camera.UpdateProjectionMatrix()
}

// Tick renders one frame.
func (l *Loop) Tick() error {
	if l.state == Uninitialized {
		return ErrNotLoaded
	}
	l.state = Running
	defer profiling.Track("scene.tick")()

	l.camera.Update()
	l.renderer.SetSize(l.surface.GetFramebufferSize())
	l.renderer.Clear()

	l.pan = l.pan.Add(PanVelocity(l.held))
	l.active.SetPanOffset(l.pan)

	c := l.controls.Controls()
	l.selectProgram(c.Terrain)

	params := renderer.Params{Controls: c, Pan: l.pan}
	func() {
		defer profiling.Track("scene.terrainPass")()
		l.renderer.Render(l.camera, l.active, params, l.scene.Terrain)
	}()
	func() {
		defer profiling.Track("scene.overlayPass")()
		l.renderer.Render(l.camera, l.programs.Flat, params, l.scene.Overlay)
	}()
	return nil
}

func (l *Loop) selectProgram(t config.Terrain) {
	prog, ok := l.programs.Select(t)
	if ok {
		l.active = prog
	}
	if t == l.terrain {
		return
	}
	l.terrain = t
	if ok {
		l.log.Debug("terrain variant selected", zap.String("terrain", string(t)))
	} else {
		l.log.Debug("unknown terrain variant, keeping current program", zap.String("terrain", string(t)))
	}
}

// Run ticks until Stop is called, ctx is done, or frame returns false.
// frame runs after every tick on the same goroutine; the next tick starts
// only after it returns and the limiter allows.
func (l *Loop) Run(ctx context.Context, frame func() bool) error {
	if l.state == Uninitialized {
		return ErrNotLoaded
	}
	l.stopped.Store(false)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.stopped.Load() {
			return nil
		}
		profiling.ResetFrame()
		if err := l.Tick(); err != nil {
			return err
		}
		if frame != nil && !frame() {
			return nil
		}
		l.limiter.Wait()
	}
}

// Stop makes Run return before its next tick. Safe from any goroutine.
func (l *Loop) Stop() { l.stopped.Store(true) }

// Release frees the scene's drawables.
func (l *Loop) Release() {
	l.scene.Release()
	l.scene = Scene{}
}

func (l *Loop) State() State                 { return l.state }
func (l *Loop) Pan() mgl32.Vec2              { return l.pan }
func (l *Loop) Held() Held                   { return l.held }
func (l *Loop) Active() *graphics.Program    { return l.active }
func (l *Loop) Camera() *graphics.Camera     { return l.camera }
func (l *Loop) Renderer() *renderer.Renderer { return l.renderer }
