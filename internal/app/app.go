package app

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"time"

	"mini-terrain/internal/config"
	"mini-terrain/internal/gpu"
	"mini-terrain/internal/graphics"
	"mini-terrain/internal/graphics/geometry"
	"mini-terrain/internal/graphics/renderer"
	"mini-terrain/internal/input"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/scene"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const (
	orbitDegreesPerPixel = 0.3
	zoomPerScrollStep    = 0.9
	slowFrame            = 16 * time.Millisecond
)

var panBindings = [...]struct {
	action input.Action
	dir    scene.Direction
}{
	{input.ActionPanUp, scene.PanUp},
	{input.ActionPanDown, scene.PanDown},
	{input.ActionPanLeft, scene.PanLeft},
	{input.ActionPanRight, scene.PanRight},
}

// App connects a glfw window to the frame loop: it forwards input, applies
// hotkeys to the control store, and presents each frame.
type App struct {
	window       *glfw.Window
	inputManager *input.InputManager
	store        *config.Store
	programs     *scene.Programs
	loop         *scene.Loop
	log          *zap.Logger

	fps *profiling.FPSMeter
}

// New builds the programs from shaders, the scene and the loop, and loads
// the scene with the program matching the stored terrain variant.
func New(window *glfw.Window, cfg config.Config, store *config.Store, dev gpu.Device, shaders fs.FS, log *zap.Logger) (*App, error) {
	programs, err := scene.LoadPrograms(graphics.NewContext(dev), shaders)
	if err != nil {
		return nil, err
	}

	r := renderer.New(dev)
	cc := cfg.ClearColor
	r.SetClearColor(cc[0], cc[1], cc[2], cc[3])

	cam := graphics.NewCamera(mgl32.Vec3(cfg.Camera.Eye), mgl32.Vec3(cfg.Camera.Target))
	build := func() scene.Scene {
		size := cfg.Plane.Size
		return scene.Scene{
			Terrain: geometry.NewPlane(dev, mgl32.Vec3{}, mgl32.Vec2{size, size}, cfg.Plane.Subdivisions),
			Overlay: geometry.NewSquare(dev, mgl32.Vec3{}),
		}
	}

	loop := scene.NewLoop(r, cam, window, store, programs, build, log)
	loop.SetLimiter(scene.NewLimiter(cfg.FPSLimit))

	a := &App{
		window:       window,
		inputManager: input.NewInputManager(),
		store:        store,
		programs:     programs,
		loop:         loop,
		log:          log,
		fps:          profiling.NewFPSMeter(),
	}
	a.inputManager.Install(window, loop.Resize)

	loop.Resize(window.GetFramebufferSize())
	loop.LoadScene(a.initialProgram())
	return a, nil
}

func (a *App) initialProgram() *graphics.Program {
	if p, ok := a.programs.Select(a.store.Controls().Terrain); ok {
		return p
	}
	p, _ := a.programs.Select(config.Terrains[0])
	return p
}

// Run drives the loop until the window closes, Esc is pressed, or ctx is
// done.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("viewer running",
		zap.Any("controls", a.store.Controls()),
		zap.String("hotkeys", "WASD pan, R reload, T terrain, L layer, [ ] octave, F wireframe, V profiling, Esc quit"))
	err := a.loop.Run(ctx, a.frame)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases scene and program GPU objects.
func (a *App) Close() {
	a.loop.Release()
	a.programs.Dispose()
}

func (a *App) frame() bool {
	func() { defer profiling.Track("glfw.SwapBuffers")(); a.window.SwapBuffers() }()
	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	a.handleInputActions()
	a.inputManager.PostUpdate()
	a.report()

	return !a.window.ShouldClose()
}

func (a *App) handleInputActions() {
	im := a.inputManager

	for _, b := range panBindings {
		a.loop.SetKeyHeld(b.dir, im.IsActive(b.action))
	}

	if dx, dy := im.Drag(); dx != 0 || dy != 0 {
		a.loop.Camera().Orbit(float32(dx)*orbitDegreesPerPixel, float32(dy)*orbitDegreesPerPixel)
	}
	if s := im.Scroll(); s != 0 {
		a.loop.Camera().Zoom(float32(math.Pow(zoomPerScrollStep, s)))
	}

	if im.JustPressed(input.ActionQuit) {
		a.window.SetShouldClose(true)
	}
	if im.JustPressed(input.ActionReloadScene) {
		a.loop.LoadScene(a.initialProgram())
		a.log.Info("scene reloaded")
	}
	if im.JustPressed(input.ActionToggleWireframe) {
		on := a.store.ToggleWireframe()
		a.loop.Renderer().SetWireframe(on)
		a.log.Info("wireframe toggled", zap.Bool("on", on))
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		a.log.Info("profiling toggled", zap.Bool("on", a.store.ToggleProfiling()))
	}

	var edits []func(*config.Controls)
	if im.JustPressed(input.ActionNextTerrain) {
		edits = append(edits, func(c *config.Controls) { c.Terrain = c.Terrain.Next() })
	}
	if im.JustPressed(input.ActionNextLayer) {
		edits = append(edits, (*config.Controls).CycleLayer)
	}
	if im.JustPressed(input.ActionOctaveDown) {
		edits = append(edits, func(c *config.Controls) { c.StepOctave(-1) })
	}
	if im.JustPressed(input.ActionOctaveUp) {
		edits = append(edits, func(c *config.Controls) { c.StepOctave(1) })
	}
	for _, edit := range edits {
		if err := a.store.Update(edit); err != nil {
			a.log.Warn("control change rejected", zap.Error(err))
		}
	}
	if len(edits) > 0 {
		c := a.store.Controls()
		a.log.Info("controls changed",
			zap.String("terrain", string(c.Terrain)),
			zap.Int("layer", c.Layer),
			zap.Int("octave", c.Octave))
	}
}

func (a *App) report() {
	if fps, ok := a.fps.Frame(time.Now()); ok {
		a.log.Debug("fps", zap.Float64("fps", math.Round(fps*10)/10))
	}
	busy := profiling.SumWithPrefix("scene.tick") + profiling.SumWithPrefix("glfw.")
	if a.store.Profiling() && busy > slowFrame {
		a.log.Info("slow frame",
			zap.Duration("busy", busy),
			zap.String("top", profiling.TopN(5)))
	}
}
