package scene

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"mini-terrain/assets"
	"mini-terrain/internal/config"
	"mini-terrain/internal/gpu/gputest"
	"mini-terrain/internal/graphics"
	"mini-terrain/internal/graphics/geometry"
	"mini-terrain/internal/graphics/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSurface struct{ w, h int }

func (s *fakeSurface) GetFramebufferSize() (int, int) { return s.w, s.h }

type fakeControls struct{ c config.Controls }

func (f *fakeControls) Controls() config.Controls { return f.c }

type fixture struct {
	dev      *gputest.Device
	programs *Programs
	surface  *fakeSurface
	controls *fakeControls
	camera   *graphics.Camera
	loop     *Loop
	built    []Scene
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		dev:      gputest.New(),
		surface:  &fakeSurface{w: 900, h: 600},
		controls: &fakeControls{c: config.DefaultControls()},
		camera:   graphics.NewCamera(mgl32.Vec3{0, 10, -20}, mgl32.Vec3{}),
	}
	progs, err := LoadPrograms(graphics.NewContext(f.dev), assets.Shaders)
	require.NoError(t, err)
	f.programs = progs

	build := func() Scene {
		s := Scene{
			Terrain: geometry.NewPlane(f.dev, mgl32.Vec3{}, mgl32.Vec2{100, 100}, 2),
			Overlay: geometry.NewSquare(f.dev, mgl32.Vec3{}),
		}
		f.built = append(f.built, s)
		return s
	}
	f.loop = NewLoop(renderer.New(f.dev), f.camera, f.surface, f.controls, progs, build, zaptest.NewLogger(t))
	return f
}

func (f *fixture) uniform(t *testing.T, p *graphics.Program, name string) gputest.Value {
	t.Helper()
	v, ok := f.dev.UniformValue(p.Handle(), name)
	require.True(t, ok, name)
	return v
}

func TestPanVelocityFold(t *testing.T) {
	for mask := 0; mask < 1<<directionCount; mask++ {
		var h Held
		for d := range directionCount {
			h[d] = mask&(1<<d) != 0
		}
		var want mgl32.Vec2
		if h[PanUp] {
			want[1]++
		}
		if h[PanDown] {
			want[1]--
		}
		if h[PanLeft] {
			want[0]++
		}
		if h[PanRight] {
			want[0]--
		}
		assert.Equal(t, want, PanVelocity(h), "held %v", h)
	}

	assert.Equal(t, mgl32.Vec2{0, 1}, PanVelocity(Held{PanUp: true}))
	assert.Equal(t, mgl32.Vec2{-1, 0}, PanVelocity(Held{PanRight: true}))
	assert.Equal(t, mgl32.Vec2{}, PanVelocity(Held{PanUp: true, PanDown: true, PanLeft: true, PanRight: true}))
}

func TestTickBeforeLoadScene(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, Uninitialized, f.loop.State())
	assert.ErrorIs(t, f.loop.Tick(), ErrNotLoaded)
	assert.ErrorIs(t, f.loop.Run(context.Background(), nil), ErrNotLoaded)
	assert.Empty(t, f.dev.Draws)
}

func TestTickDrawsTerrainThenOverlay(t *testing.T) {
	f := newFixture(t)
	m1 := f.programs.Terrain[config.Mountain1]
	f.loop.LoadScene(m1)
	assert.Equal(t, SceneLoaded, f.loop.State())

	require.NoError(t, f.loop.Tick())
	assert.Equal(t, Running, f.loop.State())
	assert.Equal(t, 1, f.dev.Clears)
	assert.Equal(t, [4]int32{0, 0, 900, 600}, f.dev.ViewportRect)

	require.Len(t, f.dev.Draws, 2)
	assert.Equal(t, m1.Handle(), f.dev.Draws[0].Program)
	assert.Equal(t, int32(4*4*6), f.dev.Draws[0].Count)
	assert.Equal(t, f.programs.Flat.Handle(), f.dev.Draws[1].Program)
	assert.Equal(t, int32(6), f.dev.Draws[1].Count)
}

func TestPanAccumulatesAcrossTicks(t *testing.T) {
	f := newFixture(t)
	f.loop.LoadScene(f.programs.Terrain[config.Mountain1])

	f.loop.SetKeyHeld(PanUp, true)
	for range 3 {
		require.NoError(t, f.loop.Tick())
	}
	f.loop.SetKeyHeld(PanUp, false)
	require.NoError(t, f.loop.Tick())
	require.NoError(t, f.loop.Tick())

	assert.Equal(t, mgl32.Vec2{0, 3}, f.loop.Pan())
	assert.Equal(t, mgl32.Vec2{0, 3}, f.uniform(t, f.loop.Active(), "u_PlanePos").Vec2)

	f.loop.SetKeyHeld(PanLeft, true)
	f.loop.SetKeyHeld(PanRight, true)
	f.loop.SetKeyHeld(PanDown, true)
	require.NoError(t, f.loop.Tick())
	assert.Equal(t, mgl32.Vec2{0, 2}, f.loop.Pan())
}

func TestLoadSceneResets(t *testing.T) {
	f := newFixture(t)
	m1 := f.programs.Terrain[config.Mountain1]
	f.loop.LoadScene(m1)

	f.loop.SetKeyHeld(PanLeft, true)
	f.loop.SetKeyHeld(PanUp, true)
	f.controls.c.Terrain = config.Mountain3
	for range 4 {
		require.NoError(t, f.loop.Tick())
	}
	require.Equal(t, mgl32.Vec2{4, 4}, f.loop.Pan())

	f.loop.LoadScene(m1)
	assert.Equal(t, mgl32.Vec2{}, f.loop.Pan())
	assert.Equal(t, Held{}, f.loop.Held())
	assert.Same(t, m1, f.loop.Active())
	assert.Equal(t, SceneLoaded, f.loop.State())

	require.Len(t, f.built, 2)
	first := f.built[0]
	assert.Zero(t, first.Terrain.ElementCount(), "previous drawables are released")
	assert.Zero(t, first.Overlay.ElementCount())

	f.controls.c.Terrain = config.Mountain1
	require.NoError(t, f.loop.Tick())
	assert.Equal(t, mgl32.Vec2{}, f.loop.Pan())
}

func TestResizeThenTickUsesNewAspect(t *testing.T) {
	f := newFixture(t)
	f.loop.LoadScene(f.programs.Terrain[config.Mountain1])
	require.NoError(t, f.loop.Tick())

	f.surface.w, f.surface.h = 1200, 400
	f.loop.Resize(1200, 400)
	assert.Equal(t, float32(3), f.camera.AspectRatio)
	wantProj := mgl32.Perspective(mgl32.DegToRad(f.camera.FOV), 3, f.camera.NearPlane, f.camera.FarPlane)
	assert.Equal(t, wantProj, f.camera.ProjectionMatrix(), "projection updates before the next tick")

	require.NoError(t, f.loop.Tick())
	assert.Equal(t, [4]int32{0, 0, 1200, 400}, f.dev.ViewportRect)
	got := f.uniform(t, f.loop.Active(), "u_ViewProj").Mat4
	assert.Equal(t, wantProj.Mul4(f.camera.ViewMatrix()), got)
}

func TestResizeIgnoresDegenerateAspect(t *testing.T) {
	f := newFixture(t)
	f.loop.Resize(900, 600)
	f.loop.Resize(0, 0)
	assert.Equal(t, float32(1.5), f.camera.AspectRatio)
	w, h := f.loop.Renderer().Size()
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestVariantSelection(t *testing.T) {
	f := newFixture(t)
	m1 := f.programs.Terrain[config.Mountain1]
	m2 := f.programs.Terrain[config.Mountain2]
	m3 := f.programs.Terrain[config.Mountain3]
	f.loop.LoadScene(m1)

	for _, tc := range []struct {
		terrain config.Terrain
		want    *graphics.Program
	}{
		{config.Mountain2, m2},
		{"volcano", m2},
		{config.Mountain3, m3},
		{"", m3},
		{"Mountain1", m3},
		{config.Mountain1, m1},
	} {
		f.controls.c.Terrain = tc.terrain
		require.NoError(t, f.loop.Tick())
		assert.Same(t, tc.want, f.loop.Active(), "terrain %q", tc.terrain)
		terrainDraw := f.dev.Draws[len(f.dev.Draws)-2]
		assert.Equal(t, tc.want.Handle(), terrainDraw.Program, "terrain %q", tc.terrain)
	}
}

func TestPanIsPushedBeforeVariantSwitch(t *testing.T) {
	f := newFixture(t)
	m1 := f.programs.Terrain[config.Mountain1]
	m2 := f.programs.Terrain[config.Mountain2]
	f.loop.LoadScene(m1)

	f.loop.SetKeyHeld(PanRight, true)
	f.controls.c.Terrain = config.Mountain2
	require.NoError(t, f.loop.Tick())

	assert.Equal(t, mgl32.Vec2{-1, 0}, f.uniform(t, m1, "u_PlanePos").Vec2)
	assert.Equal(t, mgl32.Vec2{-1, 0}, f.uniform(t, m2, "u_PlanePos").Vec2)
	assert.Equal(t, int32(1), f.uniform(t, m2, "u_Terrain").Int)
}

func TestRunStops(t *testing.T) {
	t.Run("stop", func(t *testing.T) {
		f := newFixture(t)
		f.loop.LoadScene(f.programs.Terrain[config.Mountain1])
		frames := 0
		err := f.loop.Run(context.Background(), func() bool {
			frames++
			if frames == 3 {
				f.loop.Stop()
			}
			return true
		})
		require.NoError(t, err)
		assert.Equal(t, 3, frames)
		assert.Len(t, f.dev.Draws, 6)
	})

	t.Run("frame returns false", func(t *testing.T) {
		f := newFixture(t)
		f.loop.LoadScene(f.programs.Terrain[config.Mountain1])
		frames := 0
		err := f.loop.Run(context.Background(), func() bool {
			frames++
			return frames < 2
		})
		require.NoError(t, err)
		assert.Equal(t, 2, frames)
	})

	t.Run("cancel", func(t *testing.T) {
		f := newFixture(t)
		f.loop.LoadScene(f.programs.Terrain[config.Mountain1])
		ctx, cancel := context.WithCancel(context.Background())
		frames := 0
		err := f.loop.Run(ctx, func() bool {
			frames++
			if frames == 5 {
				cancel()
			}
			return true
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 5, frames)
	})

	t.Run("stop from another goroutine", func(t *testing.T) {
		f := newFixture(t)
		f.loop.LoadScene(f.programs.Terrain[config.Mountain1])
		f.loop.SetLimiter(NewLimiter(500))
		done := make(chan error, 1)
		go func() { done <- f.loop.Run(context.Background(), nil) }()
		time.Sleep(20 * time.Millisecond)
		f.loop.Stop()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("loop did not stop")
		}
	})
}

func TestLoadProgramsFailsOnBrokenShader(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, name := range []string{assets.Terrain1Vert, assets.Terrain2Vert, assets.Terrain3Vert, assets.TerrainFrag, assets.FlatVert, assets.FlatFrag} {
		fsys[name] = &fstest.MapFile{Data: []byte("#version 410 core\nvoid main() {}\n")}
	}
	fsys[assets.Terrain2Vert] = &fstest.MapFile{Data: []byte("#version 410 core\n#error broken\n")}

	_, err := LoadPrograms(graphics.NewContext(gputest.New()), fsys)
	require.Error(t, err)
	var compileErr *graphics.ShaderCompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, assets.Terrain2Vert, compileErr.Path)
	assert.Contains(t, err.Error(), "mountain2")
}

func TestLoadProgramsDeclaresExpectedUniforms(t *testing.T) {
	progs, err := LoadPrograms(graphics.NewContext(gputest.New()), assets.Shaders)
	require.NoError(t, err)

	for _, tr := range config.Terrains {
		p, ok := progs.Select(tr)
		require.True(t, ok)
		for _, u := range []graphics.Uniform{graphics.UniformModel, graphics.UniformViewProj, graphics.UniformPanOffset, graphics.UniformOctave, graphics.UniformLayer} {
			assert.True(t, p.Has(u), "%s lacks %s", tr, u)
		}
		assert.True(t, p.HasAttrib(graphics.AttribPosition))
	}
	assert.True(t, progs.Terrain[config.Mountain3].Has(graphics.UniformCellSize))
	assert.False(t, progs.Terrain[config.Mountain1].Has(graphics.UniformCellSize))
	assert.False(t, progs.Flat.Has(graphics.UniformOctave))

	_, ok := progs.Select("volcano")
	assert.False(t, ok)
}

func TestLimiter(t *testing.T) {
	start := time.Now()
	unpaced := NewLimiter(0)
	for range 100 {
		unpaced.Wait()
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	paced := NewLimiter(1000)
	start = time.Now()
	for range 3 {
		paced.Wait()
	}
	assert.GreaterOrEqual(t, time.Since(start), 2*time.Millisecond)
}
