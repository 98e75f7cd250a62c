package graphics

import (
	"errors"
	"testing"
	"testing/fstest"

	"mini-terrain/internal/gpu"
	"mini-terrain/internal/gpu/gputest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const terrainVert = `#version 410 core
uniform mat4 u_Model;
uniform mat4 u_ModelInvTr;
uniform mat4 u_ViewProj;
uniform vec2 u_PlanePos;
uniform int u_OCTAVE;
uniform float u_Frequency;
uniform float u_Lacunarity;
uniform float u_Amplitude;
uniform float u_Gain;
uniform int u_Terrain;
uniform int u_CellSize;
uniform float u_Exponent;
uniform float u_Multiply;
in vec4 vs_Pos;
in vec4 vs_Nor;
out vec4 fs_Nor;
void main() { gl_Position = u_ViewProj * u_Model * vs_Pos; }
`

const terrainFrag = `#version 410 core
uniform int u_Layer;
in vec4 fs_Nor;
out vec4 out_Col;
void main() { out_Col = vec4(1.0); }
`

const flatVert = `#version 410 core
in vec4 vs_Pos;
void main() { gl_Position = vs_Pos; }
`

const flatFrag = `#version 410 core
out vec4 out_Col;
void main() { out_Col = vec4(0.6, 0.9, 1.0, 1.0); }
`

func mustProgram(t *testing.T, ctx *Context, vert, frag string) *Program {
	t.Helper()
	vs, err := NewShader(ctx, gpu.VertexStage, vert)
	require.NoError(t, err)
	fs, err := NewShader(ctx, gpu.FragmentStage, frag)
	require.NoError(t, err)
	p, err := NewProgram(ctx, vs, fs)
	require.NoError(t, err)
	return p
}

type testMesh struct {
	dev        *gputest.Device
	pos, nor   gpu.Buffer
	idx        gpu.Buffer
	hasNormals bool
	count      int32
}

func newTestMesh(dev *gputest.Device, hasNormals bool) *testMesh {
	m := &testMesh{dev: dev, hasNormals: hasNormals, count: 6}
	m.pos = dev.CreateBuffer()
	m.idx = dev.CreateBuffer()
	if hasNormals {
		m.nor = dev.CreateBuffer()
	}
	return m
}

func (m *testMesh) BindPositions() bool {
	m.dev.BindBuffer(gpu.ArrayBuffer, m.pos)
	return true
}

func (m *testMesh) BindNormals() bool {
	if !m.hasNormals {
		return false
	}
	m.dev.BindBuffer(gpu.ArrayBuffer, m.nor)
	return true
}

func (m *testMesh) BindIndices() bool {
	m.dev.BindBuffer(gpu.ElementArrayBuffer, m.idx)
	return true
}

func (m *testMesh) DrawMode() gpu.DrawMode { return gpu.Triangles }
func (m *testMesh) ElementCount() int32    { return m.count }
func (m *testMesh) Release()               {}

func TestNewShaderCompileError(t *testing.T) {
	dev := gputest.New()
	ctx := NewContext(dev)

	_, err := NewShader(ctx, gpu.FragmentStage, "#version 410 core\n#error broken lighting\n")
	require.Error(t, err)

	var ce *ShaderCompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, gpu.FragmentStage, ce.Stage)
	assert.Contains(t, ce.Log, "broken lighting")
	assert.Equal(t, 0, dev.LiveShaders(), "failed shader object should be deleted")
}

func TestLoadShaderRecordsPath(t *testing.T) {
	fsys := fstest.MapFS{
		"shaders/bad.glsl": {Data: []byte("#error nope\n")},
	}
	ctx := NewContext(gputest.New())

	_, err := LoadShader(ctx, fsys, gpu.VertexStage, "shaders/bad.glsl")
	var ce *ShaderCompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "shaders/bad.glsl", ce.Path)
	assert.Contains(t, err.Error(), "shaders/bad.glsl")

	_, err = LoadShader(ctx, fsys, gpu.VertexStage, "shaders/missing.glsl")
	require.Error(t, err)
	assert.False(t, errors.As(err, &ce))
}

func TestNewProgramLinkError(t *testing.T) {
	dev := gputest.New()
	ctx := NewContext(dev)

	vs, err := NewShader(ctx, gpu.VertexStage, flatVert)
	require.NoError(t, err)

	_, err = NewProgram(ctx, vs)
	var le *ProgramLinkError
	require.True(t, errors.As(err, &le))
	assert.NotEmpty(t, le.Log)
	assert.Equal(t, 0, dev.LiveShaders())
}

func TestNewProgramDeletesShadersAfterLink(t *testing.T) {
	dev := gputest.New()
	ctx := NewContext(dev)

	mustProgram(t, ctx, flatVert, flatFrag)
	assert.Equal(t, 0, dev.LiveShaders())
}

func TestLoadProgram(t *testing.T) {
	fsys := fstest.MapFS{
		"flat-vert.glsl": {Data: []byte(flatVert)},
		"flat-frag.glsl": {Data: []byte(flatFrag)},
		"broken.glsl":    {Data: []byte("#error x\n")},
	}
	dev := gputest.New()
	ctx := NewContext(dev)

	p, err := LoadProgram(ctx, fsys, "flat-vert.glsl", "flat-frag.glsl")
	require.NoError(t, err)
	assert.True(t, p.HasAttrib(AttribPosition))
	assert.False(t, p.HasAttrib(AttribNormal))

	_, err = LoadProgram(ctx, fsys, "flat-vert.glsl", "broken.glsl")
	require.Error(t, err)
	assert.Equal(t, 0, dev.LiveShaders(), "vertex stage should be released when the fragment stage fails")
}

func TestProgramResolvesDeclaredLocations(t *testing.T) {
	ctx := NewContext(gputest.New())
	terrain := mustProgram(t, ctx, terrainVert, terrainFrag)
	flat := mustProgram(t, ctx, flatVert, flatFrag)

	for u := range uniformCount {
		assert.True(t, terrain.Has(u), "terrain program should expose %s", u)
		assert.False(t, flat.Has(u), "flat program should not expose %s", u)
	}
	assert.True(t, terrain.HasAttrib(AttribPosition))
	assert.True(t, terrain.HasAttrib(AttribNormal))
	assert.False(t, terrain.HasAttrib(AttribColor))
}

func TestActivateIsIdempotent(t *testing.T) {
	dev := gputest.New()
	ctx := NewContext(dev)
	p := mustProgram(t, ctx, terrainVert, terrainFrag)

	p.Activate()
	p.Activate()
	assert.Equal(t, 1, dev.UseProgramCalls)

	p.SetGain(0.5)
	p.SetOctave(3)
	assert.Equal(t, 1, dev.UseProgramCalls, "setters on the active program must not rebind it")
}

func TestActivateSwitchesBetweenPrograms(t *testing.T) {
	dev := gputest.New()
	ctx := NewContext(dev)
	a := mustProgram(t, ctx, terrainVert, terrainFrag)
	b := mustProgram(t, ctx, flatVert, flatFrag)

	a.SetGain(0.3)
	b.Draw(newTestMesh(dev, false))
	a.SetGain(0.4)
	assert.Equal(t, 3, dev.UseProgramCalls)
	assert.Equal(t, a.Handle(), dev.Current())

	active, ok := ctx.Active()
	require.True(t, ok)
	assert.Equal(t, a.Handle(), active)
}

func TestContextsDoNotShareActiveProgram(t *testing.T) {
	devA, devB := gputest.New(), gputest.New()
	p := mustProgram(t, NewContext(devA), flatVert, flatFrag)
	q := mustProgram(t, NewContext(devB), flatVert, flatFrag)

	p.Activate()
	q.Activate()
	p.Activate()
	q.Activate()
	assert.Equal(t, 1, devA.UseProgramCalls)
	assert.Equal(t, 1, devB.UseProgramCalls)
}

func TestSettersWriteTypedValues(t *testing.T) {
	dev := gputest.New()
	ctx := NewContext(dev)
	p := mustProgram(t, ctx, terrainVert, terrainFrag)
	h := p.Handle()

	p.SetOctave(6)
	p.SetFrequency(0.1)
	p.SetLacunarity(2)
	p.SetAmplitude(0.2)
	p.SetGain(0.5)
	p.SetLayer(3)
	p.SetTerrainVariant(2)
	p.SetCellSize(15)
	p.SetExponent(2)
	p.SetMultiplier(20)
	p.SetPanOffset(mgl32.Vec2{3, -1})

	ints := map[string]int32{"u_OCTAVE": 6, "u_Layer": 3, "u_Terrain": 2, "u_CellSize": 15}
	for name, want := range ints {
		v, ok := dev.UniformValue(h, name)
		require.True(t, ok, name)
		assert.Equal(t, gputest.KindInt, v.Kind, name)
		assert.Equal(t, want, v.Int, name)
	}

	floats := map[string]float32{
		"u_Frequency": 0.1, "u_Lacunarity": 2, "u_Amplitude": 0.2,
		"u_Gain": 0.5, "u_Exponent": 2, "u_Multiply": 20,
	}
	for name, want := range floats {
		v, ok := dev.UniformValue(h, name)
		require.True(t, ok, name)
		assert.Equal(t, gputest.KindFloat, v.Kind, name)
		assert.Equal(t, want, v.Float, name)
	}

	pan, ok := dev.UniformValue(h, "u_PlanePos")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec2{3, -1}, pan.Vec2)
}

func TestAbsentUniformIsSilentNoop(t *testing.T) {
	dev := gputest.New()
	ctx := NewContext(dev)
	flat := mustProgram(t, ctx, flatVert, flatFrag)
	terrain := mustProgram(t, ctx, terrainVert, terrainFrag)

	terrain.SetGain(0.7)
	assert.NotPanics(t, func() {
		flat.SetGain(0.1)
		flat.SetOctave(2)
		flat.SetModelMatrix(mgl32.Scale3D(2, 1, 1))
		flat.SetPanOffset(mgl32.Vec2{1, 1})
	})
	assert.Equal(t, 0, dev.UniformWrites(flat.Handle()))

	v, ok := dev.UniformValue(terrain.Handle(), "u_Gain")
	require.True(t, ok)
	assert.Equal(t, float32(0.7), v.Float, "writes on another program must not disturb this one")
}

func TestSetModelMatrixRecomputesInverseTranspose(t *testing.T) {
	dev := gputest.New()
	ctx := NewContext(dev)
	p := mustProgram(t, ctx, terrainVert, terrainFrag)

	first := mgl32.Scale3D(2, 4, 8)
	p.SetModelMatrix(first)
	v, ok := dev.UniformValue(p.Handle(), "u_ModelInvTr")
	require.True(t, ok)
	assert.True(t, v.Mat4.ApproxEqual(first.Transpose().Inv()))

	second := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(1, 0.5, 1))
	p.SetModelMatrix(second)
	model, _ := dev.UniformValue(p.Handle(), "u_Model")
	invTr, _ := dev.UniformValue(p.Handle(), "u_ModelInvTr")
	assert.Equal(t, second, model.Mat4)
	assert.True(t, invTr.Mat4.ApproxEqual(second.Transpose().Inv()))
	assert.False(t, invTr.Mat4.ApproxEqual(first.Transpose().Inv()))
}

func TestDrawEnablesOnlyBoundAttributes(t *testing.T) {
	dev := gputest.New()
	ctx := NewContext(dev)
	p := mustProgram(t, ctx, terrainVert, terrainFrag)

	withNormals := newTestMesh(dev, true)
	p.Draw(withNormals)
	require.Len(t, dev.Draws, 1)
	d := dev.Draws[0]
	assert.Equal(t, p.Handle(), d.Program)
	assert.Equal(t, gpu.Triangles, d.Mode)
	assert.Equal(t, int32(6), d.Count)
	assert.Equal(t, withNormals.idx, d.Index)
	assert.Len(t, d.Enabled, 2)
	assert.Equal(t, withNormals.pos, d.Enabled[p.attribs[AttribPosition]])
	assert.Equal(t, withNormals.nor, d.Enabled[p.attribs[AttribNormal]])
	assert.Empty(t, dev.EnabledAttribs(), "attributes must be disabled after the draw")

	positionsOnly := newTestMesh(dev, false)
	p.Draw(positionsOnly)
	require.Len(t, dev.Draws, 2)
	assert.Len(t, dev.Draws[1].Enabled, 1)
	_, hasNormal := dev.Draws[1].Enabled[p.attribs[AttribNormal]]
	assert.False(t, hasNormal)
	assert.Empty(t, dev.EnabledAttribs())
}

func TestDisposeForgetsActiveProgram(t *testing.T) {
	dev := gputest.New()
	ctx := NewContext(dev)
	p := mustProgram(t, ctx, flatVert, flatFrag)

	p.Activate()
	p.Dispose()
	_, ok := ctx.Active()
	assert.False(t, ok)
	assert.NotPanics(t, p.Dispose)
}
