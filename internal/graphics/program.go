package graphics

import (
	"io/fs"

	"mini-terrain/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Attrib names a vertex input the viewer's shaders may declare.
type Attrib int

const (
	AttribPosition Attrib = iota
	AttribNormal
	AttribColor
	attribCount
)

var attribNames = [attribCount]string{
	AttribPosition: "vs_Pos",
	AttribNormal:   "vs_Nor",
	AttribColor:    "vs_Col",
}

func (a Attrib) String() string { return attribNames[a] }

// Uniform names a shader parameter the viewer knows how to set.
type Uniform int

const (
	UniformModel Uniform = iota
	UniformModelInvTr
	UniformViewProj
	UniformPanOffset
	UniformOctave
	UniformFrequency
	UniformLacunarity
	UniformAmplitude
	UniformGain
	UniformLayer
	UniformTerrain
	UniformCellSize
	UniformExponent
	UniformMultiply
	uniformCount
)

var uniformNames = [uniformCount]string{
	UniformModel:      "u_Model",
	UniformModelInvTr: "u_ModelInvTr",
	UniformViewProj:   "u_ViewProj",
	UniformPanOffset:  "u_PlanePos",
	UniformOctave:     "u_OCTAVE",
	UniformFrequency:  "u_Frequency",
	UniformLacunarity: "u_Lacunarity",
	UniformAmplitude:  "u_Amplitude",
	UniformGain:       "u_Gain",
	UniformLayer:      "u_Layer",
	UniformTerrain:    "u_Terrain",
	UniformCellSize:   "u_CellSize",
	UniformExponent:   "u_Exponent",
	UniformMultiply:   "u_Multiply",
}

func (u Uniform) String() string { return uniformNames[u] }

// Program is a linked shader program with its locations resolved.
//
// Shader variants declare different subsets of the known uniforms; a
// location missing from the maps makes the matching setter a no-op.
type Program struct {
	ctx      *Context
	handle   gpu.Program
	attribs  map[Attrib]gpu.Attrib
	uniforms map[Uniform]gpu.Uniform
}

// NewProgram links the given shaders. The shader objects are deleted once
// linking has been attempted, whatever the outcome.
func NewProgram(ctx *Context, shaders ...*Shader) (*Program, error) {
	dev := ctx.Device()
	handle := dev.CreateProgram()
	for _, s := range shaders {
		dev.AttachShader(handle, s.handle)
	}
	dev.LinkProgram(handle)
	for _, s := range shaders {
		s.delete()
	}

	if !dev.ProgramLinked(handle) {
		log := dev.ProgramInfoLog(handle)
		dev.DeleteProgram(handle)
		return nil, &ProgramLinkError{Log: log}
	}

	p := &Program{
		ctx:      ctx,
		handle:   handle,
		attribs:  make(map[Attrib]gpu.Attrib, attribCount),
		uniforms: make(map[Uniform]gpu.Uniform, uniformCount),
	}
	for a := range attribCount {
		if loc, ok := dev.AttribLocation(handle, a.String()); ok {
			p.attribs[a] = loc
		}
	}
	for u := range uniformCount {
		if loc, ok := dev.UniformLocation(handle, u.String()); ok {
			p.uniforms[u] = loc
		}
	}
	return p, nil
}

// LoadProgram compiles a vertex and a fragment shader from fsys and links them.
func LoadProgram(ctx *Context, fsys fs.FS, vertexPath, fragmentPath string) (*Program, error) {
	vs, err := LoadShader(ctx, fsys, gpu.VertexStage, vertexPath)
	if err != nil {
		return nil, err
	}
	frag, err := LoadShader(ctx, fsys, gpu.FragmentStage, fragmentPath)
	if err != nil {
		vs.delete()
		return nil, err
	}
	return NewProgram(ctx, vs, frag)
}

// Handle returns the underlying GPU program.
func (p *Program) Handle() gpu.Program { return p.handle }

// Has reports whether the linked program exposes u.
func (p *Program) Has(u Uniform) bool {
	_, ok := p.uniforms[u]
	return ok
}

// HasAttrib reports whether the linked program exposes a.
func (p *Program) HasAttrib(a Attrib) bool {
	_, ok := p.attribs[a]
	return ok
}

// Activate binds the program unless it is already the active one.
func (p *Program) Activate() {
	p.ctx.use(p.handle)
}

// Dispose deletes the GPU program.
func (p *Program) Dispose() {
	if p.handle == 0 {
		return
	}
	p.ctx.forget(p.handle)
	p.ctx.Device().DeleteProgram(p.handle)
	p.handle = 0
}

func (p *Program) setInt(u Uniform, v int32) {
	p.Activate()
	if loc, ok := p.uniforms[u]; ok {
		p.ctx.Device().Uniform1i(loc, v)
	}
}

func (p *Program) setFloat(u Uniform, v float32) {
	p.Activate()
	if loc, ok := p.uniforms[u]; ok {
		p.ctx.Device().Uniform1f(loc, v)
	}
}

func (p *Program) setMat4(u Uniform, m mgl32.Mat4) {
	p.Activate()
	if loc, ok := p.uniforms[u]; ok {
		p.ctx.Device().UniformMatrix4(loc, m)
	}
}

// SetModelMatrix writes the model matrix and its inverse transpose, the
// latter recomputed from model on every call.
func (p *Program) SetModelMatrix(model mgl32.Mat4) {
	p.setMat4(UniformModel, model)
	if p.Has(UniformModelInvTr) {
		p.setMat4(UniformModelInvTr, model.Transpose().Inv())
	}
}

func (p *Program) SetViewProjMatrix(vp mgl32.Mat4) { p.setMat4(UniformViewProj, vp) }

func (p *Program) SetPanOffset(pan mgl32.Vec2) {
	p.Activate()
	if loc, ok := p.uniforms[UniformPanOffset]; ok {
		p.ctx.Device().Uniform2f(loc, pan.X(), pan.Y())
	}
}

func (p *Program) SetOctave(n int)         { p.setInt(UniformOctave, int32(n)) }
func (p *Program) SetFrequency(f float32)  { p.setFloat(UniformFrequency, f) }
func (p *Program) SetLacunarity(l float32) { p.setFloat(UniformLacunarity, l) }
func (p *Program) SetAmplitude(a float32)  { p.setFloat(UniformAmplitude, a) }
func (p *Program) SetGain(g float32)       { p.setFloat(UniformGain, g) }
func (p *Program) SetLayer(l int)          { p.setInt(UniformLayer, int32(l)) }
func (p *Program) SetTerrainVariant(t int) { p.setInt(UniformTerrain, int32(t)) }
func (p *Program) SetCellSize(c int)       { p.setInt(UniformCellSize, int32(c)) }
func (p *Program) SetExponent(e float32)   { p.setFloat(UniformExponent, e) }
func (p *Program) SetMultiplier(m float32) { p.setFloat(UniformMultiply, m) }

// Draw issues one indexed draw of d. Position and normal arrays are enabled
// only when the program declares them and d could bind them, and are
// disabled again afterwards so layouts never leak between drawables.
func (p *Program) Draw(d Drawable) {
	p.Activate()
	dev := p.ctx.Device()

	var enabled [2]gpu.Attrib
	n := 0
	if loc, ok := p.attribs[AttribPosition]; ok && d.BindPositions() {
		dev.EnableVertexAttribArray(loc)
		dev.VertexAttribPointer(loc, 4)
		enabled[n] = loc
		n++
	}
	if loc, ok := p.attribs[AttribNormal]; ok && d.BindNormals() {
		dev.EnableVertexAttribArray(loc)
		dev.VertexAttribPointer(loc, 4)
		enabled[n] = loc
		n++
	}

	d.BindIndices()
	dev.DrawElements(d.DrawMode(), d.ElementCount())

	for _, loc := range enabled[:n] {
		dev.DisableVertexAttribArray(loc)
	}
}
