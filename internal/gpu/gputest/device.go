// Package gputest provides an in-memory gpu.Device that records what the
// code under test asked the GPU to do.
//
// Shader sources are scanned for "uniform <type> <name>;" and
// "in <type> <name>;" declarations, so a linked program exposes exactly the
// locations its sources declare. A source containing "#error" fails to
// compile; a program without both a vertex and a fragment stage fails to
// link.
package gputest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"mini-terrain/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*;`)
	attribDecl  = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?in\s+\w+\s+(\w+)\s*;`)
)

// Kind is the type of value last written to a uniform.
type Kind int

const (
	KindInt Kind = iota + 1
	KindFloat
	KindVec2
	KindMat4
)

// Value is a recorded uniform write.
type Value struct {
	Kind  Kind
	Int   int32
	Float float32
	Vec2  mgl32.Vec2
	Mat4  mgl32.Mat4
}

// Draw is a recorded DrawElements call.
type Draw struct {
	Program gpu.Program
	Mode    gpu.DrawMode
	Count   int32
	Index   gpu.Buffer
	// Enabled holds the attribute arrays enabled at the time of the draw,
	// with the buffer each one was pointed at.
	Enabled map[gpu.Attrib]gpu.Buffer
}

type shader struct {
	stage    gpu.ShaderStage
	source   string
	compiled bool
	log      string
	deleted  bool
}

type program struct {
	shaders  []gpu.Shader
	linked   bool
	log      string
	deleted  bool
	attribs  map[string]gpu.Attrib
	uniforms map[string]gpu.Uniform
	values   map[gpu.Uniform]Value
}

// Device records GPU calls. The zero value is not usable; call New.
type Device struct {
	next     uint32
	shaders  map[gpu.Shader]*shader
	programs map[gpu.Program]*program
	buffers  map[gpu.Buffer][]float32
	indices  map[gpu.Buffer][]uint32
	deleted  map[gpu.Buffer]bool
	bound    map[gpu.BufferTarget]gpu.Buffer
	enabled  map[gpu.Attrib]bool
	pointers map[gpu.Attrib]gpu.Buffer

	current gpu.Program

	UseProgramCalls int
	Draws           []Draw
	Clears          int
	ClearRGBA       [4]float32
	ViewportRect    [4]int32
	DepthTest       bool
	Wireframe       bool
}

var _ gpu.Device = (*Device)(nil)

// New returns an empty recording device.
func New() *Device {
	return &Device{
		shaders:  make(map[gpu.Shader]*shader),
		programs: make(map[gpu.Program]*program),
		buffers:  make(map[gpu.Buffer][]float32),
		indices:  make(map[gpu.Buffer][]uint32),
		deleted:  make(map[gpu.Buffer]bool),
		bound:    make(map[gpu.BufferTarget]gpu.Buffer),
		enabled:  make(map[gpu.Attrib]bool),
		pointers: make(map[gpu.Attrib]gpu.Buffer),
	}
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

func (d *Device) CreateShader(stage gpu.ShaderStage) gpu.Shader {
	s := gpu.Shader(d.id())
	d.shaders[s] = &shader{stage: stage}
	return s
}

func (d *Device) ShaderSource(s gpu.Shader, source string) { d.shaders[s].source = source }

func (d *Device) CompileShader(s gpu.Shader) {
	sh := d.shaders[s]
	if i := strings.Index(sh.source, "#error"); i >= 0 {
		sh.compiled = false
		sh.log = "ERROR: 0:1: " + strings.TrimSpace(sh.source[i:])
		return
	}
	sh.compiled = true
	sh.log = ""
}

func (d *Device) ShaderCompiled(s gpu.Shader) bool { return d.shaders[s].compiled }
func (d *Device) ShaderInfoLog(s gpu.Shader) string { return d.shaders[s].log }
func (d *Device) DeleteShader(s gpu.Shader)         { d.shaders[s].deleted = true }

// ShaderDeleted reports whether DeleteShader was called for s.
func (d *Device) ShaderDeleted(s gpu.Shader) bool {
	sh, ok := d.shaders[s]
	return ok && sh.deleted
}

// LiveShaders counts shader objects that have not been deleted.
func (d *Device) LiveShaders() int {
	n := 0
	for _, sh := range d.shaders {
		if !sh.deleted {
			n++
		}
	}
	return n
}

func (d *Device) CreateProgram() gpu.Program {
	p := gpu.Program(d.id())
	d.programs[p] = &program{
		attribs:  make(map[string]gpu.Attrib),
		uniforms: make(map[string]gpu.Uniform),
		values:   make(map[gpu.Uniform]Value),
	}
	return p
}

func (d *Device) AttachShader(p gpu.Program, s gpu.Shader) {
	d.programs[p].shaders = append(d.programs[p].shaders, s)
}

func (d *Device) LinkProgram(p gpu.Program) {
	prog := d.programs[p]
	var vertex, fragment bool
	var attribs, uniforms []string
	for _, s := range prog.shaders {
		sh := d.shaders[s]
		if !sh.compiled {
			prog.log = fmt.Sprintf("ERROR: shader %d not compiled", s)
			return
		}
		switch sh.stage {
		case gpu.VertexStage:
			vertex = true
			for _, m := range attribDecl.FindAllStringSubmatch(sh.source, -1) {
				attribs = append(attribs, m[1])
			}
		case gpu.FragmentStage:
			fragment = true
		}
		for _, m := range uniformDecl.FindAllStringSubmatch(sh.source, -1) {
			uniforms = append(uniforms, m[1])
		}
	}
	if !vertex || !fragment {
		prog.log = "ERROR: Linking requires both a vertex and a fragment shader"
		return
	}

	sort.Strings(attribs)
	for _, name := range attribs {
		if _, ok := prog.attribs[name]; !ok {
			prog.attribs[name] = gpu.Attrib(len(prog.attribs))
		}
	}
	sort.Strings(uniforms)
	for _, name := range uniforms {
		if _, ok := prog.uniforms[name]; !ok {
			prog.uniforms[name] = gpu.Uniform(len(prog.uniforms))
		}
	}
	prog.linked = true
	prog.log = ""
}

func (d *Device) ProgramLinked(p gpu.Program) bool  { return d.programs[p].linked }
func (d *Device) ProgramInfoLog(p gpu.Program) string { return d.programs[p].log }

func (d *Device) DeleteProgram(p gpu.Program) {
	d.programs[p].deleted = true
	if d.current == p {
		d.current = 0
	}
}

func (d *Device) UseProgram(p gpu.Program) {
	d.UseProgramCalls++
	d.current = p
}

// Current returns the program most recently passed to UseProgram.
func (d *Device) Current() gpu.Program { return d.current }

func (d *Device) AttribLocation(p gpu.Program, name string) (gpu.Attrib, bool) {
	a, ok := d.programs[p].attribs[name]
	return a, ok
}

func (d *Device) UniformLocation(p gpu.Program, name string) (gpu.Uniform, bool) {
	u, ok := d.programs[p].uniforms[name]
	return u, ok
}

func (d *Device) write(u gpu.Uniform, v Value) {
	prog, ok := d.programs[d.current]
	if !ok {
		panic("gputest: uniform write with no program in use")
	}
	prog.values[u] = v
}

func (d *Device) Uniform1i(u gpu.Uniform, v int32) { d.write(u, Value{Kind: KindInt, Int: v}) }

func (d *Device) Uniform1f(u gpu.Uniform, v float32) {
	d.write(u, Value{Kind: KindFloat, Float: v})
}

func (d *Device) Uniform2f(u gpu.Uniform, x, y float32) {
	d.write(u, Value{Kind: KindVec2, Vec2: mgl32.Vec2{x, y}})
}

func (d *Device) UniformMatrix4(u gpu.Uniform, m mgl32.Mat4) {
	d.write(u, Value{Kind: KindMat4, Mat4: m})
}

// UniformValue returns the last value written to the named uniform of p.
func (d *Device) UniformValue(p gpu.Program, name string) (Value, bool) {
	prog, ok := d.programs[p]
	if !ok {
		return Value{}, false
	}
	u, ok := prog.uniforms[name]
	if !ok {
		return Value{}, false
	}
	v, ok := prog.values[u]
	return v, ok
}

// UniformWrites counts the uniforms of p that have received a value.
func (d *Device) UniformWrites(p gpu.Program) int {
	if prog, ok := d.programs[p]; ok {
		return len(prog.values)
	}
	return 0
}

func (d *Device) CreateBuffer() gpu.Buffer {
	b := gpu.Buffer(d.id())
	d.buffers[b] = nil
	return b
}

func (d *Device) BindBuffer(target gpu.BufferTarget, b gpu.Buffer) { d.bound[target] = b }

func (d *Device) BufferFloats(target gpu.BufferTarget, data []float32) {
	d.buffers[d.bound[target]] = append([]float32(nil), data...)
}

func (d *Device) BufferIndices(target gpu.BufferTarget, data []uint32) {
	d.indices[d.bound[target]] = append([]uint32(nil), data...)
}

func (d *Device) DeleteBuffer(b gpu.Buffer) { d.deleted[b] = true }

// BufferDeleted reports whether DeleteBuffer was called for b.
func (d *Device) BufferDeleted(b gpu.Buffer) bool { return d.deleted[b] }

// Floats returns the float data last uploaded into b.
func (d *Device) Floats(b gpu.Buffer) []float32 { return d.buffers[b] }

// Indices returns the index data last uploaded into b.
func (d *Device) Indices(b gpu.Buffer) []uint32 { return d.indices[b] }

func (d *Device) EnableVertexAttribArray(a gpu.Attrib)  { d.enabled[a] = true }
func (d *Device) DisableVertexAttribArray(a gpu.Attrib) { delete(d.enabled, a) }

// EnabledAttribs returns the attribute arrays currently enabled.
func (d *Device) EnabledAttribs() []gpu.Attrib {
	out := make([]gpu.Attrib, 0, len(d.enabled))
	for a := range d.enabled {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d *Device) VertexAttribPointer(a gpu.Attrib, size int32) {
	d.pointers[a] = d.bound[gpu.ArrayBuffer]
}

func (d *Device) DrawElements(mode gpu.DrawMode, count int32) {
	enabled := make(map[gpu.Attrib]gpu.Buffer, len(d.enabled))
	for a := range d.enabled {
		enabled[a] = d.pointers[a]
	}
	d.Draws = append(d.Draws, Draw{
		Program: d.current,
		Mode:    mode,
		Count:   count,
		Index:   d.bound[gpu.ElementArrayBuffer],
		Enabled: enabled,
	})
}

func (d *Device) ClearColor(r, g, b, a float32) { d.ClearRGBA = [4]float32{r, g, b, a} }
func (d *Device) Clear()                        { d.Clears++ }

func (d *Device) Viewport(x, y, width, height int32) {
	d.ViewportRect = [4]int32{x, y, width, height}
}

func (d *Device) SetDepthTest(enable bool) { d.DepthTest = enable }
func (d *Device) SetWireframe(enable bool) { d.Wireframe = enable }
