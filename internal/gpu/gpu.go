// Package gpu describes the subset of the OpenGL API the viewer drives.
//
// Everything above this package talks to a Device; the real implementation
// lives in glbackend and a recording implementation for tests lives in
// gputest.
package gpu

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnsupportedContext is returned when no usable GL context can be obtained.
var ErrUnsupportedContext = errors.New("gpu: OpenGL 4.1 core context not supported")

// Typed object handles. Zero is never a valid object.
type (
	Shader  uint32
	Program uint32
	Buffer  uint32
	Uniform int32
	Attrib  uint32
)

// ShaderStage selects the pipeline stage a shader is compiled for.
type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// DrawMode is the primitive topology of an indexed draw.
type DrawMode int

const (
	Triangles DrawMode = iota
	Lines
	Points
)

// BufferTarget is the binding point a buffer is attached to.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// Device is a GPU context. Implementations are not safe for concurrent use;
// every call must come from the goroutine that owns the context.
type Device interface {
	CreateShader(stage ShaderStage) Shader
	ShaderSource(s Shader, source string)
	CompileShader(s Shader)
	ShaderCompiled(s Shader) bool
	ShaderInfoLog(s Shader) string
	DeleteShader(s Shader)

	CreateProgram() Program
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	ProgramLinked(p Program) bool
	ProgramInfoLog(p Program) string
	DeleteProgram(p Program)
	UseProgram(p Program)

	// AttribLocation and UniformLocation report false when the linked
	// program does not declare (or the linker optimized out) the name.
	AttribLocation(p Program, name string) (Attrib, bool)
	UniformLocation(p Program, name string) (Uniform, bool)

	Uniform1i(u Uniform, v int32)
	Uniform1f(u Uniform, v float32)
	Uniform2f(u Uniform, x, y float32)
	UniformMatrix4(u Uniform, m mgl32.Mat4)

	CreateBuffer() Buffer
	BindBuffer(target BufferTarget, b Buffer)
	BufferFloats(target BufferTarget, data []float32)
	BufferIndices(target BufferTarget, data []uint32)
	DeleteBuffer(b Buffer)

	EnableVertexAttribArray(a Attrib)
	DisableVertexAttribArray(a Attrib)
	// VertexAttribPointer describes tightly packed float components read
	// from the buffer bound to ArrayBuffer.
	VertexAttribPointer(a Attrib, size int32)
	// DrawElements issues an indexed draw with uint32 indices read from the
	// buffer bound to ElementArrayBuffer.
	DrawElements(mode DrawMode, count int32)

	ClearColor(r, g, b, a float32)
	Clear()
	Viewport(x, y, width, height int32)
	SetDepthTest(enable bool)
	SetWireframe(enable bool)
}
