// Package glbackend implements gpu.Device on top of the go-gl OpenGL 4.1
// core bindings. A context must be current on the calling thread.
package glbackend

import (
	"fmt"
	"strings"

	"mini-terrain/internal/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Device is the OpenGL implementation of gpu.Device.
type Device struct {
	vao uint32
}

var _ gpu.Device = (*Device)(nil)

// New loads the GL function pointers for the current context and binds the
// vertex array object every attribute call goes through.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", gpu.ErrUnsupportedContext, err)
	}

	d := &Device{}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	return d, nil
}

// Version returns the GL version string reported by the driver.
func (d *Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// Dispose releases the shared vertex array object.
func (d *Device) Dispose() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func stageEnum(s gpu.ShaderStage) uint32 {
	if s == gpu.FragmentStage {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

func modeEnum(m gpu.DrawMode) uint32 {
	switch m {
	case gpu.Lines:
		return gl.LINES
	case gpu.Points:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

func targetEnum(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (d *Device) CreateShader(stage gpu.ShaderStage) gpu.Shader {
	return gpu.Shader(gl.CreateShader(stageEnum(stage)))
}

func (d *Device) ShaderSource(s gpu.Shader, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(s), 1, csources, nil)
	free()
}

func (d *Device) CompileShader(s gpu.Shader) { gl.CompileShader(uint32(s)) }

func (d *Device) ShaderCompiled(s gpu.Shader) bool {
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (d *Device) ShaderInfoLog(s gpu.Shader) string {
	var logLength int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(uint32(s), logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *Device) DeleteShader(s gpu.Shader) { gl.DeleteShader(uint32(s)) }

func (d *Device) CreateProgram() gpu.Program { return gpu.Program(gl.CreateProgram()) }

func (d *Device) AttachShader(p gpu.Program, s gpu.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

func (d *Device) LinkProgram(p gpu.Program) { gl.LinkProgram(uint32(p)) }

func (d *Device) ProgramLinked(p gpu.Program) bool {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (d *Device) ProgramInfoLog(p gpu.Program) string {
	var logLength int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(uint32(p), logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *Device) DeleteProgram(p gpu.Program) { gl.DeleteProgram(uint32(p)) }

func (d *Device) UseProgram(p gpu.Program) { gl.UseProgram(uint32(p)) }

func (d *Device) AttribLocation(p gpu.Program, name string) (gpu.Attrib, bool) {
	loc := gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, false
	}
	return gpu.Attrib(loc), true
}

func (d *Device) UniformLocation(p gpu.Program, name string) (gpu.Uniform, bool) {
	loc := gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, false
	}
	return gpu.Uniform(loc), true
}

func (d *Device) Uniform1i(u gpu.Uniform, v int32)   { gl.Uniform1i(int32(u), v) }
func (d *Device) Uniform1f(u gpu.Uniform, v float32) { gl.Uniform1f(int32(u), v) }

func (d *Device) Uniform2f(u gpu.Uniform, x, y float32) { gl.Uniform2f(int32(u), x, y) }

func (d *Device) UniformMatrix4(u gpu.Uniform, m mgl32.Mat4) {
	gl.UniformMatrix4fv(int32(u), 1, false, &m[0])
}

func (d *Device) CreateBuffer() gpu.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return gpu.Buffer(b)
}

func (d *Device) BindBuffer(target gpu.BufferTarget, b gpu.Buffer) {
	gl.BindBuffer(targetEnum(target), uint32(b))
}

func (d *Device) BufferFloats(target gpu.BufferTarget, data []float32) {
	if len(data) == 0 {
		gl.BufferData(targetEnum(target), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(targetEnum(target), len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) BufferIndices(target gpu.BufferTarget, data []uint32) {
	if len(data) == 0 {
		gl.BufferData(targetEnum(target), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(targetEnum(target), len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) DeleteBuffer(b gpu.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (d *Device) EnableVertexAttribArray(a gpu.Attrib)  { gl.EnableVertexAttribArray(uint32(a)) }
func (d *Device) DisableVertexAttribArray(a gpu.Attrib) { gl.DisableVertexAttribArray(uint32(a)) }

func (d *Device) VertexAttribPointer(a gpu.Attrib, size int32) {
	gl.VertexAttribPointerWithOffset(uint32(a), size, gl.FLOAT, false, 0, 0)
}

func (d *Device) DrawElements(mode gpu.DrawMode, count int32) {
	gl.DrawElements(modeEnum(mode), count, gl.UNSIGNED_INT, gl.PtrOffset(0))
}

func (d *Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (d *Device) Clear() { gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT) }

func (d *Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (d *Device) SetDepthTest(enable bool) {
	if enable {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
}

func (d *Device) SetWireframe(enable bool) {
	if enable {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}
