package graphics

import (
	"fmt"
	"io/fs"

	"mini-terrain/internal/gpu"
)

// Shader is one compiled pipeline stage waiting to be linked into a Program.
type Shader struct {
	ctx    *Context
	stage  gpu.ShaderStage
	handle gpu.Shader
}

// NewShader compiles source for the given stage.
func NewShader(ctx *Context, stage gpu.ShaderStage, source string) (*Shader, error) {
	dev := ctx.Device()
	handle := dev.CreateShader(stage)
	dev.ShaderSource(handle, source)
	dev.CompileShader(handle)

	if !dev.ShaderCompiled(handle) {
		log := dev.ShaderInfoLog(handle)
		dev.DeleteShader(handle)
		return nil, &ShaderCompileError{Stage: stage, Log: log}
	}
	return &Shader{ctx: ctx, stage: stage, handle: handle}, nil
}

// LoadShader reads path from fsys and compiles it.
func LoadShader(ctx *Context, fsys fs.FS, stage gpu.ShaderStage, path string) (*Shader, error) {
	source, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s shader file: %w", stage, err)
	}

	s, err := NewShader(ctx, stage, string(source))
	if err != nil {
		if ce, ok := err.(*ShaderCompileError); ok {
			ce.Path = path
		}
		return nil, err
	}
	return s, nil
}

// Stage returns the pipeline stage s was compiled for.
func (s *Shader) Stage() gpu.ShaderStage { return s.stage }

func (s *Shader) delete() {
	if s.handle != 0 {
		s.ctx.Device().DeleteShader(s.handle)
		s.handle = 0
	}
}
