package graphics

import (
	"fmt"

	"mini-terrain/internal/gpu"
)

// ShaderCompileError is returned when the driver rejects a shader source.
type ShaderCompileError struct {
	Stage gpu.ShaderStage
	Path  string
	Log   string
}

func (e *ShaderCompileError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to compile %s shader %s: %s", e.Stage, e.Path, e.Log)
	}
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// ProgramLinkError is returned when compiled shaders fail to link.
type ProgramLinkError struct {
	Log string
}

func (e *ProgramLinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}
