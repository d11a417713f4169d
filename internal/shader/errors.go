package shader

import (
	"fmt"

	"github.com/iburimskiy/orbit-visualization/internal/gpu"
)

// UnsupportedContextError means no GPU context could be obtained.
type UnsupportedContextError struct {
	Reason string
}

func (e *UnsupportedContextError) Error() string {
	if e.Reason == "" {
		return "shader: GPU context not available"
	}
	return "shader: GPU context not available: " + e.Reason
}

type ShaderCompileError struct {
	Stage gpu.Stage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("shader: compile %s program: %s", e.Stage, e.Log)
}

type ShaderLinkError struct {
	Log string
}

func (e *ShaderLinkError) Error() string {
	return "shader: link program: " + e.Log
}

// TransitionError reports an operation attempted from a state that has no
// edge for it.
type TransitionError struct {
	Op   string
	From State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("shader: cannot %s from %s", e.Op, e.From)
}
