package graphics

import "mini-terrain/internal/gpu"

// Drawable is geometry that a Program can draw with one indexed call.
//
// BindPositions and BindNormals bind the corresponding vertex buffer to
// gpu.ArrayBuffer and report whether the geometry has that data at all.
// Positions and normals are four floats per vertex.
type Drawable interface {
	BindPositions() bool
	BindNormals() bool
	BindIndices() bool
	DrawMode() gpu.DrawMode
	ElementCount() int32
	// Release frees the GPU buffers. The drawable must not be drawn again.
	Release()
}
