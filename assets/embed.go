// Package assets embeds the viewer's GLSL sources.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed shaders/*.glsl
var files embed.FS

// Shaders is the shaders directory. Paths are bare file names, so a
// directory on disk laid out the same way can replace it.
var Shaders = mustSub(files, "shaders")

// Shader file names inside Shaders.
const (
	Terrain1Vert = "terrain1-vert.glsl"
	Terrain2Vert = "terrain2-vert.glsl"
	Terrain3Vert = "terrain3-vert.glsl"
	TerrainFrag  = "terrain-frag.glsl"
	FlatVert     = "flat-vert.glsl"
	FlatFrag     = "flat-frag.glsl"
)

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
