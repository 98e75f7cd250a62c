package scene

import (
	"fmt"
	"io/fs"

	"mini-terrain/assets"
	"mini-terrain/internal/config"
	"mini-terrain/internal/graphics"
)

// Programs holds the three terrain variants and the flat overlay program.
type Programs struct {
	Terrain map[config.Terrain]*graphics.Program
	Flat    *graphics.Program
}

var terrainVertex = map[config.Terrain]string{
	config.Mountain1: assets.Terrain1Vert,
	config.Mountain2: assets.Terrain2Vert,
	config.Mountain3: assets.Terrain3Vert,
}

// LoadPrograms builds every program from the shader files in fsys. The
// terrain variants share one fragment stage. Nothing is kept if any
// program fails to build.
func LoadPrograms(ctx *graphics.Context, fsys fs.FS) (*Programs, error) {
	p := &Programs{Terrain: make(map[config.Terrain]*graphics.Program, len(config.Terrains))}
	for _, t := range config.Terrains {
		prog, err := graphics.LoadProgram(ctx, fsys, terrainVertex[t], assets.TerrainFrag)
		if err != nil {
			p.Dispose()
			return nil, fmt.Errorf("building %s program: %w", t, err)
		}
		p.Terrain[t] = prog
	}

	flat, err := graphics.LoadProgram(ctx, fsys, assets.FlatVert, assets.FlatFrag)
	if err != nil {
		p.Dispose()
		return nil, fmt.Errorf("building flat program: %w", err)
	}
	p.Flat = flat
	return p, nil
}

// Select returns the program for terrain t, or false when t names no
// known variant.
func (p *Programs) Select(t config.Terrain) (*graphics.Program, bool) {
	prog, ok := p.Terrain[t]
	return prog, ok
}

func (p *Programs) Dispose() {
	for _, prog := range p.Terrain {
		prog.Dispose()
	}
	if p.Flat != nil {
		p.Flat.Dispose()
	}
}
