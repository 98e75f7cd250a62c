package config

import (
	"errors"
	"fmt"
)

// Terrain selects one of the terrain shader variants.
type Terrain string

const (
	Mountain1 Terrain = "mountain1"
	Mountain2 Terrain = "mountain2"
	Mountain3 Terrain = "mountain3"
)

// Terrains lists the known variants in selection order.
var Terrains = []Terrain{Mountain1, Mountain2, Mountain3}

// Index returns the position of t in Terrains.
func (t Terrain) Index() (int, bool) {
	for i, known := range Terrains {
		if t == known {
			return i, true
		}
	}
	return 0, false
}

// Next returns the variant after t, wrapping around. Unknown values map to
// the first variant.
func (t Terrain) Next() Terrain {
	i, ok := t.Index()
	if !ok {
		return Terrains[0]
	}
	return Terrains[(i+1)%len(Terrains)]
}

// Bounds of the operator controls.
const (
	MinOctave     = 1
	MaxOctave     = 10
	MinFrequency  = 0.001
	MaxFrequency  = 0.8
	MinLacunarity = 1.0
	MaxLacunarity = 4.0
	MinAmplitude  = 0.1
	MaxAmplitude  = 0.8
	MinGain       = 0.1
	MaxGain       = 0.8
	MinExponent   = 0.2
	MaxExponent   = 10.0
	MinMultiply   = 1.0
	MaxMultiply   = 25.0
	MinLayer      = 0
	MaxLayer      = 4
	MinCellSize   = 5
	MaxCellSize   = 30
)

// Controls are the noise parameters the operator tunes while the viewer runs.
type Controls struct {
	Octave     int     `toml:"octave"`
	Frequency  float32 `toml:"frequency"`
	Lacunarity float32 `toml:"lacunarity"`
	Amplitude  float32 `toml:"amplitude"`
	Gain       float32 `toml:"gain"`
	Exponent   float32 `toml:"exponent"`
	Multiply   float32 `toml:"multiply"`
	Layer      int     `toml:"layer"`
	CellSize   int     `toml:"cell_size"`
	Terrain    Terrain `toml:"terrain"`
}

// DefaultControls returns the values the panel starts with.
func DefaultControls() Controls {
	return Controls{
		Octave:     6,
		Frequency:  0.1,
		Lacunarity: 2.0,
		Amplitude:  0.2,
		Gain:       0.5,
		Exponent:   2.0,
		Multiply:   20.0,
		Layer:      1,
		CellSize:   15,
		Terrain:    Mountain1,
	}
}

// ErrOutOfRange is wrapped by every validation failure.
var ErrOutOfRange = errors.New("out of range")

func checkInt(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s = %d: %w [%d, %d]", name, v, ErrOutOfRange, lo, hi)
	}
	return nil
}

func checkFloat(name string, v, lo, hi float32) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s = %g: %w [%g, %g]", name, v, ErrOutOfRange, lo, hi)
	}
	return nil
}

// Validate reports every field outside its domain.
func (c Controls) Validate() error {
	errs := []error{
		checkInt("octave", c.Octave, MinOctave, MaxOctave),
		checkFloat("frequency", c.Frequency, MinFrequency, MaxFrequency),
		checkFloat("lacunarity", c.Lacunarity, MinLacunarity, MaxLacunarity),
		checkFloat("amplitude", c.Amplitude, MinAmplitude, MaxAmplitude),
		checkFloat("gain", c.Gain, MinGain, MaxGain),
		checkFloat("exponent", c.Exponent, MinExponent, MaxExponent),
		checkFloat("multiply", c.Multiply, MinMultiply, MaxMultiply),
		checkInt("layer", c.Layer, MinLayer, MaxLayer),
		checkInt("cell_size", c.CellSize, MinCellSize, MaxCellSize),
	}
	if _, ok := c.Terrain.Index(); !ok {
		errs = append(errs, fmt.Errorf("terrain = %q: %w %v", c.Terrain, ErrOutOfRange, Terrains))
	}
	return errors.Join(errs...)
}

// StepOctave moves the octave count by delta, clamped to its bounds.
func (c *Controls) StepOctave(delta int) {
	c.Octave = min(max(c.Octave+delta, MinOctave), MaxOctave)
}

// CycleLayer selects the next layer, wrapping after the last.
func (c *Controls) CycleLayer() {
	c.Layer = MinLayer + (c.Layer-MinLayer+1)%(MaxLayer-MinLayer+1)
}
