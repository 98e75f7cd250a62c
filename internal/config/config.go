package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// WindowSettings describes the output surface.
type WindowSettings struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

// CameraSettings places the orbit camera.
type CameraSettings struct {
	Eye    [3]float32 `toml:"eye"`
	Target [3]float32 `toml:"target"`
}

// PlaneSettings sizes the terrain mesh.
type PlaneSettings struct {
	Size         float32 `toml:"size"`
	Subdivisions int     `toml:"subdivisions"`
}

// Config is the full viewer configuration.
type Config struct {
	Window     WindowSettings `toml:"window"`
	FPSLimit   int            `toml:"fps_limit"` // 0 disables the limiter
	ClearColor [4]float32     `toml:"clear_color"`
	ShaderDir  string         `toml:"shader_dir"` // empty uses the embedded shaders
	Camera     CameraSettings `toml:"camera"`
	Plane      PlaneSettings  `toml:"plane"`
	Controls   Controls       `toml:"controls"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowSettings{
			Width:  900,
			Height: 600,
			Title:  "mini-terrain",
		},
		FPSLimit:   120,
		ClearColor: [4]float32{164.0 / 255.0, 233.0 / 255.0, 1.0, 1.0},
		Camera: CameraSettings{
			Eye:    [3]float32{0, 10, -20},
			Target: [3]float32{0, 0, 0},
		},
		Plane: PlaneSettings{
			Size:         100,
			Subdivisions: 8,
		},
		Controls: DefaultControls(),
	}
}

// Validate checks every section of c.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window %dx%d: %w", c.Window.Width, c.Window.Height, ErrOutOfRange))
	}
	if c.FPSLimit < 0 {
		errs = append(errs, fmt.Errorf("fps_limit = %d: %w", c.FPSLimit, ErrOutOfRange))
	}
	if c.Plane.Size <= 0 {
		errs = append(errs, fmt.Errorf("plane.size = %g: %w", c.Plane.Size, ErrOutOfRange))
	}
	if c.Plane.Subdivisions < 0 || c.Plane.Subdivisions > 10 {
		errs = append(errs, fmt.Errorf("plane.subdivisions = %d: %w [0, 10]", c.Plane.Subdivisions, ErrOutOfRange))
	}
	if err := c.Controls.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("controls: %w", err))
	}
	return errors.Join(errs...)
}

// Decode parses TOML over the defaults; keys absent from data keep their
// default value and unknown keys are rejected.
func Decode(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads and decodes the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file: %w", err)
	}
	return Decode(data)
}

// Encode renders c as TOML.
func Encode(c Config) ([]byte, error) {
	return toml.Marshal(c)
}
