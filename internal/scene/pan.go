package scene

import "github.com/go-gl/mathgl/mgl32"

// Direction is one of the four pan keys.
type Direction int

const (
	PanUp    Direction = iota // W
	PanDown                   // S
	PanLeft                   // A
	PanRight                  // D
	directionCount
)

func (d Direction) String() string {
	switch d {
	case PanUp:
		return "up"
	case PanDown:
		return "down"
	case PanLeft:
		return "left"
	case PanRight:
		return "right"
	}
	return "unknown"
}

// Held is the level-triggered state of the pan keys.
type Held [directionCount]bool

var panAxis = [directionCount]mgl32.Vec2{
	PanUp:    {0, 1},
	PanDown:  {0, -1},
	PanLeft:  {1, 0},
	PanRight: {-1, 0},
}

// PanVelocity folds the held keys into a per-tick pan step. Each key adds a
// unit step on its axis, so opposite keys cancel.
func PanVelocity(h Held) mgl32.Vec2 {
	var v mgl32.Vec2
	for d, held := range h {
		if held {
			v = v.Add(panAxis[d])
		}
	}
	return v
}
