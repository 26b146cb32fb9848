package neurodb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadCoordinate reports coordinate input that is not three
// underscore-separated integers.
var ErrBadCoordinate = errors.New("coordinates must be 'x_y_z' with integers")

// Coordinate is a stereotactic point in integer millimeters (MNI space
// in standard Neurosynth dumps).
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// ParseCoordinate parses the wire form "x_y_z", e.g. "0_-52_26".
// Each component must parse as an integer; anything else returns
// ErrBadCoordinate.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return Coordinate{}, fmt.Errorf("%q: %w", s, ErrBadCoordinate)
	}
	var vals [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return Coordinate{}, fmt.Errorf("%q: %w", s, ErrBadCoordinate)
		}
		vals[i] = v
	}
	return Coordinate{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// String renders the canonical wire form. ParseCoordinate(c.String())
// round-trips for every value of c.
func (c Coordinate) String() string {
	return fmt.Sprintf("%d_%d_%d", c.X, c.Y, c.Z)
}
