package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var coordRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*(%|px)?$`)

// Unit describes how an authored coordinate is expressed.
type Unit string

const (
	UnitPercent Unit = "percent"
	UnitPixel   Unit = "pixel"
)

// Coordinate holds one parsed axis value of a table position.
type Coordinate struct {
	Value float64
	Unit  Unit
}

// ParseCoordinate parses one authored position value. Accepted forms are
// "42.5%", "380px" and a bare number; bare numbers are legacy raw pixel
// coordinates and are treated as pixels.
func ParseCoordinate(raw string) (Coordinate, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Coordinate{}, fmt.Errorf("empty coordinate")
	}

	m := coordRe.FindStringSubmatch(s)
	if m == nil {
		return Coordinate{}, fmt.Errorf("unable to parse coordinate: %q", raw)
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("unable to parse coordinate %q: %w", raw, err)
	}

	unit := UnitPixel
	if m[2] == "%" {
		unit = UnitPercent
	}
	return Coordinate{Value: v, Unit: unit}, nil
}

// World converts the coordinate to the design space, where designExtent
// is the logical size of the axis being converted. Percent values map
// onto the extent; pixel values are already in design units.
func (c Coordinate) World(designExtent float64) float64 {
	if c.Unit == UnitPercent {
		return c.Value / 100 * designExtent
	}
	return c.Value
}
