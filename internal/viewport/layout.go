package viewport

import (
	"fmt"

	"venue-feedback-backend/internal/model"
	"venue-feedback-backend/internal/parse"
)

// Default table sizes in design units, used when the floor-plan editor
// did not record an explicit size.
var defaultSizes = map[string]Size{
	model.ShapeRectangle: {W: 60, H: 44},
	model.ShapeCircle:    {W: 48, H: 48},
	model.ShapeElongated: {W: 104, H: 44},
}

// Config fixes the logical design space and the zoom/fit parameters.
type Config struct {
	DesignWidth    float64
	DesignHeight   float64
	MinZoom        float64
	MaxZoom        float64
	FitPadding     float64
	ZoomStep       float64
	WheelLineDelta float64
}

// WorldPosition converts a table's authored position into design-space
// coordinates. Percent values are relative to the design dimensions;
// legacy raw values are already design units.
func (c Config) WorldPosition(table *model.Table) (Point, error) {
	x, err := parse.ParseCoordinate(table.PosX)
	if err != nil {
		return Point{}, fmt.Errorf("table %d: %w", table.Number, err)
	}
	y, err := parse.ParseCoordinate(table.PosY)
	if err != nil {
		return Point{}, fmt.Errorf("table %d: %w", table.Number, err)
	}
	return Point{X: x.World(c.DesignWidth), Y: y.World(c.DesignHeight)}, nil
}

// TableBounds returns the table's design-space box. The authored
// position is the table's center.
func (c Config) TableBounds(table *model.Table) (Rect, error) {
	center, err := c.WorldPosition(table)
	if err != nil {
		return Rect{}, err
	}

	size := Size{W: table.Width, H: table.Height}
	if size.W <= 0 || size.H <= 0 {
		def, ok := defaultSizes[table.Shape]
		if !ok {
			def = defaultSizes[model.ShapeRectangle]
		}
		size = def
	}
	return Rect{X: center.X - size.W/2, Y: center.Y - size.H/2, W: size.W, H: size.H}, nil
}

// BoundingBox computes the union of all parseable table bounds. Tables
// with unusable positions are skipped rather than failing the whole
// layout; ok is false when nothing could be placed.
func (c Config) BoundingBox(tables []model.Table) (Rect, bool) {
	var box Rect
	found := false
	for i := range tables {
		bounds, err := c.TableBounds(&tables[i])
		if err != nil {
			continue
		}
		if !found {
			box = bounds
			found = true
			continue
		}
		box = box.Union(bounds)
	}
	return box, found
}
