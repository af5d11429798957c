package viewport

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-feedback-backend/internal/model"
)

func testConfig() Config {
	return Config{
		DesignWidth:    1000,
		DesignHeight:   800,
		MinZoom:        0.2,
		MaxZoom:        3.0,
		FitPadding:     40,
		ZoomStep:       0.2,
		WheelLineDelta: 50,
	}
}

func tableAt(number int, x, y string) model.Table {
	return model.Table{
		ID:     int64(number),
		Number: number,
		PosX:   x,
		PosY:   y,
		Shape:  model.ShapeRectangle,
	}
}

func TestFitToScreen_AllTablesWithinContainer(t *testing.T) {
	layouts := [][]model.Table{
		{tableAt(1, "10%", "10%"), tableAt(2, "90%", "85%")},
		{tableAt(1, "50%", "50%")},
		{tableAt(1, "120", "80"), tableAt(2, "940px", "700px"), tableAt(3, "30%", "75%")},
	}
	containers := []Size{{W: 1280, H: 720}, {W: 800, H: 600}, {W: 400, H: 900}}

	for li, tables := range layouts {
		for ci, container := range containers {
			t.Run(fmt.Sprintf("layout_%d_container_%d", li, ci), func(t *testing.T) {
				v := NewView(testConfig())
				v.SetContainer(container)
				v.FitToScreen(tables)

				assert.GreaterOrEqual(t, v.Zoom, v.cfg.MinZoom)
				assert.LessOrEqual(t, v.Zoom, v.cfg.MaxZoom)

				for i := range tables {
					bounds, err := v.cfg.TableBounds(&tables[i])
					require.NoError(t, err)
					screen := v.ScreenRect(bounds.Expand(v.cfg.FitPadding))
					assert.True(t, screen.Within(container),
						"table %d box %+v must fit container %+v", tables[i].Number, screen, container)
				}
			})
		}
	}
}

func TestFitToScreen_CentersContent(t *testing.T) {
	v := NewView(testConfig())
	v.SetContainer(Size{W: 1000, H: 1000})
	tables := []model.Table{tableAt(1, "20%", "20%"), tableAt(2, "80%", "80%")}
	v.FitToScreen(tables)

	box, ok := v.cfg.BoundingBox(tables)
	require.True(t, ok)
	padded := box.Expand(v.cfg.FitPadding)
	screen := v.ScreenRect(padded)

	leftGap := screen.X
	rightGap := 1000 - (screen.X + screen.W)
	topGap := screen.Y
	bottomGap := 1000 - (screen.Y + screen.H)
	assert.InDelta(t, leftGap, rightGap, 1e-6)
	assert.InDelta(t, topGap, bottomGap, 1e-6)
}

func TestFitToScreen_CapsAtMaxZoom(t *testing.T) {
	v := NewView(testConfig())
	v.SetContainer(Size{W: 4000, H: 4000})
	// Two close tables would need an enormous zoom to fill the container.
	v.FitToScreen([]model.Table{tableAt(1, "49%", "49%"), tableAt(2, "51%", "51%")})
	assert.Equal(t, v.cfg.MaxZoom, v.Zoom)
}

func TestFitToScreen_NoTables(t *testing.T) {
	v := NewView(testConfig())
	v.SetContainer(Size{W: 800, H: 600})
	v.FitToScreen(nil)
	assert.Equal(t, 1.0, v.Zoom)
	assert.Equal(t, Point{}, v.Pan)
}

func TestScreenPosition(t *testing.T) {
	v := NewView(testConfig())
	v.Zoom = 2
	v.Pan = Point{X: 10, Y: -20}

	got := v.ScreenPosition(Point{X: 100, Y: 50})
	assert.Equal(t, Point{X: 210, Y: 80}, got)
}

func TestZoomStepsClampToBounds(t *testing.T) {
	v := NewView(testConfig())
	v.SetContainer(Size{W: 800, H: 600})

	for i := 0; i < 50; i++ {
		v.ZoomIn()
	}
	assert.Equal(t, v.cfg.MaxZoom, v.Zoom)

	for i := 0; i < 50; i++ {
		v.ZoomOut()
	}
	assert.Equal(t, v.cfg.MinZoom, v.Zoom)
}

func TestWheelZoom_KeepsPointerFixed(t *testing.T) {
	v := NewView(testConfig())
	v.SetContainer(Size{W: 800, H: 600})
	v.Zoom = 1
	v.Pan = Point{X: 40, Y: 30}

	pointer := Point{X: 250, Y: 180}
	// The world point under the pointer before zooming...
	worldBefore := Point{
		X: (pointer.X - v.Pan.X) / v.Zoom,
		Y: (pointer.Y - v.Pan.Y) / v.Zoom,
	}

	v.WheelZoom(-120, pointer) // zoom in

	// ...must project back to the same screen position afterwards.
	after := v.ScreenPosition(worldBefore)
	assert.InDelta(t, pointer.X, after.X, 1e-6)
	assert.InDelta(t, pointer.Y, after.Y, 1e-6)
	assert.Greater(t, v.Zoom, 1.0)
}

func TestWheelZoom_TrackpadGentlerThanWheel(t *testing.T) {
	pointer := Point{X: 400, Y: 300}

	wheel := NewView(testConfig())
	wheel.SetContainer(Size{W: 800, H: 600})
	wheel.WheelZoom(-120, pointer) // discrete wheel click

	trackpad := NewView(testConfig())
	trackpad.SetContainer(Size{W: 800, H: 600})
	trackpad.WheelZoom(-4, pointer) // small trackpad delta

	assert.Greater(t, wheel.Zoom, trackpad.Zoom)
	assert.Greater(t, trackpad.Zoom, 1.0, "a small delta still zooms, just less")
}

func TestWheelZoom_DirectionAndZeroDelta(t *testing.T) {
	v := NewView(testConfig())
	v.SetContainer(Size{W: 800, H: 600})

	v.WheelZoom(120, Point{X: 400, Y: 300}) // scroll down zooms out
	assert.Less(t, v.Zoom, 1.0)

	before := v.Zoom
	v.WheelZoom(0, Point{X: 400, Y: 300})
	assert.Equal(t, before, v.Zoom)
}

func TestDragPan(t *testing.T) {
	v := NewView(testConfig())
	v.Pan = Point{X: 100, Y: 100}

	// Drag without a started gesture is ignored.
	v.Drag(Point{X: 500, Y: 500})
	assert.Equal(t, Point{X: 100, Y: 100}, v.Pan)

	v.StartDrag(Point{X: 200, Y: 200})
	assert.True(t, v.Dragging())

	v.Drag(Point{X: 230, Y: 180})
	assert.Equal(t, Point{X: 130, Y: 80}, v.Pan)

	// Further movement is relative to the drag start, not the last event.
	v.Drag(Point{X: 210, Y: 210})
	assert.Equal(t, Point{X: 110, Y: 110}, v.Pan)

	v.EndDrag()
	assert.False(t, v.Dragging())
	v.Drag(Point{X: 999, Y: 999})
	assert.Equal(t, Point{X: 110, Y: 110}, v.Pan)
}

func TestRender_SkipsOtherZonesAndBadPositions(t *testing.T) {
	v := NewView(testConfig())
	v.SetContainer(Size{W: 800, H: 600})
	v.ActiveZone = 1

	tables := []model.Table{
		{ID: 1, Number: 1, ZoneID: 1, PosX: "10%", PosY: "10%", Shape: model.ShapeCircle},
		{ID: 2, Number: 2, ZoneID: 2, PosX: "50%", PosY: "50%", Shape: model.ShapeRectangle},
		{ID: 3, Number: 3, ZoneID: 1, PosX: "???", PosY: "10%", Shape: model.ShapeRectangle},
	}
	statuses := map[int]TableStatus{1: StatusHappy}

	out := v.Render(tables, statuses)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].TableID)
	assert.Equal(t, StatusHappy, out[0].Status)
	assert.Equal(t, StatusHappy.Color(), out[0].Color)
}
