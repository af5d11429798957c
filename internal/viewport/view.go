package viewport

import "venue-feedback-backend/internal/model"

// View holds the kiosk's current floor-plan camera: zoom factor, pan
// offset in screen pixels, container size and zone selection. It is the
// single owner of that state; renderers receive it by reference and
// never mutate it behind the view's back.
type View struct {
	cfg       Config
	container Size

	Zoom       float64
	Pan        Point
	ActiveZone int64 // 0 means all zones

	drag *dragState
}

type dragState struct {
	startPointer Point
	startPan     Point
}

// NewView creates a view with a neutral camera. Call SetContainer and
// FitToScreen before rendering.
func NewView(cfg Config) *View {
	return &View{cfg: cfg, Zoom: 1}
}

// Config returns the view's fixed parameters.
func (v *View) Config() Config {
	return v.cfg
}

// Container returns the current container size.
func (v *View) Container() Size {
	return v.container
}

// SetContainer records the embedding host's container size.
func (v *View) SetContainer(size Size) {
	v.container = size
}

// ScreenPosition maps a world point through the camera:
// screen = world x zoom + pan.
func (v *View) ScreenPosition(world Point) Point {
	return Point{
		X: world.X*v.Zoom + v.Pan.X,
		Y: world.Y*v.Zoom + v.Pan.Y,
	}
}

// ScreenRect maps a world rect through the camera.
func (v *View) ScreenRect(world Rect) Rect {
	tl := v.ScreenPosition(Point{X: world.X, Y: world.Y})
	return Rect{X: tl.X, Y: tl.Y, W: world.W * v.Zoom, H: world.H * v.Zoom}
}

// FitToScreen computes the zoom and pan that center the given tables in
// the container with the configured padding: the smaller of the two
// per-axis scale factors, capped at max zoom, then a pan offset that
// centers the scaled box. Recompute whenever the active zone or the
// container size changes.
func (v *View) FitToScreen(tables []model.Table) {
	box, ok := v.cfg.BoundingBox(tables)
	if !ok || v.container.W <= 0 || v.container.H <= 0 {
		v.Zoom = v.clampZoom(1)
		v.Pan = Point{}
		return
	}

	padded := box.Expand(v.cfg.FitPadding)
	zoom := min(v.container.W/padded.W, v.container.H/padded.H)
	v.Zoom = v.clampZoom(zoom)

	// Center the scaled padded box in the container.
	v.Pan = Point{
		X: (v.container.W-padded.W*v.Zoom)/2 - padded.X*v.Zoom,
		Y: (v.container.H-padded.H*v.Zoom)/2 - padded.Y*v.Zoom,
	}
}

// ZoomIn steps the zoom in by the configured increment, keeping the
// container center fixed.
func (v *View) ZoomIn() {
	v.zoomAround(v.Zoom*(1+v.cfg.ZoomStep), v.center())
}

// ZoomOut steps the zoom out by the configured increment, keeping the
// container center fixed.
func (v *View) ZoomOut() {
	v.zoomAround(v.Zoom/(1+v.cfg.ZoomStep), v.center())
}

// WheelZoom applies a pointer-wheel delta, zooming around the pointer
// so the world point under it stays fixed on screen. Trackpads emit
// many small deltas and discrete wheels few large ones; the delta
// magnitude picks the sensitivity so a trackpad doesn't jump.
func (v *View) WheelZoom(delta float64, pointer Point) {
	if delta == 0 {
		return
	}

	step := v.cfg.ZoomStep
	if abs(delta) < v.cfg.WheelLineDelta {
		// Trackpad-style input: scale the step by the fraction of a
		// full wheel line this delta represents.
		step = v.cfg.ZoomStep * abs(delta) / v.cfg.WheelLineDelta
	}

	target := v.Zoom * (1 + step)
	if delta > 0 {
		target = v.Zoom / (1 + step)
	}
	v.zoomAround(target, pointer)
}

// StartDrag begins a pan gesture at the given screen position.
func (v *View) StartDrag(pointer Point) {
	v.drag = &dragState{startPointer: pointer, startPan: v.Pan}
}

// Drag updates the pan while a gesture is active:
// pan = start pan + (pointer - start pointer). No momentum.
func (v *View) Drag(pointer Point) {
	if v.drag == nil {
		return
	}
	v.Pan = Point{
		X: v.drag.startPan.X + pointer.X - v.drag.startPointer.X,
		Y: v.drag.startPan.Y + pointer.Y - v.drag.startPointer.Y,
	}
}

// EndDrag finishes the active pan gesture, if any.
func (v *View) EndDrag() {
	v.drag = nil
}

// Dragging reports whether a pan gesture is active.
func (v *View) Dragging() bool {
	return v.drag != nil
}

// zoomAround sets the zoom while keeping the world point under anchor
// fixed on screen.
func (v *View) zoomAround(zoom float64, anchor Point) {
	zoom = v.clampZoom(zoom)
	if zoom == v.Zoom {
		return
	}
	// world = (anchor - pan) / oldZoom; solve pan' for the same anchor.
	scale := zoom / v.Zoom
	v.Pan = Point{
		X: anchor.X - (anchor.X-v.Pan.X)*scale,
		Y: anchor.Y - (anchor.Y-v.Pan.Y)*scale,
	}
	v.Zoom = zoom
}

func (v *View) clampZoom(zoom float64) float64 {
	if zoom < v.cfg.MinZoom {
		return v.cfg.MinZoom
	}
	if zoom > v.cfg.MaxZoom {
		return v.cfg.MaxZoom
	}
	return zoom
}

func (v *View) center() Point {
	return Point{X: v.container.W / 2, Y: v.container.H / 2}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
