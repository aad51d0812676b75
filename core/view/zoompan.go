package view

import "math"

// ViewControl is the mutable view surface of the timeline model.
type ViewControl interface {
	ViewState
	SetZoom(z float64)
	SetOffset(o float64)
}

// ZoomPan adjusts the model's zoom and offset. It holds a reference to the
// model, never a copy.
type ZoomPan struct {
	model         ViewControl
	viewportWidth float64
}

// NewZoomPan creates a controller for the given model and viewport width.
func NewZoomPan(m ViewControl, viewportWidth float64) *ZoomPan {
	return &ZoomPan{model: m, viewportWidth: viewportWidth}
}

// SetViewportWidth follows window resizes.
func (zp *ZoomPan) SetViewportWidth(w float64) {
	if w > 0 {
		zp.viewportWidth = w
	}
}

// ZoomAt rescales around the pointer: the time currently under pointerPx
// stays under pointerPx after the zoom changes.
func (zp *ZoomPan) ZoomAt(pointerPx, factor float64) {
	anchor := TransformOf(zp.model).PixelToTime(pointerPx)

	zp.model.SetZoom(zp.model.Zoom() * factor)
	// SetZoom clamps, so re-read the committed value before re-anchoring.
	newZoom := zp.model.Zoom()

	zp.model.SetOffset(anchor*newZoom - pointerPx)
}

// Pan scrolls horizontally by deltaPx. The offset is pinned so the view can
// never move before content start, nor past content end when the content is
// wider than the viewport; narrower content pins to 0.
func (zp *ZoomPan) Pan(deltaPx float64) {
	maxOffset := math.Max(0, zp.model.Duration()*zp.model.Zoom()-zp.viewportWidth)
	target := zp.model.Offset() + deltaPx
	if target < 0 {
		target = 0
	} else if target > maxOffset {
		target = maxOffset
	}
	zp.model.SetOffset(target)
}
