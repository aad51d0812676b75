package view

import (
	"math"
	"testing"

	"Bt1Cut/core/timeline"
)

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	m := timeline.New("zoom", 120, 50)
	m.SetOffset(200)
	zp := NewZoomPan(m, 800)

	pointer := 400.0
	anchorBefore := TransformOf(m).PixelToTime(pointer)

	zp.ZoomAt(pointer, 1.5)

	anchorAfter := TransformOf(m).PixelToTime(pointer)
	if math.Abs(anchorBefore-anchorAfter) > 1e-9 {
		t.Errorf("anchor drifted: %v -> %v", anchorBefore, anchorAfter)
	}
	if m.Zoom() != 75 {
		t.Errorf("zoom = %v, want 75", m.Zoom())
	}
}

func TestZoomAtClampsZoom(t *testing.T) {
	m := timeline.New("zoom", 120, 180)
	zp := NewZoomPan(m, 800)

	zp.ZoomAt(0, 10)
	if m.Zoom() != timeline.MaxZoom {
		t.Errorf("zoom should clamp to %v, got %v", timeline.MaxZoom, m.Zoom())
	}

	zp.ZoomAt(0, 0.001)
	if m.Zoom() != timeline.MinZoom {
		t.Errorf("zoom should clamp to %v, got %v", timeline.MinZoom, m.Zoom())
	}
}

func TestPanClampsToContentBounds(t *testing.T) {
	// 120s at 50px/s is 6000px of content in an 800px viewport.
	m := timeline.New("pan", 120, 50)
	zp := NewZoomPan(m, 800)

	zp.Pan(-100)
	if m.Offset() != 0 {
		t.Errorf("pan before content start: offset = %v, want 0", m.Offset())
	}

	zp.Pan(1e9)
	if m.Offset() != 5200 {
		t.Errorf("pan past content end: offset = %v, want 5200", m.Offset())
	}
}

func TestPanPinnedForNarrowContent(t *testing.T) {
	// 10s at 10px/s is 100px of content, narrower than the viewport.
	m := timeline.New("pan", 10, 10)
	zp := NewZoomPan(m, 800)

	zp.Pan(50)
	if m.Offset() != 0 {
		t.Errorf("narrow content must pin offset to 0, got %v", m.Offset())
	}
}
