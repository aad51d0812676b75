package view

import (
	"math"
	"testing"
)

type stubView struct {
	zoom, offset, duration float64
}

func (s stubView) Zoom() float64     { return s.zoom }
func (s stubView) Offset() float64   { return s.offset }
func (s stubView) Duration() float64 { return s.duration }

func TestTickIntervalSelection(t *testing.T) {
	cases := []struct {
		zoom float64
		want float64
	}{
		{200, 0.5},  // 0.1*200=20 < 50, 0.5*200=100 >= 50
		{50, 1},     // 1*50 = 50 meets the threshold exactly
		{25, 5},     // 1*25=25 too tight, 5*25=125 fine
		{10, 5},     // min zoom
		{500, 0.1},  // out-of-contract zoom still resolves
	}
	for _, tc := range cases {
		if got := TickInterval(tc.zoom); got != tc.want {
			t.Errorf("TickInterval(%v) = %v, want %v", tc.zoom, got, tc.want)
		}
	}
}

func TestRulerVisibleWindow(t *testing.T) {
	// zoom=50px/s, viewport=800px, offset=0: window [0,16]s at 1s ticks.
	vs := stubView{zoom: 50, offset: 0, duration: 120}
	ticks := Ruler(vs, 800)

	if len(ticks) != 17 {
		t.Fatalf("expected 17 ticks covering [0,16], got %d", len(ticks))
	}
	if ticks[0].Time != 0 {
		t.Errorf("first tick at %v, want 0", ticks[0].Time)
	}
	if math.Abs(ticks[len(ticks)-1].Time-16) > 1e-9 {
		t.Errorf("last tick at %v, want 16", ticks[len(ticks)-1].Time)
	}
}

func TestRulerMajorEveryFifth(t *testing.T) {
	vs := stubView{zoom: 50, offset: 0, duration: 120}
	for _, tick := range Ruler(vs, 800) {
		idx := int(math.Round(tick.Time / 1.0))
		wantMajor := idx%5 == 0
		if tick.IsMajor != wantMajor {
			t.Errorf("tick at %v: isMajor=%v, want %v", tick.Time, tick.IsMajor, wantMajor)
		}
		if tick.IsMajor && tick.Label == "" {
			t.Errorf("major tick at %v has no label", tick.Time)
		}
		if !tick.IsMajor && tick.Label != "" {
			t.Errorf("minor tick at %v unexpectedly labeled %q", tick.Time, tick.Label)
		}
	}
}

func TestRulerClampsToProjectEnd(t *testing.T) {
	// Window would reach 16s but the project ends at 10s.
	vs := stubView{zoom: 50, offset: 0, duration: 10}
	ticks := Ruler(vs, 800)

	last := ticks[len(ticks)-1]
	if last.Time > 10 {
		t.Errorf("tick past project end: %v", last.Time)
	}
	if math.Abs(last.Time-10) > 1e-9 {
		t.Errorf("expected final tick at 10, got %v", last.Time)
	}
}

func TestRulerScrolledWindow(t *testing.T) {
	// offset=500px at 50px/s puts the window at [10,26]s.
	vs := stubView{zoom: 50, offset: 500, duration: 120}
	ticks := Ruler(vs, 800)

	if ticks[0].Time != 10 {
		t.Errorf("first tick at %v, want 10", ticks[0].Time)
	}
	for _, tick := range ticks {
		if tick.Time < 10-1e-9 || tick.Time > 26+1e-9 {
			t.Errorf("tick %v outside window [10,26]", tick.Time)
		}
	}
}

func TestRulerLabels(t *testing.T) {
	vs := stubView{zoom: 50, offset: 0, duration: 600}
	ticks := Ruler(vs, 800)
	// 1s interval, major at 0,5,10,15.
	for _, tick := range ticks {
		if tick.Time == 5 && tick.Label != "00:05" {
			t.Errorf("label at 5s = %q, want 00:05", tick.Label)
		}
	}

	// Sub-second interval keeps decimals.
	fine := Ruler(stubView{zoom: 200, offset: 0, duration: 10}, 800)
	for _, tick := range fine {
		if math.Abs(tick.Time-2.5) < 1e-9 && tick.Label != "2.5s" {
			t.Errorf("label at 2.5s = %q, want 2.5s", tick.Label)
		}
	}
}
