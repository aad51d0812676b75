package view

import (
	"math"
	"testing"
)

func TestPixelTimeRoundTrip(t *testing.T) {
	cases := []struct {
		zoom, offset float64
	}{
		{10, 0},
		{50, 0},
		{50, 320},
		{200, 1234.5},
		{37.5, 991.25},
	}
	times := []float64{0, 0.033, 1, 59.97, 120, 3600}

	for _, tc := range cases {
		tf := Transform{Zoom: tc.zoom, Offset: tc.offset}
		for _, sec := range times {
			got := tf.PixelToTime(tf.TimeToPixel(sec))
			if math.Abs(got-sec) > 1e-9 {
				t.Errorf("zoom=%v offset=%v: round trip of %v gave %v", tc.zoom, tc.offset, sec, got)
			}
		}
	}
}

func TestPixelToTimeFormula(t *testing.T) {
	tf := Transform{Zoom: 50, Offset: 100}

	// (px + offset) / zoom
	if got := tf.PixelToTime(150); math.Abs(got-5) > 1e-9 {
		t.Errorf("PixelToTime(150) = %v, want 5", got)
	}
	// t*zoom - offset
	if got := tf.TimeToPixel(5); math.Abs(got-150) > 1e-9 {
		t.Errorf("TimeToPixel(5) = %v, want 150", got)
	}
}
