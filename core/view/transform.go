package view

// Transform maps between timeline seconds and screen pixels for one
// (zoom, offset) pair. It is recomputed from the model on demand and never
// cached; both directions are exact inverses up to float rounding.
type Transform struct {
	Zoom   float64 // pixels per second
	Offset float64 // horizontal scroll, pixels
}

// PixelToTime converts a viewport-relative pixel position to seconds.
func (tf Transform) PixelToTime(px float64) float64 {
	return (px + tf.Offset) / tf.Zoom
}

// TimeToPixel converts seconds to a viewport-relative pixel position.
func (tf Transform) TimeToPixel(t float64) float64 {
	return t*tf.Zoom - tf.Offset
}

// ViewState is the subset of the timeline model the view layer reads.
// *timeline.Model satisfies it.
type ViewState interface {
	Zoom() float64
	Offset() float64
	Duration() float64
}

// TransformOf snapshots the model's current mapping.
func TransformOf(vs ViewState) Transform {
	return Transform{Zoom: vs.Zoom(), Offset: vs.Offset()}
}
