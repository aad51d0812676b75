package view

import (
	"fmt"
	"math"
)

// Tick is one ruler marker. Major ticks carry a label.
type Tick struct {
	Time    float64 `json:"time"`
	Label   string  `json:"label,omitempty"`
	IsMajor bool    `json:"isMajor"`
}

// tickIntervals is the candidate spacing table in seconds. The generator
// picks the smallest entry that still renders legibly at the current zoom.
var tickIntervals = []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600}

// minTickSpacingPx is the legibility floor between adjacent ticks.
const minTickSpacingPx = 50.0

// majorEvery marks every Nth tick as major.
const majorEvery = 5

// TickInterval returns the interval used at the given zoom.
func TickInterval(zoom float64) float64 {
	for _, iv := range tickIntervals {
		if iv*zoom >= minTickSpacingPx {
			return iv
		}
	}
	// At MinZoom the largest table entry already satisfies the spacing,
	// so this is only reachable with out-of-contract zoom values.
	return tickIntervals[len(tickIntervals)-1]
}

// Ruler generates the visible tick marks for the window
// [offset/zoom, (offset+viewport)/zoom] intersected with [0, duration].
// Output is recomputed on every call; cost is proportional to the number
// of visible ticks, not to project length.
func Ruler(vs ViewState, viewportWidth float64) []Tick {
	zoom := vs.Zoom()
	interval := TickInterval(zoom)

	winStart := vs.Offset() / zoom
	winEnd := (vs.Offset() + viewportWidth) / zoom
	if winStart < 0 {
		winStart = 0
	}
	if d := vs.Duration(); winEnd > d {
		winEnd = d
	}
	if winEnd < winStart {
		return nil
	}

	// Index-based stepping avoids accumulating float error across a long
	// window.
	first := int(math.Ceil(winStart/interval - 1e-9))
	last := int(math.Floor(winEnd/interval + 1e-9))

	ticks := make([]Tick, 0, last-first+1)
	for i := first; i <= last; i++ {
		t := float64(i) * interval
		major := i%majorEvery == 0
		tick := Tick{Time: t, IsMajor: major}
		if major {
			tick.Label = formatTickLabel(t, interval)
		}
		ticks = append(ticks, tick)
	}
	return ticks
}

// formatTickLabel renders sub-second intervals with one decimal, everything
// else as mm:ss.
func formatTickLabel(t, interval float64) string {
	if interval < 1 {
		return fmt.Sprintf("%.1fs", t)
	}
	total := int(math.Round(t))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
