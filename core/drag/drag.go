package drag

import (
	"fmt"
	"math"

	"Bt1Cut/core/timeline"
	"Bt1Cut/logger"
)

// State of the drag session.
type State int

const (
	Idle State = iota
	Dragging
)

// Result describes a finished drop.
type Result struct {
	ClipID  string  `json:"clipId"`
	TrackID string  `json:"trackId"`
	Start   float64 `json:"start"`
	Moved   bool    `json:"moved"` // false when dropped back on the unchanged position
}

// Controller manages a single active drag session against the model. All
// candidate positions are quantized to the project frame grid before any
// validation; the model is only touched on a successful drop.
type Controller struct {
	model     *timeline.Model
	frameRate float64

	state         State
	clipID        string
	sourceTrackID string
	origStart     float64
	pointerOffset float64 // pointer time minus clip start at grab
}

// NewController creates a drag controller. frameRate is the project frame
// rate; the snap grid is 1/frameRate seconds.
func NewController(m *timeline.Model, frameRate float64) *Controller {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Controller{model: m, frameRate: frameRate}
}

// State returns the current session state.
func (c *Controller) State() State { return c.state }

// FrameDuration returns the snap grid step in seconds.
func (c *Controller) FrameDuration() float64 { return 1 / c.frameRate }

// Snap quantizes a candidate start time to the nearest frame boundary,
// clamped to >= 0.
func (c *Controller) Snap(t float64) float64 {
	fd := c.FrameDuration()
	snapped := math.Round(t/fd) * fd
	return math.Max(0, snapped)
}

// Grab opens a drag session on a clip. The pointer offset is recorded so
// the grab point stays fixed under the cursor for the whole drag.
func (c *Controller) Grab(trackID, clipID string, pointerTime float64) error {
	tr, err := c.model.TrackByID(trackID)
	if err != nil {
		return err
	}
	clip := tr.ClipByID(clipID)
	if clip == nil {
		return fmt.Errorf("%w: clip %s on track %s", timeline.ErrNotFound, clipID, trackID)
	}
	if tr.Locked {
		return fmt.Errorf("%w: track %s is locked", timeline.ErrValidation, trackID)
	}
	if clip.Locked {
		return fmt.Errorf("%w: clip %s is locked", timeline.ErrValidation, clipID)
	}

	c.state = Dragging
	c.clipID = clipID
	c.sourceTrackID = trackID
	c.origStart = clip.StartTime
	c.pointerOffset = pointerTime - clip.StartTime
	return nil
}

// Move computes the snapped candidate start for the current pointer
// position. Pure preview: the model is not touched and no validation runs
// until Drop.
func (c *Controller) Move(pointerTime float64) (float64, error) {
	if c.state != Dragging {
		return 0, fmt.Errorf("%w: no drag in progress", timeline.ErrValidation)
	}
	return c.Snap(pointerTime - c.pointerOffset), nil
}

// Drop ends the session, committing a MoveClip at the snapped position on
// targetTrackID. Overlap rejection leaves the model untouched; the caller
// animates the clip back to its pre-drag position. Dropping on the
// unchanged position is a successful no-op.
func (c *Controller) Drop(targetTrackID string, pointerTime float64) (Result, error) {
	if c.state != Dragging {
		return Result{}, fmt.Errorf("%w: no drag in progress", timeline.ErrValidation)
	}
	snapped := c.Snap(pointerTime - c.pointerOffset)
	res := Result{ClipID: c.clipID, TrackID: targetTrackID, Start: snapped}

	// The session is over whatever happens below.
	defer c.reset()

	if targetTrackID == c.sourceTrackID && snapped == c.origStart {
		return res, nil
	}

	if err := c.model.MoveClip(c.sourceTrackID, targetTrackID, c.clipID, snapped); err != nil {
		logger.Debug("drop rejected",
			logger.String("clipId", c.clipID),
			logger.Float64("candidate", snapped),
			logger.ErrorField(err),
		)
		res.TrackID = c.sourceTrackID
		res.Start = c.origStart
		return res, err
	}
	res.Moved = true
	return res, nil
}

// Cancel aborts the session with no mutation (Escape).
func (c *Controller) Cancel() {
	c.reset()
}

func (c *Controller) reset() {
	c.state = Idle
	c.clipID = ""
	c.sourceTrackID = ""
	c.origStart = 0
	c.pointerOffset = 0
}

// Nudge shifts a focused clip by one frame (or one second with a modifier
// held), subject to the same validation as a drop. Rejected while a pointer
// drag is active.
func (c *Controller) Nudge(trackID, clipID string, forward, bySecond bool) error {
	if c.state == Dragging {
		return fmt.Errorf("%w: nudge rejected during an active drag", timeline.ErrValidation)
	}
	tr, err := c.model.TrackByID(trackID)
	if err != nil {
		return err
	}
	clip := tr.ClipByID(clipID)
	if clip == nil {
		return fmt.Errorf("%w: clip %s on track %s", timeline.ErrNotFound, clipID, trackID)
	}
	if clip.Locked || tr.Locked {
		return fmt.Errorf("%w: clip %s is locked", timeline.ErrValidation, clipID)
	}

	step := c.FrameDuration()
	if bySecond {
		step = 1
	}
	if !forward {
		step = -step
	}
	newStart := math.Max(0, clip.StartTime+step)
	if newStart == clip.StartTime {
		return nil
	}
	return c.model.MoveClip(trackID, trackID, clipID, newStart)
}
