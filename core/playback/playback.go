package playback

import (
	"fmt"
	"time"

	"Bt1Cut/core/timeline"
	"Bt1Cut/logger"
	"Bt1Cut/model"
)

// Status 播放状态
type Status string

const (
	Stopped Status = "stopped"
	Playing Status = "playing"
	Paused  Status = "paused"
)

// Controller drives the playhead forward on an externally supplied clock
// tick. It consumes time; frames for the playhead position come from the
// decode engine, which is not this package's concern.
type Controller struct {
	model  *timeline.Model
	status Status

	lastTick time.Time
	hasTick  bool
}

// NewController creates a stopped controller bound to the model.
func NewController(m *timeline.Model) *Controller {
	return &Controller{model: m, status: Stopped}
}

// Status returns the current playback state.
func (c *Controller) Status() Status { return c.status }

// Play transitions Stopped|Paused into Playing. Calling it while already
// Playing is idempotent: no second clock is started and the tick baseline
// is unchanged.
func (c *Controller) Play() {
	if c.status == Playing {
		return
	}
	c.status = Playing
	c.hasTick = false // next tick only establishes the baseline
	c.publishState()
}

// Pause halts the clock, keeping the playhead where it is.
func (c *Controller) Pause() {
	if c.status != Playing {
		return
	}
	c.status = Paused
	c.publishState()
}

// Stop halts playback from any state and resets the playhead to 0.
func (c *Controller) Stop() {
	wasStopped := c.status == Stopped
	c.status = Stopped
	c.hasTick = false
	c.model.SetCurrentTime(0)
	if !wasStopped {
		c.publishState()
	}
}

// SeekTo moves the playhead, clamped into [0, duration] by the model. The
// play/pause state is untouched.
func (c *Controller) SeekTo(t float64) {
	c.model.SetCurrentTime(t)
}

// Tick advances the playhead by the wall-clock delta since the previous
// tick. Ticks while not Playing are ignored. A non-monotonic timestamp is
// a ClockError: the tick is dropped, logged, and the baseline kept so a
// later sane tick resumes cleanly.
func (c *Controller) Tick(now time.Time) error {
	if c.status != Playing {
		return nil
	}
	if !c.hasTick {
		c.lastTick = now
		c.hasTick = true
		return nil
	}

	delta := now.Sub(c.lastTick)
	if delta < 0 {
		logger.Warn("non-monotonic playback tick ignored",
			logger.Duration("delta", delta),
		)
		return fmt.Errorf("%w: tick went backwards by %s", timeline.ErrClock, -delta)
	}
	c.lastTick = now

	target := c.model.CurrentTime() + delta.Seconds()
	if target >= c.model.Duration() {
		// Clamp to the end, then stop and emit the terminal event.
		c.model.SetCurrentTime(c.model.Duration())
		c.status = Stopped
		c.hasTick = false
		c.publishState()
		c.model.Publish(model.Event{Type: model.EventPlaybackEnded, Time: c.model.Duration()})
		return nil
	}
	c.model.SetCurrentTime(target)
	return nil
}

func (c *Controller) publishState() {
	c.model.Publish(model.Event{Type: model.EventPlaybackState, State: string(c.status)})
}
