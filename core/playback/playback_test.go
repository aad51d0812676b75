package playback

import (
	"errors"
	"math"
	"testing"
	"time"

	"Bt1Cut/core/timeline"
	"Bt1Cut/model"
)

func newPlaybackFixture() (*timeline.Model, *Controller) {
	m := timeline.New("playback", 10, 50)
	return m, NewController(m)
}

func TestPlayIsIdempotent(t *testing.T) {
	m, c := newPlaybackFixture()

	base := time.Now()
	c.Play()
	c.Tick(base)
	c.Tick(base.Add(500 * time.Millisecond))

	// A second Play while Playing must not reset the tick baseline: the
	// next delta continues from the last tick.
	c.Play()
	c.Tick(base.Add(1 * time.Second))

	if math.Abs(m.CurrentTime()-1.0) > 1e-9 {
		t.Errorf("currentTime = %v, want 1.0 (duplicate Play must not restart the clock)", m.CurrentTime())
	}
	if c.Status() != Playing {
		t.Errorf("status = %v, want Playing", c.Status())
	}
}

func TestSeekClamps(t *testing.T) {
	m, c := newPlaybackFixture()

	c.SeekTo(15)
	if m.CurrentTime() != 10 {
		t.Errorf("seekTo(duration+5) should clamp to 10, got %v", m.CurrentTime())
	}
	c.SeekTo(-5)
	if m.CurrentTime() != 0 {
		t.Errorf("seekTo(-5) should clamp to 0, got %v", m.CurrentTime())
	}
	if c.Status() != Stopped {
		t.Errorf("seek must not change play state, got %v", c.Status())
	}
}

func TestPauseRetainsPlayhead(t *testing.T) {
	m, c := newPlaybackFixture()

	base := time.Now()
	c.Play()
	c.Tick(base)
	c.Tick(base.Add(2 * time.Second))
	c.Pause()

	if c.Status() != Paused {
		t.Fatalf("status = %v, want Paused", c.Status())
	}
	if math.Abs(m.CurrentTime()-2.0) > 1e-9 {
		t.Errorf("pause must retain currentTime, got %v", m.CurrentTime())
	}

	// Ticks while paused are ignored.
	c.Tick(base.Add(5 * time.Second))
	if math.Abs(m.CurrentTime()-2.0) > 1e-9 {
		t.Errorf("tick while paused moved the playhead to %v", m.CurrentTime())
	}
}

func TestStopResetsPlayhead(t *testing.T) {
	m, c := newPlaybackFixture()

	base := time.Now()
	c.Play()
	c.Tick(base)
	c.Tick(base.Add(3 * time.Second))
	c.Stop()

	if c.Status() != Stopped {
		t.Errorf("status = %v, want Stopped", c.Status())
	}
	if m.CurrentTime() != 0 {
		t.Errorf("stop must reset currentTime to 0, got %v", m.CurrentTime())
	}
}

func TestReachingEndClampsAndStops(t *testing.T) {
	m, c := newPlaybackFixture()
	m.SetCurrentTime(9.7)

	var ended bool
	m.Subscribe(func(ev model.Event) {
		if ev.Type == model.EventPlaybackEnded {
			ended = true
		}
	})

	base := time.Now()
	c.Play()
	c.Tick(base)
	// delta=0.5s from 9.7 overshoots the 10s project.
	c.Tick(base.Add(500 * time.Millisecond))

	if math.Abs(m.CurrentTime()-10.0) > 1e-9 {
		t.Errorf("currentTime = %v, want 10.0 (clamped, not 10.2)", m.CurrentTime())
	}
	if c.Status() != Stopped {
		t.Errorf("status = %v, want Stopped after reaching the end", c.Status())
	}
	if !ended {
		t.Error("terminal playback event was not emitted")
	}
}

func TestNonMonotonicTickIgnored(t *testing.T) {
	m, c := newPlaybackFixture()

	base := time.Now()
	c.Play()
	c.Tick(base)
	c.Tick(base.Add(1 * time.Second))

	err := c.Tick(base) // one second into the past
	if !errors.Is(err, timeline.ErrClock) {
		t.Fatalf("expected ErrClock, got %v", err)
	}
	if math.Abs(m.CurrentTime()-1.0) > 1e-9 {
		t.Errorf("bad tick must not move the playhead, got %v", m.CurrentTime())
	}
	if c.Status() != Playing {
		t.Errorf("bad tick must not change state, got %v", c.Status())
	}

	// A later sane tick resumes from the last good baseline.
	c.Tick(base.Add(2 * time.Second))
	if math.Abs(m.CurrentTime()-2.0) > 1e-9 {
		t.Errorf("recovery tick: currentTime = %v, want 2.0", m.CurrentTime())
	}
}

func TestResumeAfterPauseDoesNotCountPausedTime(t *testing.T) {
	m, c := newPlaybackFixture()

	base := time.Now()
	c.Play()
	c.Tick(base)
	c.Tick(base.Add(1 * time.Second))
	c.Pause()

	// Ten seconds of wall clock pass while paused.
	c.Play()
	c.Tick(base.Add(11 * time.Second)) // baseline only
	c.Tick(base.Add(12 * time.Second))

	if math.Abs(m.CurrentTime()-2.0) > 1e-9 {
		t.Errorf("currentTime = %v, want 2.0 (paused time must not advance the playhead)", m.CurrentTime())
	}
}
