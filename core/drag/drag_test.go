package drag

import (
	"errors"
	"math"
	"strings"
	"testing"

	"Bt1Cut/core/timeline"
	"Bt1Cut/model"
)

func newDragFixture(t *testing.T) (*timeline.Model, *Controller, string, string) {
	t.Helper()
	m := timeline.New("drag", 120, 50)
	trackID, err := m.AddTrack(model.MediaVideo, "V1")
	if err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	clipID, err := m.AddClip(trackID, model.Clip{
		Type: model.MediaVideo, Name: "A", StartTime: 0, Duration: 5,
	})
	if err != nil {
		t.Fatalf("AddClip: %v", err)
	}
	return m, NewController(m, 30), trackID, clipID
}

func TestSnapToFrameGrid(t *testing.T) {
	_, c, _, _ := newDragFixture(t)

	// At 30fps, 1.012s snaps to 1.0s, not 1/30-multiples above it.
	if got := c.Snap(1.012); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Snap(1.012) = %v, want 1.0", got)
	}
	// 1.02 is closer to 1.0333... (31/30) than to 1.0.
	if got := c.Snap(1.02); math.Abs(got-31.0/30.0) > 1e-9 {
		t.Errorf("Snap(1.02) = %v, want %v", got, 31.0/30.0)
	}
	if got := c.Snap(-0.01); got != 0 {
		t.Errorf("Snap must clamp to 0, got %v", got)
	}
}

func TestDragCommitsSnappedPosition(t *testing.T) {
	m, c, trackID, clipID := newDragFixture(t)

	// Grab at pointer time 2.0 over a clip starting at 0: offset 2.0.
	if err := c.Grab(trackID, clipID, 2.0); err != nil {
		t.Fatalf("Grab: %v", err)
	}

	// Pointer at 12.012 puts the candidate at 10.012 which snaps to 10.0.
	res, err := c.Drop(trackID, 12.012)
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if !res.Moved {
		t.Error("expected a committed move")
	}
	if math.Abs(res.Start-10.0) > 1e-9 {
		t.Errorf("committed start = %v, want 10.0", res.Start)
	}

	_, clip, _ := m.ClipByID(clipID)
	if math.Abs(clip.StartTime-10.0) > 1e-9 {
		t.Errorf("model start = %v, want 10.0", clip.StartTime)
	}
	if c.State() != Idle {
		t.Error("controller should return to Idle after drop")
	}
}

func TestDragPointerOffsetKeepsGrabPoint(t *testing.T) {
	_, c, trackID, clipID := newDragFixture(t)

	if err := c.Grab(trackID, clipID, 3.0); err != nil {
		t.Fatalf("Grab: %v", err)
	}
	// Pointer moved to 7.0; the grab point was 3s into the clip, so the
	// candidate start is 4.0.
	got, err := c.Move(7.0)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if math.Abs(got-4.0) > 1e-9 {
		t.Errorf("candidate = %v, want 4.0", got)
	}
}

func TestDropOverlapRejectedAndClipStays(t *testing.T) {
	m, c, trackID, _ := newDragFixture(t)
	clipB, err := m.AddClip(trackID, model.Clip{
		Type: model.MediaVideo, Name: "B", StartTime: 5, Duration: 5,
	})
	if err != nil {
		t.Fatalf("AddClip B: %v", err)
	}

	if err := c.Grab(trackID, clipB, 5.0); err != nil {
		t.Fatalf("Grab: %v", err)
	}
	// Candidate start 2.0 spans [2,7) and overlaps A [0,5).
	res, err := c.Drop(trackID, 2.0)
	if !errors.Is(err, timeline.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if res.Start != 5 || res.Moved {
		t.Errorf("snap-back result should point at the pre-drag position, got %+v", res)
	}

	_, clip, _ := m.ClipByID(clipB)
	if clip.StartTime != 5 {
		t.Errorf("clip must stay at 5 after rejected drop, got %v", clip.StartTime)
	}
	if c.State() != Idle {
		t.Error("session must end even on rejection")
	}
}

func TestDropOnOwnPositionIsNoOp(t *testing.T) {
	m, c, trackID, clipID := newDragFixture(t)

	events := 0
	m.Subscribe(func(model.Event) { events++ })

	if err := c.Grab(trackID, clipID, 1.0); err != nil {
		t.Fatalf("Grab: %v", err)
	}
	res, err := c.Drop(trackID, 1.0)
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if res.Moved {
		t.Error("dropping on the unchanged position must not count as a move")
	}
	if events != 0 {
		t.Errorf("no-op drop must not emit events, got %d", events)
	}
}

func TestCancelLeavesModelUntouched(t *testing.T) {
	m, c, trackID, clipID := newDragFixture(t)

	if err := c.Grab(trackID, clipID, 1.0); err != nil {
		t.Fatalf("Grab: %v", err)
	}
	c.Cancel()

	_, clip, _ := m.ClipByID(clipID)
	if clip.StartTime != 0 {
		t.Errorf("cancel must not move the clip, got start=%v", clip.StartTime)
	}
	if c.State() != Idle {
		t.Error("cancel must return to Idle")
	}
	if _, err := c.Move(5); !errors.Is(err, timeline.ErrValidation) {
		t.Errorf("Move without a session should be rejected, got %v", err)
	}
}

func TestGrabLockedClipRejected(t *testing.T) {
	m, c, trackID, _ := newDragFixture(t)
	locked, err := m.AddClip(trackID, model.Clip{
		Type: model.MediaVideo, Name: "L", StartTime: 20, Duration: 2, Locked: true,
	})
	if err != nil {
		t.Fatalf("AddClip: %v", err)
	}

	err = c.Grab(trackID, locked, 20)
	if !errors.Is(err, timeline.ErrValidation) {
		t.Errorf("expected ErrValidation grabbing a locked clip, got %v", err)
	}
	// The rejection names the clip, not just the bare sentinel.
	if err != nil && !strings.Contains(err.Error(), locked) {
		t.Errorf("error %q should mention clip %s", err, locked)
	}
}

func TestGrabUnknownClipWrapsNotFound(t *testing.T) {
	_, c, trackID, _ := newDragFixture(t)

	err := c.Grab(trackID, "ghost", 0)
	if !errors.Is(err, timeline.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error %q should mention the clip id", err)
	}
}

func TestNudgeByFrameAndSecond(t *testing.T) {
	m, c, trackID, clipID := newDragFixture(t)

	if err := c.Nudge(trackID, clipID, true, false); err != nil {
		t.Fatalf("Nudge: %v", err)
	}
	_, clip, _ := m.ClipByID(clipID)
	if math.Abs(clip.StartTime-1.0/30.0) > 1e-9 {
		t.Errorf("one-frame nudge: start = %v, want %v", clip.StartTime, 1.0/30.0)
	}

	if err := c.Nudge(trackID, clipID, true, true); err != nil {
		t.Fatalf("Nudge by second: %v", err)
	}
	if math.Abs(clip.StartTime-(1+1.0/30.0)) > 1e-9 {
		t.Errorf("one-second nudge: start = %v", clip.StartTime)
	}
}

func TestNudgeClampsAtZero(t *testing.T) {
	m, c, trackID, clipID := newDragFixture(t)

	if err := c.Nudge(trackID, clipID, false, false); err != nil {
		t.Fatalf("Nudge: %v", err)
	}
	_, clip, _ := m.ClipByID(clipID)
	if clip.StartTime != 0 {
		t.Errorf("backward nudge at 0 must clamp, got %v", clip.StartTime)
	}
}

func TestNudgeIntoOverlapRejected(t *testing.T) {
	m, c, trackID, _ := newDragFixture(t)
	clipB, err := m.AddClip(trackID, model.Clip{
		Type: model.MediaVideo, Name: "B", StartTime: 5, Duration: 5,
	})
	if err != nil {
		t.Fatalf("AddClip B: %v", err)
	}

	// B sits flush against A; one frame backwards would overlap.
	if err := c.Nudge(trackID, clipB, false, false); !errors.Is(err, timeline.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	_, clip, _ := m.ClipByID(clipB)
	if clip.StartTime != 5 {
		t.Errorf("rejected nudge must not move the clip, got %v", clip.StartTime)
	}
}
