package timeline

import (
	"errors"
	"testing"

	"Bt1Cut/model"
)

func newTestModel(t *testing.T) (*Model, string) {
	t.Helper()
	m := New("Test Project", 120, 50)
	trackID, err := m.AddTrack(model.MediaVideo, "V1")
	if err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}
	return m, trackID
}

func addClip(t *testing.T, m *Model, trackID string, start, duration float64) string {
	t.Helper()
	id, err := m.AddClip(trackID, model.Clip{
		Type:      model.MediaVideo,
		Name:      "clip",
		StartTime: start,
		Duration:  duration,
	})
	if err != nil {
		t.Fatalf("AddClip(%v, %v) failed: %v", start, duration, err)
	}
	return id
}

func TestAddClipRejectsNonPositiveDuration(t *testing.T) {
	m, trackID := newTestModel(t)

	_, err := m.AddClip(trackID, model.Clip{Type: model.MediaVideo, StartTime: 0, Duration: 0})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for zero duration, got %v", err)
	}

	_, err = m.AddClip(trackID, model.Clip{Type: model.MediaVideo, StartTime: 0, Duration: -1})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for negative duration, got %v", err)
	}
}

func TestAddClipRejectsTypeMismatch(t *testing.T) {
	m, trackID := newTestModel(t)

	_, err := m.AddClip(trackID, model.Clip{Type: model.MediaAudio, StartTime: 0, Duration: 5})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for audio clip on video track, got %v", err)
	}
}

func TestAddClipRejectsOverlap(t *testing.T) {
	m, trackID := newTestModel(t)
	addClip(t, m, trackID, 0, 5)

	// [3, 8) intersects [0, 5)
	_, err := m.AddClip(trackID, model.Clip{Type: model.MediaVideo, StartTime: 3, Duration: 5})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for overlapping clip, got %v", err)
	}

	// Touching end-to-end is not an overlap.
	if _, err := m.AddClip(trackID, model.Clip{Type: model.MediaVideo, StartTime: 5, Duration: 5}); err != nil {
		t.Errorf("adjacent clip should be accepted: %v", err)
	}
}

func TestMoveClipRejectionLeavesClipInPlace(t *testing.T) {
	m, trackID := newTestModel(t)
	addClip(t, m, trackID, 0, 5) // A [0,5)
	clipB := addClip(t, m, trackID, 5, 5)

	// Moving B to start=2 would span [2,7) and overlap A.
	err := m.MoveClip(trackID, trackID, clipB, 2)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	_, clip, err := m.ClipByID(clipB)
	if err != nil {
		t.Fatalf("clip B disappeared: %v", err)
	}
	if clip.StartTime != 5 {
		t.Errorf("clip B should remain at start=5, got %v", clip.StartTime)
	}
}

func TestMoveClipAcrossTracks(t *testing.T) {
	m, trackA := newTestModel(t)
	trackB, err := m.AddTrack(model.MediaVideo, "V2")
	if err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}
	clipID := addClip(t, m, trackA, 0, 5)

	if err := m.MoveClip(trackA, trackB, clipID, 10); err != nil {
		t.Fatalf("cross-track move failed: %v", err)
	}

	tr, clip, err := m.ClipByID(clipID)
	if err != nil {
		t.Fatalf("clip lost after move: %v", err)
	}
	if tr.ID != trackB {
		t.Errorf("clip should live on track B, got %s", tr.ID)
	}
	if clip.TrackID != trackB {
		t.Errorf("clip back-reference not updated: %s", clip.TrackID)
	}
	if clip.StartTime != 10 {
		t.Errorf("expected start=10, got %v", clip.StartTime)
	}

	src, _ := m.TrackByID(trackA)
	if len(src.Clips) != 0 {
		t.Errorf("source track should be empty, has %d clips", len(src.Clips))
	}
}

func TestMoveClipRejectsTypeMismatchAcrossTracks(t *testing.T) {
	m, videoTrack := newTestModel(t)
	audioTrack, _ := m.AddTrack(model.MediaAudio, "A1")
	clipID := addClip(t, m, videoTrack, 0, 5)

	err := m.MoveClip(videoTrack, audioTrack, clipID, 0)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation moving video clip onto audio track, got %v", err)
	}
}

func TestUpdateClipRevalidatesOverlap(t *testing.T) {
	m, trackID := newTestModel(t)
	clipA := addClip(t, m, trackID, 0, 5)
	addClip(t, m, trackID, 5, 5)

	// Growing A to 6s would reach into B.
	newDur := 6.0
	err := m.UpdateClip(trackID, clipA, ClipUpdate{Duration: &newDur})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	_, clip, _ := m.ClipByID(clipA)
	if clip.Duration != 5 {
		t.Errorf("rejected update must not change duration, got %v", clip.Duration)
	}

	// Trimming A to 3s is fine.
	newDur = 3.0
	if err := m.UpdateClip(trackID, clipA, ClipUpdate{Duration: &newDur}); err != nil {
		t.Errorf("trim should succeed: %v", err)
	}
}

func TestUpdateClipRejectsNonPositiveDuration(t *testing.T) {
	m, trackID := newTestModel(t)
	clipID := addClip(t, m, trackID, 0, 5)

	zero := 0.0
	if err := m.UpdateClip(trackID, clipID, ClipUpdate{Duration: &zero}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for duration=0, got %v", err)
	}
}

func TestNoOverlapInvariantAfterMutationSequence(t *testing.T) {
	m, trackID := newTestModel(t)

	addClip(t, m, trackID, 0, 5)
	b := addClip(t, m, trackID, 5, 5)
	c := addClip(t, m, trackID, 12, 3)

	// A mixed bag of accepted and rejected mutations.
	m.MoveClip(trackID, trackID, b, 2)  // rejected
	m.MoveClip(trackID, trackID, c, 6)  // rejected, would hit B [5,10)
	m.MoveClip(trackID, trackID, c, 10) // accepted
	big := 20.0
	m.UpdateClip(trackID, b, ClipUpdate{Duration: &big}) // rejected
	m.DeleteClip(trackID, b)
	addClip(t, m, trackID, 4, 6) // fills the hole B left

	tr, _ := m.TrackByID(trackID)
	for i, a := range tr.Clips {
		for j, bb := range tr.Clips {
			if i != j && a.Overlaps(bb) {
				t.Fatalf("invariant violated: clip %s [%v,%v) overlaps %s [%v,%v)",
					a.ID, a.StartTime, a.EndTime(), bb.ID, bb.StartTime, bb.EndTime())
			}
		}
	}
}

func TestRemoveTrackUnknownID(t *testing.T) {
	m, _ := newTestModel(t)
	if err := m.RemoveTrack("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveTrackDropsClips(t *testing.T) {
	m, trackID := newTestModel(t)
	clipID := addClip(t, m, trackID, 0, 5)

	if err := m.RemoveTrack(trackID); err != nil {
		t.Fatalf("RemoveTrack failed: %v", err)
	}
	if _, _, err := m.ClipByID(clipID); !errors.Is(err, ErrNotFound) {
		t.Errorf("clip should be gone with its track, got %v", err)
	}
}

func TestViewSettersClamp(t *testing.T) {
	m, _ := newTestModel(t)

	m.SetZoom(500)
	if m.Zoom() != MaxZoom {
		t.Errorf("zoom should clamp to %v, got %v", MaxZoom, m.Zoom())
	}
	m.SetZoom(1)
	if m.Zoom() != MinZoom {
		t.Errorf("zoom should clamp to %v, got %v", MinZoom, m.Zoom())
	}

	m.SetOffset(-100)
	if m.Offset() != 0 {
		t.Errorf("offset should clamp to 0, got %v", m.Offset())
	}

	m.SetCurrentTime(125)
	if m.CurrentTime() != 120 {
		t.Errorf("currentTime should clamp to duration, got %v", m.CurrentTime())
	}
	m.SetCurrentTime(-5)
	if m.CurrentTime() != 0 {
		t.Errorf("currentTime should clamp to 0, got %v", m.CurrentTime())
	}
}

func TestSubscribersNotifiedInOrderBeforeReturn(t *testing.T) {
	m, trackID := newTestModel(t)

	var order []int
	m.Subscribe(func(ev model.Event) { order = append(order, 1) })
	m.Subscribe(func(ev model.Event) { order = append(order, 2) })

	addClip(t, m, trackID, 0, 5)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected subscribers called in registration order, got %v", order)
	}
}

func TestRejectedMutationEmitsNoEvent(t *testing.T) {
	m, trackID := newTestModel(t)
	addClip(t, m, trackID, 0, 5)

	count := 0
	m.Subscribe(func(ev model.Event) { count++ })

	m.AddClip(trackID, model.Clip{Type: model.MediaVideo, StartTime: 1, Duration: 1})
	if count != 0 {
		t.Errorf("rejected AddClip must not notify, got %d events", count)
	}
}

func TestSelectClipEmitsSelectionEvent(t *testing.T) {
	m, trackID := newTestModel(t)
	clipID := addClip(t, m, trackID, 0, 5)

	var got []model.EventType
	m.Subscribe(func(ev model.Event) { got = append(got, ev.Type) })

	if err := m.SelectClip(trackID, clipID, true); err != nil {
		t.Fatalf("SelectClip failed: %v", err)
	}
	// Re-selecting is a no-op.
	if err := m.SelectClip(trackID, clipID, true); err != nil {
		t.Fatalf("repeated SelectClip failed: %v", err)
	}

	if len(got) != 1 || got[0] != model.EventSelection {
		t.Errorf("expected a single selection event, got %v", got)
	}
}
