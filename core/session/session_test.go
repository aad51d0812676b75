package session

import (
	"context"
	"math"
	"testing"
	"time"

	"Bt1Cut/config"
	"Bt1Cut/core/timeline"
	"Bt1Cut/model"
)

func testConfig() *config.Config {
	return &config.Config{
		FrameRate:      30,
		ViewportWidth:  800,
		DefaultZoom:    50,
		SessionIdleTTL: time.Hour,
	}
}

type recordingSnapshotter struct {
	saves chan string
}

func (r *recordingSnapshotter) SaveSnapshot(_ context.Context, key string, _ *model.Timeline) error {
	r.saves <- key
	return nil
}

func TestSessionRunsCommandsAndFansOutEvents(t *testing.T) {
	s := New(1, timeline.New("test", 60, 50), 0, testConfig(), nil)
	events := make(chan model.Event, 16)
	s.AddSink(func(ev model.Event) { events <- ev })
	go s.Run()
	defer s.Close()

	var trackID string
	err := s.Do(func() error {
		var err error
		trackID, err = s.Model.AddTrack(model.MediaVideo, "V1")
		return err
	})
	if err != nil {
		t.Fatalf("AddTrack through session failed: %v", err)
	}
	if trackID == "" {
		t.Fatal("expected a track ID")
	}

	select {
	case ev := <-events:
		if ev.Type != model.EventTrackAdded {
			t.Errorf("expected %s event, got %s", model.EventTrackAdded, ev.Type)
		}
		if ev.TrackID != trackID {
			t.Errorf("event track ID = %s, want %s", ev.TrackID, trackID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received from sink")
	}
}

func TestSessionDoReturnsCommandError(t *testing.T) {
	s := New(1, timeline.New("test", 60, 50), 0, testConfig(), nil)
	go s.Run()
	defer s.Close()

	err := s.Do(func() error {
		return s.Model.RemoveTrack("no-such-track")
	})
	if err == nil {
		t.Fatal("expected error for unknown track")
	}
}

func TestCloseFlushesDirtyTimeline(t *testing.T) {
	snap := &recordingSnapshotter{saves: make(chan string, 4)}
	s := New(1, timeline.New("test", 60, 50), 0, testConfig(), snap)
	s.ProjectID = "project-1"
	go s.Run()

	if err := s.Do(func() error {
		_, err := s.Model.AddTrack(model.MediaAudio, "A1")
		return err
	}); err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}

	s.Close()
	select {
	case key := <-snap.saves:
		if key != "project-1" {
			t.Errorf("snapshot keyed by %q, want project-1", key)
		}
	case <-time.After(time.Second):
		t.Fatal("close did not flush the dirty timeline")
	}
}

func TestPlayheadMovementDoesNotDirty(t *testing.T) {
	snap := &recordingSnapshotter{saves: make(chan string, 4)}
	s := New(1, timeline.New("test", 60, 50), 0, testConfig(), snap)
	go s.Run()

	if err := s.Do(func() error {
		s.Playback.SeekTo(5)
		return nil
	}); err != nil {
		t.Fatalf("seek failed: %v", err)
	}

	s.Close()
	select {
	case key := <-snap.saves:
		t.Errorf("unexpected snapshot flush with key %q", key)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSessionUsesProjectFrameRate(t *testing.T) {
	s := New(1, timeline.New("film", 60, 50), 24, testConfig(), nil)
	defer s.Close()

	if got, want := s.Drag.FrameDuration(), 1.0/24; math.Abs(got-want) > 1e-9 {
		t.Errorf("frame duration = %v, want %v", got, want)
	}
	// 1.03s is closest to frame 25 on a 24fps grid.
	if got, want := s.Drag.Snap(1.03), 25.0/24; math.Abs(got-want) > 1e-9 {
		t.Errorf("Snap(1.03) = %v, want %v", got, want)
	}
}

func TestSessionFrameRateFallsBackToConfig(t *testing.T) {
	s := New(1, timeline.New("test", 60, 50), 0, testConfig(), nil)
	defer s.Close()

	if got, want := s.Drag.FrameDuration(), 1.0/30; math.Abs(got-want) > 1e-9 {
		t.Errorf("frame duration = %v, want %v", got, want)
	}
}

func TestManagerOpenGetClose(t *testing.T) {
	mgr := NewManager(testConfig(), nil)
	defer mgr.Stop()

	s := mgr.Open(7, "project-9", 0, timeline.New("test", 60, 50))
	if s.ProjectID != "project-9" {
		t.Errorf("ProjectID = %q, want project-9", s.ProjectID)
	}
	if got := mgr.Get(s.ID); got != s {
		t.Errorf("Get returned %v, want the opened session", got)
	}
	if !mgr.Close(s.ID) {
		t.Error("Close reported unknown session")
	}
	if mgr.Get(s.ID) != nil {
		t.Error("session still registered after Close")
	}
	if mgr.Close(s.ID) {
		t.Error("second Close should report false")
	}
}
