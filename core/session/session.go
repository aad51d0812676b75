package session

import (
	"context"
	"time"

	"Bt1Cut/config"
	"Bt1Cut/core/drag"
	"Bt1Cut/core/playback"
	"Bt1Cut/core/timeline"
	"Bt1Cut/core/view"
	"Bt1Cut/logger"
	"Bt1Cut/model"

	"github.com/google/uuid"
)

// Snapshotter persists autosave snapshots (the Redis cache in production).
// The key is the project ID when the session edits a stored project, so a
// crashed session's work is recoverable on the next open.
type Snapshotter interface {
	SaveSnapshot(ctx context.Context, key string, tl *model.Timeline) error
}

// EventSink receives every model event for fan-out to connected views.
// It must not block: the websocket hub feeds a buffered channel.
type EventSink func(model.Event)

// autosaveInterval is how often a dirty timeline is flushed to the cache.
const autosaveInterval = 5 * time.Second

// tickInterval approximates a display-refresh callback for the playback
// clock.
const tickInterval = 33 * time.Millisecond

type command struct {
	fn    func() error
	reply chan error
}

// Session owns one TimelineModel and its controllers for a single editing
// user. Every mutating entry point is funneled through the run loop, so
// mutations never interleave; the playback ticker is the only autonomous
// source of change and stops with the session.
type Session struct {
	ID        string
	UserID    int64
	ProjectID string

	Model    *timeline.Model
	Drag     *drag.Controller
	Playback *playback.Controller
	ZoomPan  *view.ZoomPan

	commands chan command
	done     chan struct{}

	snapshotter Snapshotter
	sinks       []EventSink
	dirty       bool
	lastActive  time.Time
}

// New assembles a session around an existing model (fresh or restored).
// frameRate is the project's own rate; zero falls back to the configured
// default so rows from before the column existed keep snapping.
func New(userID int64, m *timeline.Model, frameRate float64, cfg *config.Config, snap Snapshotter) *Session {
	if frameRate <= 0 {
		frameRate = cfg.FrameRate
	}
	s := &Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		Model:       m,
		Drag:        drag.NewController(m, frameRate),
		Playback:    playback.NewController(m),
		ZoomPan:     view.NewZoomPan(m, cfg.ViewportWidth),
		commands:    make(chan command),
		done:        make(chan struct{}),
		snapshotter: snap,
		lastActive:  time.Now(),
	}
	m.Subscribe(s.onEvent)
	return s
}

// AddSink registers an event fan-out target. Once Run has started this must
// be called from the loop itself, i.e. through Do.
func (s *Session) AddSink(sink EventSink) {
	s.sinks = append(s.sinks, sink)
}

func (s *Session) onEvent(ev model.Event) {
	// Playhead and playback-state churn is not worth an autosave; anything
	// structural is.
	switch ev.Type {
	case model.EventTimeChanged, model.EventPlaybackState, model.EventPlaybackEnded:
	default:
		s.dirty = true
	}
	for _, sink := range s.sinks {
		sink(ev)
	}
}

// Run is the session event loop. It owns all mutation of the model: queued
// commands run to completion one at a time, interleaved only with playback
// ticks and autosave flushes from this same goroutine.
func (s *Session) Run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	autosave := time.NewTicker(autosaveInterval)
	defer autosave.Stop()

	for {
		select {
		case cmd := <-s.commands:
			cmd.reply <- cmd.fn()

		case now := <-ticker.C:
			// Tick drops non-monotonic clocks itself; nothing to do here.
			_ = s.Playback.Tick(now)

		case <-autosave.C:
			s.flush()

		case <-s.done:
			s.flush()
			return
		}
	}
}

// Do executes fn on the session loop and returns its error. Handlers use
// this for every read and mutation so model access is fully serialized.
func (s *Session) Do(fn func() error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case s.commands <- cmd:
		s.lastActive = time.Now()
		return <-cmd.reply
	case <-s.done:
		return timeline.ErrNotFound
	}
}

// Close stops the loop after a final autosave flush.
func (s *Session) Close() {
	close(s.done)
}

// IdleSince reports the time of the last command.
func (s *Session) IdleSince() time.Time { return s.lastActive }

func (s *Session) flush() {
	if !s.dirty || s.snapshotter == nil {
		return
	}
	key := s.ProjectID
	if key == "" {
		key = s.ID
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.snapshotter.SaveSnapshot(ctx, key, s.Model.Timeline()); err != nil {
		logger.Warn("autosave failed",
			logger.String("sessionId", s.ID),
			logger.ErrorField(err),
		)
		return
	}
	s.dirty = false
}
