package timeline

import (
	"math"
	"sort"

	"Bt1Cut/logger"
	"Bt1Cut/model"

	"github.com/google/uuid"
)

// Zoom is clamped to this range, in pixels per second.
const (
	MinZoom = 10.0
	MaxZoom = 200.0
)

// Subscriber receives post-commit events, synchronously and in
// registration order, before the mutating call returns.
type Subscriber func(model.Event)

// Model owns a single timeline and validates every mutation against it.
// All operations are atomic: they either commit fully or reject without
// touching any state. Model is not safe for concurrent use; the owning
// session serializes access through its run loop.
type Model struct {
	tl          *model.Timeline
	subscribers []Subscriber
}

// New creates a model around an empty timeline with the given fixed
// project duration and initial view state.
func New(name string, duration, zoom float64) *Model {
	if duration < 0 {
		duration = 0
	}
	return &Model{
		tl: &model.Timeline{
			ID:       uuid.NewString(),
			Name:     name,
			Duration: duration,
			Zoom:     clamp(zoom, MinZoom, MaxZoom),
		},
	}
}

// Restore wraps a deserialized timeline, re-clamping view state in case the
// snapshot predates the current limits.
func Restore(tl *model.Timeline) *Model {
	tl.Zoom = clamp(tl.Zoom, MinZoom, MaxZoom)
	tl.Offset = math.Max(0, tl.Offset)
	tl.CurrentTime = clamp(tl.CurrentTime, 0, tl.Duration)
	for _, tr := range tl.Tracks {
		sortClips(tr)
	}
	return &Model{tl: tl}
}

// Subscribe registers fn for post-commit notification. Subscribers cannot
// be removed; sessions are short-lived enough that it has never mattered.
func (m *Model) Subscribe(fn Subscriber) {
	m.subscribers = append(m.subscribers, fn)
}

func (m *Model) notify(ev model.Event) {
	for _, fn := range m.subscribers {
		fn(ev)
	}
}

// Publish forwards a controller-originated event (playback state changes)
// to the subscribers, in the same synchronous registration order as
// post-commit notifications.
func (m *Model) Publish(ev model.Event) {
	m.notify(ev)
}

// Timeline exposes the owned timeline for read access. Callers must not
// mutate through it; all writes go through the validated operations.
func (m *Model) Timeline() *model.Timeline { return m.tl }

// View state accessors used by the pure readers (transform, ruler).
func (m *Model) Zoom() float64        { return m.tl.Zoom }
func (m *Model) Offset() float64      { return m.tl.Offset }
func (m *Model) Duration() float64    { return m.tl.Duration }
func (m *Model) CurrentTime() float64 { return m.tl.CurrentTime }

// AddTrack appends a track to the display order and returns its id.
func (m *Model) AddTrack(mediaType model.MediaType, name string) (string, error) {
	if !mediaType.Valid() {
		return "", validationf("unknown media type %q", mediaType)
	}
	tr := &model.Track{
		ID:      uuid.NewString(),
		Type:    mediaType,
		Name:    name,
		Visible: true,
	}
	m.tl.Tracks = append(m.tl.Tracks, tr)
	m.notify(model.Event{Type: model.EventTrackAdded, TrackID: tr.ID})
	return tr.ID, nil
}

// RemoveTrack removes a track and all of its clips.
func (m *Model) RemoveTrack(id string) error {
	for i, tr := range m.tl.Tracks {
		if tr.ID == id {
			m.tl.Tracks = append(m.tl.Tracks[:i], m.tl.Tracks[i+1:]...)
			m.notify(model.Event{Type: model.EventTrackRemoved, TrackID: id})
			return nil
		}
	}
	return notFoundf("track %s", id)
}

// TrackByID returns the track with the given id.
func (m *Model) TrackByID(id string) (*model.Track, error) {
	for _, tr := range m.tl.Tracks {
		if tr.ID == id {
			return tr, nil
		}
	}
	return nil, notFoundf("track %s", id)
}

// ClipByID locates a clip and its owning track anywhere on the timeline.
func (m *Model) ClipByID(id string) (*model.Track, *model.Clip, error) {
	for _, tr := range m.tl.Tracks {
		if c := tr.ClipByID(id); c != nil {
			return tr, c, nil
		}
	}
	return nil, nil, notFoundf("clip %s", id)
}

// hasOverlap reports whether a clip spanning [start, start+duration) would
// intersect any clip on tr other than excludeID.
func hasOverlap(tr *model.Track, start, duration float64, excludeID string) bool {
	end := start + duration
	for _, c := range tr.Clips {
		if c.ID == excludeID {
			continue
		}
		if start < c.EndTime() && c.StartTime < end {
			return true
		}
	}
	return false
}

func sortClips(tr *model.Track) {
	sort.Slice(tr.Clips, func(i, j int) bool {
		return tr.Clips[i].StartTime < tr.Clips[j].StartTime
	})
}

// AddClip validates and places a new clip on the given track, returning the
// clip id. The clip's media type must match the track.
func (m *Model) AddClip(trackID string, clip model.Clip) (string, error) {
	tr, err := m.TrackByID(trackID)
	if err != nil {
		return "", err
	}
	if clip.Duration <= 0 {
		return "", validationf("clip duration must be positive, got %v", clip.Duration)
	}
	if clip.StartTime < 0 {
		return "", validationf("clip start must be >= 0, got %v", clip.StartTime)
	}
	if clip.Type != tr.Type {
		return "", validationf("clip type %s does not match track type %s", clip.Type, tr.Type)
	}
	if hasOverlap(tr, clip.StartTime, clip.Duration, "") {
		return "", validationf("clip overlaps existing clip on track %s", trackID)
	}

	c := clip
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.TrackID = tr.ID
	tr.Clips = append(tr.Clips, &c)
	sortClips(tr)

	logger.Debug("clip added",
		logger.String("trackId", tr.ID),
		logger.String("clipId", c.ID),
		logger.Float64("start", c.StartTime),
		logger.Float64("duration", c.Duration),
	)
	m.notify(model.Event{Type: model.EventClipAdded, TrackID: tr.ID, ClipID: c.ID, Clip: &c})
	return c.ID, nil
}

// MoveClip moves a clip to a new start time, possibly on another track.
// Overlap is re-validated at the target excluding the clip itself; on
// rejection the clip stays exactly where it was.
func (m *Model) MoveClip(sourceTrackID, targetTrackID, clipID string, newStart float64) error {
	src, err := m.TrackByID(sourceTrackID)
	if err != nil {
		return err
	}
	dst, err := m.TrackByID(targetTrackID)
	if err != nil {
		return err
	}
	clip := src.ClipByID(clipID)
	if clip == nil {
		return notFoundf("clip %s on track %s", clipID, sourceTrackID)
	}
	if newStart < 0 {
		return validationf("clip start must be >= 0, got %v", newStart)
	}
	if clip.Type != dst.Type {
		return validationf("clip type %s does not match track type %s", clip.Type, dst.Type)
	}
	if hasOverlap(dst, newStart, clip.Duration, clipID) {
		return validationf("move overlaps existing clip on track %s", targetTrackID)
	}

	if src != dst {
		for i, c := range src.Clips {
			if c.ID == clipID {
				src.Clips = append(src.Clips[:i], src.Clips[i+1:]...)
				break
			}
		}
		dst.Clips = append(dst.Clips, clip)
	}
	clip.StartTime = newStart
	clip.TrackID = dst.ID
	sortClips(dst)

	m.notify(model.Event{Type: model.EventClipMoved, TrackID: dst.ID, ClipID: clipID, Clip: clip})
	return nil
}

// ClipUpdate carries the optional fields of an UpdateClip call; nil fields
// are left untouched. Used for trim/resize and presentation flags.
type ClipUpdate struct {
	Name      *string  `json:"name,omitempty"`
	StartTime *float64 `json:"startTime,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
	Locked    *bool    `json:"locked,omitempty"`
}

// UpdateClip applies a partial update, re-running overlap validation with
// the candidate geometry before committing anything.
func (m *Model) UpdateClip(trackID, clipID string, upd ClipUpdate) error {
	tr, err := m.TrackByID(trackID)
	if err != nil {
		return err
	}
	clip := tr.ClipByID(clipID)
	if clip == nil {
		return notFoundf("clip %s on track %s", clipID, trackID)
	}

	start := clip.StartTime
	duration := clip.Duration
	if upd.StartTime != nil {
		start = *upd.StartTime
	}
	if upd.Duration != nil {
		duration = *upd.Duration
	}
	if duration <= 0 {
		return validationf("clip duration must be positive, got %v", duration)
	}
	if start < 0 {
		return validationf("clip start must be >= 0, got %v", start)
	}
	if hasOverlap(tr, start, duration, clipID) {
		return validationf("resize overlaps existing clip on track %s", trackID)
	}

	clip.StartTime = start
	clip.Duration = duration
	if upd.Name != nil {
		clip.Name = *upd.Name
	}
	if upd.Locked != nil {
		clip.Locked = *upd.Locked
	}
	sortClips(tr)

	m.notify(model.Event{Type: model.EventClipUpdated, TrackID: tr.ID, ClipID: clipID, Clip: clip})
	return nil
}

// DeleteClip removes a clip from its track.
func (m *Model) DeleteClip(trackID, clipID string) error {
	tr, err := m.TrackByID(trackID)
	if err != nil {
		return err
	}
	for i, c := range tr.Clips {
		if c.ID == clipID {
			tr.Clips = append(tr.Clips[:i], tr.Clips[i+1:]...)
			m.notify(model.Event{Type: model.EventClipDeleted, TrackID: trackID, ClipID: clipID})
			return nil
		}
	}
	return notFoundf("clip %s on track %s", clipID, trackID)
}

// SelectClip flips a clip's selection flag and emits a selection event for
// the properties panel. Selecting an already-selected clip is a no-op.
func (m *Model) SelectClip(trackID, clipID string, selected bool) error {
	tr, err := m.TrackByID(trackID)
	if err != nil {
		return err
	}
	clip := tr.ClipByID(clipID)
	if clip == nil {
		return notFoundf("clip %s on track %s", clipID, trackID)
	}
	if clip.Selected == selected {
		return nil
	}
	clip.Selected = selected
	m.notify(model.Event{Type: model.EventSelection, TrackID: trackID, ClipID: clipID, Clip: clip})
	return nil
}

// SetZoom clamps into [MinZoom, MaxZoom]. Clamping is the contract; out of
// range input is never an error.
func (m *Model) SetZoom(z float64) {
	z = clamp(z, MinZoom, MaxZoom)
	if z == m.tl.Zoom {
		return
	}
	m.tl.Zoom = z
	m.notify(model.Event{Type: model.EventViewChanged, Zoom: m.tl.Zoom, Offset: m.tl.Offset})
}

// SetOffset clamps to offset >= 0.
func (m *Model) SetOffset(o float64) {
	o = math.Max(0, o)
	if o == m.tl.Offset {
		return
	}
	m.tl.Offset = o
	m.notify(model.Event{Type: model.EventViewChanged, Zoom: m.tl.Zoom, Offset: m.tl.Offset})
}

// SetCurrentTime clamps the playhead into [0, duration].
func (m *Model) SetCurrentTime(t float64) {
	t = clamp(t, 0, m.tl.Duration)
	if t == m.tl.CurrentTime {
		return
	}
	m.tl.CurrentTime = t
	m.notify(model.Event{Type: model.EventTimeChanged, Time: t})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
