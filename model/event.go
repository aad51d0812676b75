package model

// EventType 时间线变更事件类型
type EventType string

const (
	EventTrackAdded     EventType = "track_added"
	EventTrackRemoved   EventType = "track_removed"
	EventClipAdded      EventType = "clip_added"
	EventClipMoved      EventType = "clip_moved"
	EventClipUpdated    EventType = "clip_updated"
	EventClipDeleted    EventType = "clip_deleted"
	EventViewChanged    EventType = "view_changed"   // zoom/offset
	EventTimeChanged    EventType = "time_changed"   // playhead moved
	EventSelection      EventType = "selection"      // clip selection change
	EventPlaybackState  EventType = "playback_state" // playing/paused/stopped
	EventPlaybackEnded  EventType = "playback_ended" // playhead reached project end
)

// Event is delivered synchronously to model subscribers after each committed
// mutation, and fanned out to websocket clients by the session hub.
type Event struct {
	Type    EventType `json:"type"`
	TrackID string    `json:"trackId,omitempty"`
	ClipID  string    `json:"clipId,omitempty"`
	Clip    *Clip     `json:"clip,omitempty"`
	Time    float64   `json:"time,omitempty"`  // playhead position for time events
	Zoom    float64   `json:"zoom,omitempty"`  // view events
	Offset  float64   `json:"offset,omitempty"`
	State   string    `json:"state,omitempty"` // playback state events
}
