package model

// MediaType 轨道/片段的媒体类型
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// Valid reports whether t is a known media type.
func (t MediaType) Valid() bool {
	return t == MediaVideo || t == MediaAudio
}

// Clip is a placed reference to external media on a track.
// Times are in seconds on the project timeline.
type Clip struct {
	ID        string    `json:"id"`
	TrackID   string    `json:"trackId"` // back-reference, the track owns the clip
	Type      MediaType `json:"type"`
	Name      string    `json:"name"`
	StartTime float64   `json:"startTime"`
	Duration  float64   `json:"duration"`
	MediaRef  string    `json:"mediaRef"` // opaque handle into the asset store
	Selected  bool      `json:"selected"`
	Locked    bool      `json:"locked"`
}

// EndTime returns the exclusive end of the clip on the timeline.
func (c *Clip) EndTime() float64 {
	return c.StartTime + c.Duration
}

// Overlaps reports whether two clips occupy intersecting time ranges.
func (c *Clip) Overlaps(other *Clip) bool {
	return c.StartTime < other.EndTime() && other.StartTime < c.EndTime()
}

// Track is an ordered lane of non-overlapping clips of one media type.
type Track struct {
	ID      string    `json:"id"`
	Type    MediaType `json:"type"`
	Name    string    `json:"name"`
	Visible bool      `json:"visible"`
	Locked  bool      `json:"locked"`
	Clips   []*Clip   `json:"clips"`
}

// ClipByID returns the clip with the given id, or nil.
func (t *Track) ClipByID(id string) *Clip {
	for _, c := range t.Clips {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Timeline is the session-scoped editing state: the track stack plus the
// view state (zoom/offset) and the playhead.
type Timeline struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Duration    float64  `json:"duration"` // seconds, fixed for a loaded project
	Zoom        float64  `json:"zoom"`     // pixels per second
	Offset      float64  `json:"offset"`   // horizontal scroll, pixels
	CurrentTime float64  `json:"currentTime"`
	Tracks      []*Track `json:"tracks"` // display order
}

// ContentEnd returns the end time of the last clip across all tracks.
// Clips may extend past Duration; playback still clamps to Duration.
func (tl *Timeline) ContentEnd() float64 {
	var end float64
	for _, tr := range tl.Tracks {
		for _, c := range tr.Clips {
			if e := c.EndTime(); e > end {
				end = e
			}
		}
	}
	return end
}
