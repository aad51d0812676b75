package model

import "time"

// Snapshot rows: the persisted form of a timeline, an ordered list of tracks
// each holding an ordered list of clips. Stored via GORM.

// Project 项目快照头
type Project struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    int64     `json:"userId" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Duration  float64   `json:"duration" gorm:"not null"`
	FrameRate float64   `json:"frameRate" gorm:"default:30"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// TrackRow 轨道快照，Position 保存显示顺序
type TrackRow struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ProjectID string    `json:"projectId" gorm:"size:36;index;not null"`
	Type      MediaType `json:"type" gorm:"size:10;not null"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Visible   bool      `json:"visible" gorm:"default:true"`
	Locked    bool      `json:"locked" gorm:"default:false"`
	Position  int       `json:"position" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (TrackRow) TableName() string {
	return "timeline_tracks"
}

// ClipRow 片段快照
type ClipRow struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	TrackID   string    `json:"trackId" gorm:"size:36;index;not null"`
	Type      MediaType `json:"type" gorm:"size:10;not null"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	StartTime float64   `json:"startTime" gorm:"not null"`
	Duration  float64   `json:"duration" gorm:"not null"`
	MediaRef  string    `json:"mediaRef" gorm:"size:36;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (ClipRow) TableName() string {
	return "timeline_clips"
}
