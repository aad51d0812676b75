package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// WaveformSamples 自定义类型用于 GORM JSON 字段的自动扫描
type WaveformSamples []float32

// Scan 实现 sql.Scanner 接口
func (s *WaveformSamples) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*s = nil
		return nil
	}
	if len(bytes) == 0 || string(bytes) == "null" {
		*s = nil
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Value 实现 driver.Valuer 接口
func (s WaveformSamples) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// MediaAsset is the descriptor the timeline holds a mediaRef to.
// The bytes themselves (source file, thumbnail, proxy) live in MinIO; the
// timeline never interprets them.
type MediaAsset struct {
	ID           string          `json:"id" gorm:"primaryKey;size:36"`
	UserID       int64           `json:"userId" gorm:"index;not null"`
	Name         string          `json:"name" gorm:"size:255;not null"`
	Type         MediaType       `json:"type" gorm:"size:10;not null"`
	SourceRef    string          `json:"sourceRef" gorm:"size:512;not null"` // original source location
	Duration     float64         `json:"duration" gorm:"not null"`           // seconds
	ThumbnailKey string          `json:"thumbnailKey" gorm:"size:512"`       // MinIO object key, video assets
	WaveformKey  string          `json:"waveformKey" gorm:"size:512"`        // MinIO object key, audio assets
	Waveform     WaveformSamples `json:"waveform,omitempty" gorm:"type:json"` // downsampled preview, hot path
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// TableName 指定表名
func (MediaAsset) TableName() string {
	return "media_assets"
}
