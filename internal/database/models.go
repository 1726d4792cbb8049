package database

import (
	"time"
)

// EditSession is a persisted snapshot of an editing session. TimelineData
// carries the serialized timeline_data JSON produced by the export
// snapshot builder; the live stores are rebuilt from it on load.
type EditSession struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	SourcePath   string    `json:"source_path"`
	Duration     float64   `json:"duration"`
	TimelineData []byte    `gorm:"type:blob" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ExportRecord tracks a completed or failed export
type ExportRecord struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	SessionID    string    `gorm:"index" json:"session_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	FileSize     int64     `json:"file_size"`
	Compressed   bool      `json:"compressed"`
	StepCount    int       `json:"step_count"`
	Status       string    `gorm:"index" json:"status"` // pending, uploading, completed, failed
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StickerAsset is a cached sticker catalog entry
type StickerAsset struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Category  string    `gorm:"index" json:"category"`
	Pack      string    `gorm:"index" json:"pack"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
