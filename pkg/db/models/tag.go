package models

import "time"

// Tag represents a single label attached to a file.
// Position preserves the order tags were supplied in; duplicate
// values on the same file are permitted.
type Tag struct {
	ID       uint   `gorm:"primaryKey"`
	FileID   string `gorm:"type:text;not null;index:idx_file_tags"`
	Position int    `gorm:"not null"`
	Value    string `gorm:"type:text;not null;index:idx_tag_value"`

	CreatedAt time.Time
}
