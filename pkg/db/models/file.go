package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File represents the metadata record for one stored blob
type File struct {
	ID string `gorm:"primaryKey;type:text"`

	// Filename is the generated storage name, unique for the lifetime
	// of the store. OriginalName is the user-supplied name and carries
	// no uniqueness guarantee.
	Filename     string `gorm:"type:text;not null;uniqueIndex"`
	OriginalName string `gorm:"type:text;not null;index:idx_files_original_name"`
	Mimetype     string `gorm:"type:text;not null"`
	Size         int64  `gorm:"not null"`

	// Path is the location of the blob on disk. Internal only, never
	// serialized across the service boundary.
	Path string `gorm:"type:text;not null"`

	UploadedBy    string `gorm:"type:text;not null;default:anonymous;index:idx_files_uploaded_by"`
	Description   string `gorm:"type:text"`
	DownloadCount int64  `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"index:idx_files_created_at,sort:desc"`
	UpdatedAt time.Time

	// Relationships
	Tags []Tag `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a record identifier when none was set
func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// TagValues returns the tag values in insertion order.
func (f *File) TagValues() []string {
	values := make([]string, 0, len(f.Tags))
	for _, tag := range f.Tags {
		values = append(values, tag.Value)
	}
	return values
}
