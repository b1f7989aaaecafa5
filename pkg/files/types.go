package files

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/mwantia/godepot/pkg/db/models"
)

// FileInfo is the boundary representation of a file record. It never
// carries the internal storage path; URL is derived from the storage
// filename and not persisted.
type FileInfo struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	OriginalName  string    `json:"originalName"`
	Mimetype      string    `json:"mimetype"`
	Size          int64     `json:"size"`
	UploadedBy    string    `json:"uploadedBy"`
	Description   string    `json:"description"`
	Tags          []string  `json:"tags"`
	DownloadCount int64     `json:"downloadCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	URL           string    `json:"url"`
}

// IngestInput carries one upload into the ingestion pipeline.
type IngestInput struct {
	Content      io.Reader
	OriginalName string
	Mimetype     string

	// Size is the declared byte length, checked against the configured
	// ceiling before any bytes are persisted.
	Size int64

	UploadedBy  string
	Description string
	Tags        []string
}

// UpdateInput describes a partial metadata update. Nil fields are
// left untouched.
type UpdateInput struct {
	Description *string  `json:"description"`
	UploadedBy  *string  `json:"uploadedBy"`
	Tags        *TagList `json:"tags"`
}

// TagList accepts tags either as a JSON array or as a single
// comma-separated string; elements are trimmed in both cases.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = trimTags(list)
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*t = ParseTags(joined)
	return nil
}

// ParseTags splits a comma-separated tag string, trimming each
// element. An empty input yields no tags.
func ParseTags(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	return trimTags(strings.Split(joined, ","))
}

func trimTags(tags []string) []string {
	trimmed := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed = append(trimmed, strings.TrimSpace(tag))
	}
	return trimmed
}

// Download is a handle for streaming one blob to a caller. The caller
// must close Content.
type Download struct {
	Content      io.ReadCloser
	OriginalName string
	Mimetype     string
	Size         int64
}

// TypeCount is one per-content-type bucket of Summarize.
type TypeCount struct {
	Mimetype string `json:"mimetype"`
	Count    int64  `json:"count"`
}

// RecentFile is the minimal projection used for the most recent
// uploads in Summarize.
type RecentFile struct {
	OriginalName string    `json:"originalName"`
	CreatedAt    time.Time `json:"createdAt"`
	Size         int64     `json:"size"`
	Mimetype     string    `json:"mimetype"`
}

// Stats is the aggregate view over all file records.
type Stats struct {
	TotalFiles     int64        `json:"totalFiles"`
	TotalSizeBytes int64        `json:"totalSize"`
	FileTypes      []TypeCount  `json:"fileTypes"`
	RecentFiles    []RecentFile `json:"recentFiles"`
}

// ListOptions mirrors the query parameters of the listing endpoint.
type ListOptions struct {
	UploadedBy string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// sortColumns maps boundary sort names onto record columns.
var sortColumns = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"size":          "size",
	"originalName":  "original_name",
	"uploadedBy":    "uploaded_by",
	"downloadCount": "download_count",
}

func (o ListOptions) toQuery() models.ListQuery {
	return models.ListQuery{
		UploadedBy: o.UploadedBy,
		Page:       o.Page,
		PageSize:   o.PageSize,
		SortBy:     sortColumns[o.SortBy],
		SortOrder:  strings.ToLower(o.SortOrder),
	}
}
