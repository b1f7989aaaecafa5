package models

// SortOrder directions accepted by ListQuery
const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

// ListQuery describes a filtered, paginated file listing
type ListQuery struct {
	// UploadedBy filters by exact uploader label when non-empty
	UploadedBy string

	// Page is 1-based; PageSize bounds the window
	Page     int
	PageSize int

	// SortBy is a record column name; SortOrder is "asc" or "desc"
	SortBy    string
	SortOrder string
}

// Normalized returns a copy with defaults applied to unset fields.
func (q ListQuery) Normalized() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 50
	}
	if q.SortBy == "" {
		q.SortBy = "created_at"
	}
	if q.SortOrder != SortAscending {
		q.SortOrder = SortDescending
	}
	return q
}

// Offset returns the number of records skipped before the page window.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// MimetypeCount is one aggregation bucket of Summarize
type MimetypeCount struct {
	Mimetype string `gorm:"column:mimetype"`
	Count    int64  `gorm:"column:count"`
}
