package files

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions is the extension allow-list applied when no
// explicit configuration is given.
var DefaultExtensions = []string{
	".jpeg", ".jpg", ".png", ".gif", ".pdf", ".doc", ".docx",
	".txt", ".csv", ".xlsx", ".xls", ".zip", ".json", ".xml", ".log",
}

// DefaultMimetypes is the declared content-type allow-list applied
// when no explicit configuration is given.
var DefaultMimetypes = []string{
	"text/plain",
	"text/csv",
	"application/json",
	"application/pdf",
	"application/zip",
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ValidationPolicy decides whether an upload is acceptable before any
// bytes are persisted. A file passes when its extension or its
// declared content type is on an allow-list, or when the content type
// is any "text/*" subtype.
type ValidationPolicy struct {
	extensions map[string]struct{}
	mimetypes  map[string]struct{}
}

// NewValidationPolicy builds a policy from explicit allow-lists.
// Extension matching is case-insensitive. Empty lists fall back to
// the package defaults.
func NewValidationPolicy(extensions, mimetypes []string) *ValidationPolicy {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if len(mimetypes) == 0 {
		mimetypes = DefaultMimetypes
	}

	policy := &ValidationPolicy{
		extensions: make(map[string]struct{}, len(extensions)),
		mimetypes:  make(map[string]struct{}, len(mimetypes)),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		policy.extensions[ext] = struct{}{}
	}
	for _, mt := range mimetypes {
		policy.mimetypes[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}

	return policy
}

// Validate returns nil when the upload is acceptable, or an Error of
// kind KindInvalidFileType carrying the rejected content type.
func (p *ValidationPolicy) Validate(originalName, mimetype string) error {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := p.extensions[ext]; ok {
		return nil
	}

	mt := strings.ToLower(strings.TrimSpace(mimetype))
	if _, ok := p.mimetypes[mt]; ok {
		return nil
	}
	if strings.HasPrefix(mt, "text/") {
		return nil
	}

	return newInvalidFileType(mimetype)
}
