package store

import (
	"context"
	"errors"

	"github.com/mwantia/godepot/pkg/db/models"
)

// ErrNotFound is returned when no record matches the given identifier.
var ErrNotFound = errors.New("record not found")

// MetadataStore defines the interface for database operations
type MetadataStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// File operations
	CreateFile(ctx context.Context, file *models.File) error
	GetFile(ctx context.Context, id string) (*models.File, error)
	ListFiles(ctx context.Context, query models.ListQuery) ([]models.File, int64, error)
	UpdateFile(ctx context.Context, file *models.File) error
	DeleteFile(ctx context.Context, id string) error

	// IncrementDownloadCount bumps the counter without reading the
	// record back. Lost updates under concurrency are acceptable.
	IncrementDownloadCount(ctx context.Context, id string) error

	// Tag operations
	ReplaceFileTags(ctx context.Context, fileID string, values []string) error

	// Aggregations
	CountFiles(ctx context.Context) (int64, error)
	TotalSize(ctx context.Context) (int64, error)
	CountByMimetype(ctx context.Context) ([]models.MimetypeCount, error)
	RecentFiles(ctx context.Context, limit int) ([]models.File, error)
}
