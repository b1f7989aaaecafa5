package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/godepot/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore implements MetadataStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	LogLevel     logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed metadata store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&models.File{},
		&models.Tag{},
	)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// File operations

func (s *SQLiteStore) CreateFile(ctx context.Context, file *models.File) error {
	return s.db.WithContext(ctx).Create(file).Error
}

func (s *SQLiteStore) GetFile(ctx context.Context, id string) (*models.File, error) {
	var file models.File
	err := s.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

func (s *SQLiteStore) ListFiles(ctx context.Context, query models.ListQuery) ([]models.File, int64, error) {
	query = query.Normalized()

	filtered := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.File{})
		if query.UploadedBy != "" {
			q = q.Where("uploaded_by = ?", query.UploadedBy)
		}
		return q
	}

	// Total reflects the filtered set, independent of the page window
	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var files []models.File
	err := filtered().
		Order(fmt.Sprintf("%s %s", sortColumn(query.SortBy), query.SortOrder)).
		Offset(query.Offset()).
		Limit(query.PageSize).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Find(&files).Error
	if err != nil {
		return nil, 0, err
	}

	return files, total, nil
}

// sortColumn whitelists sortable columns to keep user input out of
// the ORDER BY clause.
func sortColumn(name string) string {
	switch name {
	case "created_at", "updated_at", "size", "original_name", "uploaded_by", "download_count":
		return name
	default:
		return "created_at"
	}
}

func (s *SQLiteStore) UpdateFile(ctx context.Context, file *models.File) error {
	return s.db.WithContext(ctx).Omit("Tags").Save(file).Error
}

func (s *SQLiteStore) DeleteFile(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", id).Delete(&models.Tag{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.File{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *SQLiteStore) IncrementDownloadCount(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}

// Tag operations

func (s *SQLiteStore) ReplaceFileTags(ctx context.Context, fileID string, values []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", fileID).Delete(&models.Tag{}).Error; err != nil {
			return err
		}

		for i, value := range values {
			tag := models.Tag{
				FileID:   fileID,
				Position: i,
				Value:    value,
			}
			if err := tx.Create(&tag).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Aggregations

func (s *SQLiteStore) CountFiles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.File{}).Count(&count).Error
	return count, err
}

func (s *SQLiteStore) TotalSize(ctx context.Context) (int64, error) {
	// COALESCE keeps the sum at 0 for an empty table instead of NULL
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.File{}).
		Select("COALESCE(SUM(size), 0)").
		Scan(&total).Error
	return total, err
}

func (s *SQLiteStore) CountByMimetype(ctx context.Context) ([]models.MimetypeCount, error) {
	var counts []models.MimetypeCount
	err := s.db.WithContext(ctx).
		Model(&models.File{}).
		Select("mimetype, COUNT(*) AS count").
		Group("mimetype").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}

func (s *SQLiteStore) RecentFiles(ctx context.Context, limit int) ([]models.File, error) {
	var files []models.File
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&files).Error
	return files, err
}
