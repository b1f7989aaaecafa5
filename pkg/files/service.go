// Package files implements the file ingestion and metadata
// subsystem: validated uploads, cross-store consistency between the
// blob directory and the metadata store, downloads with advisory
// counting, and aggregate statistics.
package files

import (
	"context"
	"errors"
	"time"

	"github.com/mwantia/godepot/pkg/blob"
	"github.com/mwantia/godepot/pkg/db/models"
	"github.com/mwantia/godepot/pkg/db/store"
	"github.com/mwantia/godepot/pkg/log"
)

const (
	defaultUploader  = "anonymous"
	defaultURLPrefix = "/uploads"
	recentFilesLimit = 5
)

// Config holds the resolved service settings. Values are injected at
// construction; the service never reads environment state itself.
type Config struct {
	// MaxUploadSize is the payload ceiling in bytes.
	MaxUploadSize int64

	// URLPrefix is joined with the storage filename to derive the
	// public URL of a record.
	URLPrefix string
}

// Service orchestrates the ingestion, retrieval, update and deletion
// pipelines over a metadata store and a blob store. There is no
// transaction spanning both stores; consistency is maintained by
// write ordering plus compensation on failure.
type Service struct {
	cfg    Config
	store  store.MetadataStore
	blobs  *blob.Store
	policy *ValidationPolicy
	log    log.LoggerService

	now func() time.Time
}

func NewService(metadata store.MetadataStore, blobs *blob.Store, policy *ValidationPolicy, logger log.LoggerService, cfg Config) *Service {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = 10 << 20
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = defaultURLPrefix
	}
	if policy == nil {
		policy = NewValidationPolicy(nil, nil)
	}

	return &Service{
		cfg:    cfg,
		store:  metadata,
		blobs:  blobs,
		policy: policy,
		log:    logger.Named("files"),
		now:    time.Now,
	}
}

// MaxUploadSize returns the configured payload ceiling in bytes.
func (s *Service) MaxUploadSize() int64 {
	return s.cfg.MaxUploadSize
}

// Health reports metadata store connectivity.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

// Ingest validates the upload, writes the blob durably, then inserts
// the metadata record. When the insert fails the just-written blob is
// removed again, so the upload either fully exists or leaves no trace.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (*FileInfo, error) {
	if in.Size > s.cfg.MaxUploadSize {
		return nil, newPayloadTooLarge(in.Size, s.cfg.MaxUploadSize)
	}
	if err := s.policy.Validate(in.OriginalName, in.Mimetype); err != nil {
		return nil, err
	}

	filename, err := s.claimStorageName(ctx, in.OriginalName)
	if err != nil {
		return nil, newStoreUnavailable("upload", err)
	}

	written, err := s.blobs.Write(ctx, filename, in.Content)
	if err != nil {
		return nil, newStoreUnavailable("upload", err)
	}

	uploadedBy := in.UploadedBy
	if uploadedBy == "" {
		uploadedBy = defaultUploader
	}

	record := &models.File{
		Filename:     filename,
		OriginalName: in.OriginalName,
		Mimetype:     in.Mimetype,
		Size:         written,
		Path:         s.blobs.Path(filename),
		UploadedBy:   uploadedBy,
		Description:  in.Description,
		Tags:         tagModels(trimTags(in.Tags)),
	}

	if err := s.store.CreateFile(ctx, record); err != nil {
		// Roll the blob back so no orphan survives the failed insert.
		// A failed rollback is logged but never masks the insert error.
		if rmErr := s.blobs.Remove(ctx, filename); rmErr != nil && !errors.Is(rmErr, blob.ErrNotFound) {
			s.log.Error("Failed to remove orphaned blob %q after insert failure: %v", filename, rmErr)
		}
		return nil, newStoreUnavailable("upload", err)
	}

	s.log.Info("Ingested %q as %q (%d bytes) for %q", in.OriginalName, filename, written, uploadedBy)
	return s.toInfo(record), nil
}

// claimStorageName derives a storage filename that does not collide
// with any existing blob. Same-millisecond uploads of identically
// named files advance the timestamp until the name is free.
func (s *Service) claimStorageName(ctx context.Context, originalName string) (string, error) {
	at := s.now()
	for {
		filename := StorageName(originalName, at)
		exists, err := s.blobs.Exists(ctx, filename)
		if err != nil {
			return "", err
		}
		if !exists {
			return filename, nil
		}
		at = at.Add(time.Millisecond)
	}
}

// GetMetadata returns the record for id, path stripped.
func (s *Service) GetMetadata(ctx context.Context, id string) (*FileInfo, error) {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toInfo(record), nil
}

// OpenDownload resolves the record, verifies the blob still exists and
// hands back a streaming handle. The download counter increment is
// advisory; a failed increment does not fail the download.
func (s *Service) OpenDownload(ctx context.Context, id string) (*Download, error) {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.blobs.Exists(ctx, record.Filename)
	if err != nil {
		return nil, newStoreUnavailable("download", err)
	}
	if !exists {
		return nil, newBlobMissing(id)
	}

	if err := s.store.IncrementDownloadCount(ctx, id); err != nil {
		s.log.Warn("Failed to increment download count for %s: %v", id, err)
	}

	content, err := s.blobs.Open(ctx, record.Filename)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, newBlobMissing(id)
		}
		return nil, newStoreUnavailable("download", err)
	}

	return &Download{
		Content:      content,
		OriginalName: record.OriginalName,
		Mimetype:     record.Mimetype,
		Size:         record.Size,
	}, nil
}

// UpdateMetadata applies a partial update; nil fields stay untouched.
func (s *Service) UpdateMetadata(ctx context.Context, id string, in UpdateInput) (*FileInfo, error) {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Description != nil {
		record.Description = *in.Description
	}
	if in.UploadedBy != nil {
		record.UploadedBy = *in.UploadedBy
	}

	if err := s.store.UpdateFile(ctx, record); err != nil {
		return nil, newStoreUnavailable("update", err)
	}

	if in.Tags != nil {
		if err := s.store.ReplaceFileTags(ctx, id, []string(*in.Tags)); err != nil {
			return nil, newStoreUnavailable("update", err)
		}
	}

	// Re-read so the returned record carries the stored tag set
	return s.GetMetadata(ctx, id)
}

// Delete removes the blob first, then the metadata record. A crash
// between the two steps leaves a detectable orphaned record rather
// than an untracked blob. A blob that is already gone is tolerated.
func (s *Service) Delete(ctx context.Context, id string) error {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Remove(ctx, record.Filename); err != nil && !errors.Is(err, blob.ErrNotFound) {
		return newStoreUnavailable("delete", err)
	}

	if err := s.store.DeleteFile(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newNotFound(id)
		}
		return newStoreUnavailable("delete", err)
	}

	s.log.Info("Deleted file %s (%q)", id, record.OriginalName)
	return nil
}

// List returns one page of records plus the total count of the
// filtered set.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]FileInfo, int64, error) {
	records, total, err := s.store.ListFiles(ctx, opts.toQuery())
	if err != nil {
		return nil, 0, newStoreUnavailable("list", err)
	}

	infos := make([]FileInfo, 0, len(records))
	for i := range records {
		infos = append(infos, *s.toInfo(&records[i]))
	}
	return infos, total, nil
}

// Summarize aggregates counts, total size, per-content-type counts and
// the most recent uploads.
func (s *Service) Summarize(ctx context.Context) (*Stats, error) {
	total, err := s.store.CountFiles(ctx)
	if err != nil {
		return nil, newStoreUnavailable("stats", err)
	}

	size, err := s.store.TotalSize(ctx)
	if err != nil {
		return nil, newStoreUnavailable("stats", err)
	}

	counts, err := s.store.CountByMimetype(ctx)
	if err != nil {
		return nil, newStoreUnavailable("stats", err)
	}

	recent, err := s.store.RecentFiles(ctx, recentFilesLimit)
	if err != nil {
		return nil, newStoreUnavailable("stats", err)
	}

	stats := &Stats{
		TotalFiles:     total,
		TotalSizeBytes: size,
		FileTypes:      make([]TypeCount, 0, len(counts)),
		RecentFiles:    make([]RecentFile, 0, len(recent)),
	}
	for _, c := range counts {
		stats.FileTypes = append(stats.FileTypes, TypeCount{
			Mimetype: c.Mimetype,
			Count:    c.Count,
		})
	}
	for _, r := range recent {
		stats.RecentFiles = append(stats.RecentFiles, RecentFile{
			OriginalName: r.OriginalName,
			CreatedAt:    r.CreatedAt,
			Size:         r.Size,
			Mimetype:     r.Mimetype,
		})
	}

	return stats, nil
}

func (s *Service) getRecord(ctx context.Context, id string) (*models.File, error) {
	record, err := s.store.GetFile(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newNotFound(id)
		}
		return nil, newStoreUnavailable("lookup", err)
	}
	return record, nil
}

func (s *Service) toInfo(record *models.File) *FileInfo {
	return &FileInfo{
		ID:            record.ID,
		Filename:      record.Filename,
		OriginalName:  record.OriginalName,
		Mimetype:      record.Mimetype,
		Size:          record.Size,
		UploadedBy:    record.UploadedBy,
		Description:   record.Description,
		Tags:          record.TagValues(),
		DownloadCount: record.DownloadCount,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
		URL:           s.cfg.URLPrefix + "/" + record.Filename,
	}
}

func tagModels(values []string) []models.Tag {
	tags := make([]models.Tag, 0, len(values))
	for i, value := range values {
		tags = append(tags, models.Tag{
			Position: i,
			Value:    value,
		})
	}
	return tags
}
