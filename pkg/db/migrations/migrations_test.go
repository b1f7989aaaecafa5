package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/godepot/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	return db
}

func TestMigrateCreatesSchema(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	m := NewMigrator(db)
	if err := m.Migrate(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	if !db.Migrator().HasTable(&models.File{}) {
		t.Error("expected files table after migration")
	}
	if !db.Migrator().HasTable(&models.Tag{}) {
		t.Error("expected tags table after migration")
	}

	statuses, err := m.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, status := range statuses {
		if !status.Applied {
			t.Errorf("expected migration %d (%s) to be applied", status.Version, status.Description)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	m := NewMigrator(db)
	if err := m.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Migrate(ctx); err != nil {
		t.Errorf("second migrate should be a no-op, got %v", err)
	}
}

func TestRollback(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	m := NewMigrator(db)
	if err := m.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	if err := m.Rollback(ctx); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	if db.Migrator().HasTable(&models.File{}) {
		t.Error("expected files table to be dropped after rollback")
	}
}
