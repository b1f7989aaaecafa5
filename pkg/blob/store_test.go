package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	content := []byte("hello depot")
	written, err := s.Write(ctx, "1700000000000-hello.txt", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if written != int64(len(content)) {
		t.Errorf("expected %d bytes written, got %d", len(content), written)
	}

	rc, err := s.Open(ctx, "1700000000000-hello.txt")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer rc.Close()

	read, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(read, content) {
		t.Errorf("expected %q, got %q", content, read)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Write(ctx, "a.txt", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Join(s.Root(), tempDirName))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty temp directory, found %d entries", len(entries))
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ok, err := s.Exists(ctx, "missing.txt")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected missing blob to not exist")
	}

	if _, err := s.Write(ctx, "present.txt", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}

	ok, err = s.Exists(ctx, "present.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected written blob to exist")
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Write(ctx, "gone.txt", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}

	if err := s.Remove(ctx, "gone.txt"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if err := s.Remove(ctx, "gone.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for second remove, got %v", err)
	}

	if _, err := s.Open(ctx, "gone.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestValidateFilename(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tests := []string{
		"",
		".",
		"..",
		"../escape.txt",
		"nested/blob.txt",
	}

	for _, name := range tests {
		if _, err := s.Write(ctx, name, strings.NewReader("x")); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("expected ErrInvalidKey for %q, got %v", name, err)
		}
	}
}
