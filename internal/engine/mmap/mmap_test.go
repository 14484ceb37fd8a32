package mmap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestOpen(t *testing.T) {
	path := writeFile(t, "Hello World")

	m, err := Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer m.Close()

	if !m.Valid() {
		t.Error("expected valid file")
	}
	if m.Len() != 11 {
		t.Errorf("expected length 11, got %d", m.Len())
	}
	if string(m.Data()) != "Hello World" {
		t.Errorf("expected %q, got %q", "Hello World", m.Data())
	}
	if m.Path() != path {
		t.Errorf("expected path %q, got %q", path, m.Path())
	}
}

func TestOpenEmpty(t *testing.T) {
	m, err := Open(writeFile(t, ""))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer m.Close()

	if !m.Valid() {
		t.Error("empty file should be valid")
	}
	if m.Data() != nil {
		t.Error("empty file should have no data")
	}
	if m.Len() != 0 {
		t.Errorf("expected length 0, got %d", m.Len())
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestOpenDirectory(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("expected error opening a directory")
	}
}

func TestCloseTwice(t *testing.T) {
	m, err := Open(writeFile(t, "abc"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if m.Valid() {
		t.Error("closed file should not be valid")
	}
	if m.Data() != nil || m.Len() != 0 {
		t.Error("closed file should expose no data")
	}
}
