package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestOpString(t *testing.T) {
	tests := []struct {
		op       Op
		expected string
	}{
		{0, "none"},
		{OpWrite, "write"},
		{OpCreate | OpWrite, "create|write"},
		{OpRemove | OpRename, "remove|rename"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func TestConvertOp(t *testing.T) {
	if op := convertOp(fsnotify.Chmod); op != 0 {
		t.Errorf("expected chmod to be dropped, got %v", op)
	}
	if op := convertOp(fsnotify.Create | fsnotify.Write); op != OpCreate|OpWrite {
		t.Errorf("expected create|write, got %v", op)
	}
}

func TestNewMissing(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestRunReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.csv")
	other := filepath.Join(dir, "other.csv")
	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan Event, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(ev Event) { events <- ev })
	}()

	if err := os.WriteFile(other, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := range 3 {
		if err := os.WriteFile(path, []byte{'a' + byte(i), '\n'}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case ev := <-events:
		if ev.Path != w.Path() {
			t.Errorf("expected %q, got %q", w.Path(), ev.Path)
		}
		if !ev.Op.Has(OpWrite) {
			t.Errorf("expected write, got %v", ev.Op)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
