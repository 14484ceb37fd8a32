package loader

import (
	"errors"
	"io/fs"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

type mapFS struct{ fstest.MapFS }

func (m mapFS) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(m.MapFS, path)
}

func TestTOMLLoader(t *testing.T) {
	fsys := mapFS{fstest.MapFS{
		"gridstorm.toml": {Data: []byte("[document]\ndelimiter = \";\"\nmaxUndoEntries = 50\n")},
		"bad.toml":       {Data: []byte("[document\n")},
	}}

	cfg, err := NewTOMLLoaderWithFS(fsys, "gridstorm.toml").Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, ok := cfg["document"].(map[string]any)
	if !ok {
		t.Fatalf("expected document table, got %T", cfg["document"])
	}
	if doc["delimiter"] != ";" {
		t.Errorf("expected %q, got %v", ";", doc["delimiter"])
	}
	if doc["maxUndoEntries"] != int64(50) {
		t.Errorf("expected 50, got %v", doc["maxUndoEntries"])
	}

	_, err = NewTOMLLoaderWithFS(fsys, "bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Line != 1 {
		t.Errorf("expected line 1, got %d", perr.Line)
	}
}

func TestMissingFileIsNotAnError(t *testing.T) {
	fsys := mapFS{fstest.MapFS{}}
	for _, l := range []Loader{
		NewTOMLLoaderWithFS(fsys, "missing.toml"),
		NewYAMLLoaderWithFS(fsys, "missing.yaml"),
	} {
		cfg, err := l.Load()
		if err != nil || cfg != nil {
			t.Errorf("expected nil, nil, got %v, %v", cfg, err)
		}
	}
}

func TestYAMLLoader(t *testing.T) {
	fsys := mapFS{fstest.MapFS{
		"gridstorm.yaml": {Data: []byte("logging:\n  level: debug\n  format: json\n")},
		"bad.yaml":       {Data: []byte("a: [")},
	}}

	cfg, err := NewYAMLLoaderWithFS(fsys, "gridstorm.yaml").Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logging, ok := cfg["logging"].(map[string]any)
	if !ok {
		t.Fatalf("expected logging map, got %T", cfg["logging"])
	}
	if logging["level"] != "debug" || logging["format"] != "json" {
		t.Errorf("unexpected logging section %v", logging)
	}

	_, err = NewYAMLLoaderWithFS(fsys, "bad.yaml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestForPath(t *testing.T) {
	fsys := DefaultFS()
	if _, ok := ForPath(fsys, "c.yml").(*YAMLLoader); !ok {
		t.Error("expected YAML loader for .yml")
	}
	if _, ok := ForPath(fsys, "c.YAML").(*YAMLLoader); !ok {
		t.Error("expected YAML loader for .YAML")
	}
	if _, ok := ForPath(fsys, "c.toml").(*TOMLLoader); !ok {
		t.Error("expected TOML loader for .toml")
	}
}

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoaderFrom("GRIDSTORM_", []string{
		"GRIDSTORM_DOCUMENT_DELIMITER=|",
		"GRIDSTORM_DOCUMENT_MAX_UNDO_ENTRIES=20",
		"GRIDSTORM_LOGGING_LEVEL=debug",
		"GRIDSTORM_VERBOSE=yes",
		"GRIDSTORM_EXPORT_FORMAT=",
		"GRIDSTORM_LEVEL=warn",
		"HOME=/root",
	})
	l.AddMapping("GRIDSTORM_LEVEL", "logging.level")

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := map[string]any{
		"document": map[string]any{
			"delimiter":      "|",
			"maxUndoEntries": "20",
		},
		"logging": map[string]any{
			"level": "warn",
		},
		"export": map[string]any{
			"format": "",
		},
	}
	// GRIDSTORM_LOGGING_LEVEL and the mapped GRIDSTORM_LEVEL share a path;
	// the later variable wins.
	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf("expected %v, got %v", expected, cfg)
	}
}

func TestCoerce(t *testing.T) {
	like := map[string]any{
		"document": map[string]any{
			"delimiter":      ",",
			"maxUndoEntries": int64(100),
			"strict":         true,
		},
		"logging": map[string]any{"level": "info"},
	}
	layer := map[string]any{
		"document": map[string]any{
			"delimiter":      int64(1),
			"maxUndoEntries": " 7",
			"strict":         "off",
			"unknown":        "x",
		},
		"logging": map[string]any{"level": "off"},
		"extra":   "kept",
	}

	if err := Coerce(layer, like); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := map[string]any{
		"document": map[string]any{
			"delimiter":      "1",
			"maxUndoEntries": int64(7),
			"strict":         false,
			"unknown":        "x",
		},
		"logging": map[string]any{"level": "off"},
		"extra":   "kept",
	}
	if !reflect.DeepEqual(layer, expected) {
		t.Errorf("expected %v, got %v", expected, layer)
	}
}

func TestCoerceErrors(t *testing.T) {
	like := map[string]any{
		"document": map[string]any{"maxUndoEntries": int64(100), "strict": true},
	}
	layer := map[string]any{
		"document": map[string]any{"maxUndoEntries": "many", "strict": "maybe"},
	}

	err := Coerce(layer, like)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"document.maxUndoEntries", "document.strict"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"document": map[string]any{"delimiter": ",", "encoding": "utf-8"},
		"logging":  map[string]any{"level": "info"},
	}
	src := map[string]any{
		"document": map[string]any{"delimiter": ";"},
		"logging":  "off",
	}

	got := DeepMerge(Clone(dst), src)
	expected := map[string]any{
		"document": map[string]any{"delimiter": ";", "encoding": "utf-8"},
		"logging":  "off",
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
	if dst["document"].(map[string]any)["delimiter"] != "," {
		t.Error("Clone should isolate the original map")
	}
}
