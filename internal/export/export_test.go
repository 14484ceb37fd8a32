package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

type grid [][]string

func (g grid) RowCount() int            { return len(g) }
func (g grid) RowCells(row int) []string { return g[row] }

func render(t *testing.T, g grid, f Format) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, g, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected Format
		wantErr  bool
	}{
		{"html", HTML, false},
		{".htm", HTML, false},
		{"Markdown", Markdown, false},
		{"md", Markdown, false},
		{"json", JSON, false},
		{"xlsx", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("ParseFormat(%q): expected ErrUnknownFormat, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("ParseFormat(%q) = %v, %v, want %v", tt.in, got, err, tt.expected)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	f, err := FormatForPath("/tmp/report.md")
	if err != nil || f != Markdown {
		t.Errorf("expected markdown, got %v, %v", f, err)
	}
	if JSON.Extension() != ".json" {
		t.Errorf("expected .json, got %q", JSON.Extension())
	}
	if Format(9).Valid() {
		t.Error("expected format 9 to be invalid")
	}
}

func TestHTML(t *testing.T) {
	got := render(t, grid{{"a", "<b>"}, {"x & y"}}, HTML)
	expected := "<html>\n<body>\n<table border=\"1\">\n" +
		"  <tr>\n    <td>a</td>\n    <td>&lt;b&gt;</td>\n  </tr>\n" +
		"  <tr>\n    <td>x &amp; y</td>\n  </tr>\n" +
		"</table>\n</body>\n</html>"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestMarkdown(t *testing.T) {
	got := render(t, grid{
		{"name", "city"},
		{"Ada", "London", "extra"},
		{"日本"},
		{"a|b", "two\nlines"},
	}, Markdown)

	expected := "" +
		"| name | city         |\n" +
		"| ---- | ------------ |\n" +
		"| Ada  | London       |\n" +
		"| 日本 |              |\n" +
		"| a\\|b | two<br>lines |\n"
	if got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestMarkdownEmpty(t *testing.T) {
	if got := render(t, grid{}, Markdown); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestJSON(t *testing.T) {
	got := render(t, grid{
		{"name", "", "name", "a.b", "2024"},
		{"Ada", "1", "dup", "dot", "year"},
		{"Bob", "2", "", "", "", "overflow"},
		{"short"},
	}, JSON)

	if !gjson.Valid(got) {
		t.Fatalf("invalid JSON: %s", got)
	}
	doc := gjson.Parse(got)
	if n := len(doc.Array()); n != 3 {
		t.Fatalf("expected 3 objects, got %d", n)
	}

	tests := []struct {
		path     string
		expected string
	}{
		{"0.name", "Ada"},
		{"0.col2", "1"},
		{"0.col3", "dup"},
		{`0.a\.b`, "dot"},
		{"0.2024", "year"},
		{"1.col6", "overflow"},
		{"2.name", "short"},
		{"2.col2", ""},
	}
	for _, tt := range tests {
		r := doc.Get(tt.path)
		if !r.Exists() || r.String() != tt.expected {
			t.Errorf("%s: expected %q, got %q (exists=%v)", tt.path, tt.expected, r.String(), r.Exists())
		}
	}
}

func TestJSONHeaderOnly(t *testing.T) {
	if got := render(t, grid{{"a", "b"}}, JSON); strings.TrimSpace(got) != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	if err := WriteFile(path, grid{{"a"}}, HTML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<td>a</td>") {
		t.Errorf("unexpected file content %q", data)
	}

	if err := WriteFile(path, grid{}, Format(7)); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if err := WriteFile(filepath.Join(t.TempDir(), "missing", "x.md"), grid{}, Markdown); err == nil {
		t.Error("expected error for missing directory")
	}
}
