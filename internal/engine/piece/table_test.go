package piece

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func loadTable(t *testing.T, content string) *Table {
	t.Helper()
	tb := New()
	if err := tb.LoadFromFile(writeFixture(t, content)); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	t.Cleanup(func() { tb.Close() })
	return tb
}

func checkTable(t *testing.T, tb *Table, expected string) {
	t.Helper()
	if got := tb.String(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
	if tb.Len() != int64(len(expected)) {
		t.Errorf("expected length %d, got %d", len(expected), tb.Len())
	}
	if err := tb.Check(); err != nil {
		t.Error(err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tb := loadTable(t, "ABC")

	if tb.PieceCount() != 1 {
		t.Fatalf("expected 1 piece, got %d", tb.PieceCount())
	}
	p := tb.Pieces()[0]
	if p.Source != Original || p.Offset != 0 || p.Length != 3 {
		t.Errorf("unexpected piece %s", p)
	}
	if b, ok := tb.At(0); !ok || b != 'A' {
		t.Errorf("At(0) = %q, %v", b, ok)
	}
	checkTable(t, tb, "ABC")
}

func TestLoadEmptyFile(t *testing.T) {
	tb := loadTable(t, "")

	if tb.PieceCount() != 0 {
		t.Errorf("expected no pieces, got %d", tb.PieceCount())
	}
	if tb.Len() != 0 {
		t.Errorf("expected length 0, got %d", tb.Len())
	}
	if _, ok := tb.At(0); ok {
		t.Error("At on empty table should fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	tb := New()
	if err := tb.LoadFromFile(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestInsertSplitsPiece(t *testing.T) {
	tb := loadTable(t, "ABC")

	tb.Insert(1, []byte("12"))

	checkTable(t, tb, "A12BC")
	pieces := tb.Pieces()
	if len(pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %v", pieces)
	}
	if pieces[0].Source != Original || pieces[1].Source != Added || pieces[2].Source != Original {
		t.Errorf("unexpected piece sources %v", pieces)
	}
}

func TestInsertAtStartAndEnd(t *testing.T) {
	tb := loadTable(t, "Original")

	tb.Insert(8, []byte(" Modified"))
	checkTable(t, tb, "Original Modified")

	tb.Insert(0, []byte(">> "))
	checkTable(t, tb, ">> Original Modified")

	tb.Insert(1000, []byte("!"))
	checkTable(t, tb, ">> Original Modified!")
}

func TestInsertEmptyIsNoOp(t *testing.T) {
	tb := loadTable(t, "abc")
	tb.Insert(1, nil)
	checkTable(t, tb, "abc")
	if tb.AddedLen() != 0 {
		t.Errorf("edit buffer should be untouched, got %d bytes", tb.AddedLen())
	}
}

func TestSequentialInsertsMerge(t *testing.T) {
	tb := New()
	for _, s := range []string{"a", "b", "c", "d"} {
		tb.Insert(tb.Len(), []byte(s))
	}

	checkTable(t, tb, "abcd")
	if tb.PieceCount() != 1 {
		t.Errorf("expected typing at the end to extend one piece, got %v", tb.Pieces())
	}
}

func TestDelete(t *testing.T) {
	tb := New()
	tb.Insert(0, []byte("0123456789"))

	tb.Delete(5, 3)

	checkTable(t, tb, "0123489")
	if b, _ := tb.At(4); b != '4' {
		t.Errorf("At(4) = %q", b)
	}
	if b, _ := tb.At(5); b != '8' {
		t.Errorf("At(5) = %q", b)
	}
}

func TestDeleteAcrossPieces(t *testing.T) {
	tb := loadTable(t, "HelloWorld")
	tb.Insert(5, []byte(", "))
	tb.Insert(12, []byte("!"))
	checkTable(t, tb, "Hello, World!")

	tb.Delete(3, 6)
	checkTable(t, tb, "Helorld!")
}

func TestDeleteClamps(t *testing.T) {
	tests := []struct {
		name           string
		offset, length int64
		expected       string
	}{
		{"past end", 7, 100, "0123456"},
		{"whole", 0, 10, ""},
		{"zero length", 3, 0, "0123456789"},
		{"offset beyond", 10, 5, "0123456789"},
		{"negative offset", -2, 4, "23456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := loadTable(t, "0123456789")
			tb.Delete(tt.offset, tt.length)
			checkTable(t, tb, tt.expected)
		})
	}
}

func TestInsertDeleteInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tb := loadTable(t, "the quick brown fox\njumps over\nthe lazy dog\n")
	model := []byte(tb.String())

	for i := 0; i < 500; i++ {
		before := tb.String()
		offset := rng.Int63n(tb.Len() + 1)
		ins := []byte(strings.Repeat(string(rune('a'+rng.Intn(26))), 1+rng.Intn(5)))

		tb.Insert(offset, ins)
		tb.Delete(offset, int64(len(ins)))
		if tb.String() != before {
			t.Fatalf("insert/delete at %d did not restore content", offset)
		}

		// Random edit to move the table into a new state.
		if rng.Intn(2) == 0 {
			off := rng.Int63n(tb.Len() + 1)
			tb.Insert(off, ins)
			model = append(model[:off], append(append([]byte{}, ins...), model[off:]...)...)
		} else if tb.Len() > 0 {
			off := rng.Int63n(tb.Len())
			n := 1 + rng.Int63n(4)
			end := min(off+n, int64(len(model)))
			tb.Delete(off, n)
			model = append(model[:off], model[end:]...)
		}
		if !bytes.Equal([]byte(tb.String()), model) {
			t.Fatalf("step %d: table diverged from model", i)
		}
		if err := tb.Check(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSetPiecesRestores(t *testing.T) {
	tb := loadTable(t, "A,B\nC,D\n")
	saved := tb.Pieces()

	tb.Insert(4, []byte("X,Y\n"))
	tb.Delete(0, 4)
	checkTable(t, tb, "X,Y\nC,D\n")

	tb.SetPieces(saved)
	checkTable(t, tb, "A,B\nC,D\n")

	// The saved slice must not alias the live list.
	tb.Insert(0, []byte("Z"))
	if saved[0].Length != 8 {
		t.Errorf("snapshot was mutated: %v", saved)
	}
}

func TestBytes(t *testing.T) {
	tb := loadTable(t, "0123456789")
	tb.Insert(5, []byte("abc"))

	tests := []struct {
		start, end int64
		expected   string
	}{
		{0, 5, "01234"},
		{3, 9, "34abc5"},
		{6, 13, "bc56789"},
		{-5, 2, "01"},
		{12, 100, "9"},
		{5, 5, ""},
	}
	for _, tt := range tests {
		if got := string(tb.Bytes(tt.start, tt.end)); got != tt.expected {
			t.Errorf("Bytes(%d, %d) = %q, expected %q", tt.start, tt.end, got, tt.expected)
		}
	}
}

func TestChunks(t *testing.T) {
	tb := loadTable(t, "AAAA")
	tb.Insert(2, []byte("bb"))

	var got []string
	var offsets []int64
	it := tb.Chunks()
	for it.Next() {
		got = append(got, string(it.Chunk()))
		offsets = append(offsets, it.Offset())
	}

	if strings.Join(got, "|") != "AA|bb|AA" {
		t.Errorf("unexpected chunks %v", got)
	}
	if len(offsets) != 3 || offsets[0] != 0 || offsets[1] != 2 || offsets[2] != 4 {
		t.Errorf("unexpected offsets %v", offsets)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	content := "id,name\n1,\"Smith, J\"\r\n2,Doe\n"
	path := writeFixture(t, content)
	tb := New()
	if err := tb.LoadFromFile(path); err != nil {
		t.Fatal(err)
	}
	defer tb.Close()

	out := filepath.Join(t.TempDir(), "out.csv")
	if err := tb.Save(out); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("expected %q, got %q", content, data)
	}
}

func TestSaveOverMappedSource(t *testing.T) {
	path := writeFixture(t, "Original")
	tb := New()
	if err := tb.LoadFromFile(path); err != nil {
		t.Fatal(err)
	}
	defer tb.Close()

	tb.Insert(8, []byte(" Modified"))
	if err := tb.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Original Modified" {
		t.Errorf("expected %q, got %q", "Original Modified", data)
	}
	// The table still reads from the old mapping.
	checkTable(t, tb, "Original Modified")
}

func TestSaveMode(t *testing.T) {
	old := unix.Umask(0o027)
	defer unix.Umask(old)

	tb := New()
	tb.Insert(0, []byte("a,b\n"))
	dir := t.TempDir()

	fresh := filepath.Join(dir, "new.csv")
	if err := tb.Save(fresh); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	info, err := os.Stat(fresh)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("expected mode 0640 for a new file, got %o", info.Mode().Perm())
	}

	existing := filepath.Join(dir, "old.csv")
	if err := os.WriteFile(existing, []byte("x"), 0o604); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(existing, 0o604); err != nil {
		t.Fatal(err)
	}
	if err := tb.Save(existing); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if info, _ := os.Stat(existing); info.Mode().Perm() != 0o604 {
		t.Errorf("expected existing mode 0604 kept, got %o", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected only the saved files, got %d entries", len(entries))
	}
}

type shortWriter struct{ buf bytes.Buffer }

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > 2 {
		p = p[:2]
	}
	return w.buf.Write(p)
}

func TestWriteToShortWrite(t *testing.T) {
	tb := New()
	tb.Insert(0, []byte("abcdef"))

	var w shortWriter
	n, err := tb.WriteTo(&w)
	if err == nil {
		t.Fatal("expected short write error")
	}
	if n != 2 {
		t.Errorf("expected 2 bytes written, got %d", n)
	}
}
