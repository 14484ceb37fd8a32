package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dshills/gridstorm/internal/engine"
	"github.com/dshills/gridstorm/internal/export"
	"github.com/dshills/gridstorm/internal/watch"
)

// command is a subcommand. args lists its positional arguments after the
// file.
type command struct {
	args string
	help string
	run  func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"info":       {"<file>", "Show encoding, line ending and size", cmdInfo},
	"cat":        {"<file> [first] [last]", "Print rows as tab-separated text", cmdCat},
	"get":        {"<file> <row> <col>", "Print one cell", cmdGet},
	"set":        {"<file> <row> <col> <value>", "Replace one cell", cmdSet},
	"insert-row": {"<file> <index> [values...]", "Insert a row before index", cmdInsertRow},
	"delete-row": {"<file> <index>", "Delete a row", cmdDeleteRow},
	"insert-col": {"<file> <col> [default]", "Insert a column in every row", cmdInsertCol},
	"delete-col": {"<file> <col>", "Delete a column from every row", cmdDeleteCol},
	"paste":      {"<file> <row> <col>", "Paste tab-separated text from stdin", cmdPaste},
	"import":     {"<file> <other>", "Append the rows of another file", cmdImport},
	"find":       {"<file> <query>", "List matching cells", cmdFind},
	"replace":    {"<file> <query> <replacement>", "Replace in every matching cell", cmdReplace},
	"export":     {"<file>", "Export as HTML, Markdown or JSON", cmdExport},
	"watch":      {"<file>", "Report row counts whenever the file changes", cmdWatch},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// argInts parses the given positional arguments as non-negative integers.
func argInts(args ...string) ([]int, error) {
	out := make([]int, len(args))
	for i, s := range args {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q is not a valid index", errUsage, s)
		}
		out[i] = n
	}
	return out, nil
}

// edit opens the file, applies fn and saves the result.
func (a *app) edit(path string, fn func(doc *engine.Document) error) error {
	doc, err := a.open(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	if err := fn(doc); err != nil {
		return err
	}
	if !doc.Modified() && a.opts.output == "" {
		a.logger.Info("no changes", "path", path)
		return nil
	}
	return a.save(doc)
}

func cmdInfo(_ context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	doc, err := a.open(args[0])
	if err != nil {
		return err
	}
	defer doc.Close()

	w := a.stdout
	fmt.Fprintf(w, "Path:        %s\n", doc.Path())
	fmt.Fprintf(w, "Size:        %d bytes\n", doc.Len())
	fmt.Fprintf(w, "Encoding:    %s\n", doc.Encoding())
	fmt.Fprintf(w, "Line ending: %s\n", doc.LineEnding())
	fmt.Fprintf(w, "Delimiter:   %q\n", doc.Delimiter())
	fmt.Fprintf(w, "Rows:        %d\n", doc.RowCount())
	fmt.Fprintf(w, "Columns:     %d\n", doc.MaxColumnCount())
	return nil
}

func cmdCat(_ context.Context, a *app, args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return errUsage
	}
	bounds, err := argInts(args[1:]...)
	if err != nil {
		return err
	}
	doc, err := a.open(args[0])
	if err != nil {
		return err
	}
	defer doc.Close()

	first, last := 0, doc.RowCount()-1
	if len(bounds) > 0 {
		first = bounds[0]
	}
	if len(bounds) > 1 {
		last = bounds[1]
	}
	for r := first; r <= min(last, doc.RowCount()-1); r++ {
		width := len(doc.RowCells(r))
		if _, err := io.WriteString(a.stdout, doc.RangeAsText(r, 0, r, width-1)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func cmdGet(_ context.Context, a *app, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	pos, err := argInts(args[1:]...)
	if err != nil {
		return err
	}
	doc, err := a.open(args[0])
	if err != nil {
		return err
	}
	defer doc.Close()

	cells := doc.RowCells(pos[0])
	if pos[1] >= len(cells) {
		return fmt.Errorf("no cell at row %d, column %d", pos[0], pos[1])
	}
	fmt.Fprintln(a.stdout, cells[pos[1]])
	return nil
}

func cmdSet(_ context.Context, a *app, args []string) error {
	if len(args) != 4 {
		return errUsage
	}
	pos, err := argInts(args[1:3]...)
	if err != nil {
		return err
	}
	return a.edit(args[0], func(doc *engine.Document) error {
		if pos[0] >= doc.RowCount() {
			return fmt.Errorf("row %d out of range (%d rows)", pos[0], doc.RowCount())
		}
		doc.UpdateCell(pos[0], pos[1], args[3])
		return nil
	})
}

func cmdInsertRow(_ context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	idx, err := argInts(args[1])
	if err != nil {
		return err
	}
	return a.edit(args[0], func(doc *engine.Document) error {
		doc.InsertRow(idx[0], args[2:])
		return nil
	})
}

func cmdDeleteRow(_ context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	idx, err := argInts(args[1])
	if err != nil {
		return err
	}
	return a.edit(args[0], func(doc *engine.Document) error {
		if idx[0] >= doc.RowCount() {
			return fmt.Errorf("row %d out of range (%d rows)", idx[0], doc.RowCount())
		}
		doc.DeleteRow(idx[0])
		return nil
	})
}

func cmdInsertCol(_ context.Context, a *app, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errUsage
	}
	col, err := argInts(args[1])
	if err != nil {
		return err
	}
	def := ""
	if len(args) == 3 {
		def = args[2]
	}
	return a.edit(args[0], func(doc *engine.Document) error {
		doc.InsertColumn(col[0], def)
		return nil
	})
}

func cmdDeleteCol(_ context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	col, err := argInts(args[1])
	if err != nil {
		return err
	}
	return a.edit(args[0], func(doc *engine.Document) error {
		doc.DeleteColumn(col[0])
		return nil
	})
}

func cmdPaste(_ context.Context, a *app, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	pos, err := argInts(args[1:]...)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\r\n")
	return a.edit(args[0], func(doc *engine.Document) error {
		doc.PasteCells(pos[0], pos[1], text)
		return nil
	})
}

func cmdImport(_ context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	return a.edit(args[0], func(doc *engine.Document) error {
		before := doc.RowCount()
		if err := doc.Import(args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Imported %d rows\n", doc.RowCount()-before)
		return nil
	})
}

func (a *app) searchOptions() (engine.SearchOptions, error) {
	mode, err := engine.ParseSearchMode(a.opts.mode)
	if err != nil {
		return engine.SearchOptions{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	return engine.SearchOptions{
		MatchCase: a.opts.matchCase,
		Mode:      mode,
		Backward:  a.opts.backward,
	}, nil
}

func cmdFind(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	opts, err := a.searchOptions()
	if err != nil {
		return err
	}
	doc, err := a.open(args[0])
	if err != nil {
		return err
	}
	defer doc.Close()

	from := engine.Position{}
	if opts.Backward {
		from = engine.Position{Row: doc.RowCount(), Col: 0}
	}
	opts.IncludeStart = true
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		pos, ok := doc.Search(args[1], from, opts)
		if !ok {
			break
		}
		fmt.Fprintf(a.stdout, "%d:%d\t%s\n", pos.Row, pos.Col, doc.RowCells(pos.Row)[pos.Col])
		count++
		from = pos
		opts.IncludeStart = false
	}
	a.logger.Debug("search finished", "query", args[1], "matches", count)
	return nil
}

func cmdReplace(_ context.Context, a *app, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	opts, err := a.searchOptions()
	if err != nil {
		return err
	}
	return a.edit(args[0], func(doc *engine.Document) error {
		n := doc.ReplaceAll(args[1], args[2], opts)
		fmt.Fprintf(a.stdout, "Replaced %d cells\n", n)
		return nil
	})
}

// exportTarget picks the output path and format. The -o extension wins,
// then the configured format; without -o the input name gets the format's
// extension.
func (a *app) exportTarget(input string) (string, export.Format, error) {
	out := a.opts.output
	if out != "" {
		if f, err := export.FormatForPath(out); err == nil {
			return out, f, nil
		}
	}
	f, err := export.ParseFormat(a.cfg.Export.Format)
	if err != nil {
		return "", 0, err
	}
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + f.Extension()
	}
	return out, f, nil
}

func cmdExport(_ context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	out, f, err := a.exportTarget(args[0])
	if err != nil {
		return err
	}
	doc, err := a.open(args[0])
	if err != nil {
		return err
	}
	defer doc.Close()

	if err := doc.Export(out, f); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Exported %d rows to %s (%s)\n", doc.RowCount(), out, f)
	return nil
}

func cmdWatch(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	doc, err := a.open(args[0])
	if err != nil {
		return err
	}
	defer doc.Close()

	w, err := watch.New(doc.Path(), watch.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer w.Close()

	report := func() {
		fmt.Fprintf(a.stdout, "%s: %d rows, %d columns\n", doc.Path(), doc.RowCount(), doc.MaxColumnCount())
	}
	report()
	return w.Run(ctx, func(ev watch.Event) {
		if ev.Op.Has(watch.OpRemove) && !ev.Op.Has(watch.OpCreate) {
			a.logger.Warn("file removed", "path", ev.Path)
			return
		}
		if err := doc.Reload(nil); err != nil {
			a.logger.Error("reload failed", "path", ev.Path, "error", err)
			return
		}
		report()
	})
}
