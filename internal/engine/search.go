package engine

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SearchMode selects how a query is compared with cell text.
type SearchMode uint8

const (
	Contains SearchMode = iota // cell contains the query
	Exact                      // cell equals the query
	Regex                      // query is a regular expression matched against the cell
)

// String returns the mode name.
func (m SearchMode) String() string {
	switch m {
	case Contains:
		return "contains"
	case Exact:
		return "exact"
	case Regex:
		return "regex"
	default:
		return "unknown"
	}
}

// ParseSearchMode parses a mode name as produced by String.
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(s) {
	case "contains", "":
		return Contains, nil
	case "exact":
		return Exact, nil
	case "regex", "regexp":
		return Regex, nil
	default:
		return Contains, fmt.Errorf("unknown search mode %q", s)
	}
}

// SearchOptions controls Search, Replace and ReplaceAll.
type SearchOptions struct {
	MatchCase    bool
	Mode         SearchMode
	Backward     bool
	IncludeStart bool // the start position itself is a candidate
}

// Position addresses a cell.
type Position struct {
	Row int
	Col int
}

// matcher applies one query under one set of options.
type matcher struct {
	query string
	opts  SearchOptions
	re    *regexp.Regexp
}

// newMatcher prepares a query. An empty query or an invalid pattern yields
// no matcher.
func (d *Document) newMatcher(query string, opts SearchOptions) (*matcher, bool) {
	if query == "" {
		return nil, false
	}
	m := &matcher{query: query, opts: opts}
	if opts.Mode == Regex {
		pattern := query
		if !opts.MatchCase {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			d.logger.Debug("invalid search pattern", "pattern", query, "error", err)
			return nil, false
		}
		m.re = re
	}
	return m, true
}

func (m *matcher) match(cell string) bool {
	switch m.opts.Mode {
	case Exact:
		if m.opts.MatchCase {
			return cell == m.query
		}
		return strings.EqualFold(cell, m.query)
	case Regex:
		return m.re.MatchString(cell)
	default:
		if m.opts.MatchCase {
			return strings.Contains(cell, m.query)
		}
		start, _ := foldIndex(cell, m.query, 0)
		return start >= 0
	}
}

// replace returns cell with the query substituted. Exact mode replaces the
// whole value, Contains mode every occurrence.
func (m *matcher) replace(cell, replacement string) string {
	switch m.opts.Mode {
	case Exact:
		return replacement
	case Regex:
		return m.re.ReplaceAllString(cell, replacement)
	default:
		if m.opts.MatchCase {
			return strings.ReplaceAll(cell, m.query, replacement)
		}
		return foldReplaceAll(cell, m.query, replacement)
	}
}

// foldIndex returns the byte span of the first case-insensitive occurrence of
// sub in s at or after from, or -1, -1. The span may differ in length from
// sub when case mappings change the encoded width.
func foldIndex(s, sub string, from int) (int, int) {
	for i := from; i < len(s); {
		if n, ok := foldPrefix(s[i:], sub); ok {
			return i, i + n
		}
		_, w := utf8.DecodeRuneInString(s[i:])
		i += w
	}
	return -1, -1
}

// foldPrefix reports whether s starts with prefix ignoring case, and the
// length in s of the matched text.
func foldPrefix(s, prefix string) (int, bool) {
	n := 0
	for _, pr := range prefix {
		if n >= len(s) {
			return 0, false
		}
		r, w := utf8.DecodeRuneInString(s[n:])
		if r != pr && unicode.ToLower(r) != unicode.ToLower(pr) {
			return 0, false
		}
		n += w
	}
	return n, true
}

func foldReplaceAll(s, old, replacement string) string {
	var sb strings.Builder
	last := 0
	for {
		start, end := foldIndex(s, old, last)
		if start < 0 {
			break
		}
		sb.WriteString(s[last:start])
		sb.WriteString(replacement)
		last = end
	}
	if last == 0 {
		return s
	}
	sb.WriteString(s[last:])
	return sb.String()
}

// Search scans cells in row-major order from the given position and returns
// the first one matching query. With IncludeStart the start cell itself is
// considered. The scan does not wrap.
func (d *Document) Search(query string, from Position, opts SearchOptions) (Position, bool) {
	m, ok := d.newMatcher(query, opts)
	if !ok || len(d.rows) == 0 {
		return Position{}, false
	}
	if opts.Backward {
		return d.searchBackward(m, from)
	}
	return d.searchForward(m, from)
}

func (d *Document) searchForward(m *matcher, from Position) (Position, bool) {
	r0 := max(from.Row, 0)
	for r := r0; r < len(d.rows); r++ {
		values := d.RowCells(r)
		c := 0
		if r == from.Row {
			c = max(from.Col, 0)
			if !m.opts.IncludeStart && from.Col >= 0 {
				c++
			}
		}
		for ; c < len(values); c++ {
			if m.match(values[c]) {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

func (d *Document) searchBackward(m *matcher, from Position) (Position, bool) {
	if from.Row < 0 {
		return Position{}, false
	}
	r0 := from.Row
	clamped := r0 >= len(d.rows)
	if clamped {
		r0 = len(d.rows) - 1
	}
	for r := r0; r >= 0; r-- {
		values := d.RowCells(r)
		c := len(values) - 1
		if r == from.Row && !clamped {
			c = from.Col
			if !m.opts.IncludeStart {
				c--
			}
			c = min(c, len(values)-1)
		}
		for ; c >= 0; c-- {
			if m.match(values[c]) {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

// Replace substitutes query in the cell at pos if that cell still matches.
// It reports whether the cell changed.
func (d *Document) Replace(query, replacement string, pos Position, opts SearchOptions) bool {
	m, ok := d.newMatcher(query, opts)
	if !ok {
		return false
	}
	values := d.RowCells(pos.Row)
	if pos.Col < 0 || pos.Col >= len(values) {
		return false
	}
	cell := values[pos.Col]
	if !m.match(cell) {
		return false
	}
	next := m.replace(cell, replacement)
	if next == cell {
		return false
	}
	d.UpdateCell(pos.Row, pos.Col, next)
	return true
}

// ReplaceAll substitutes query in every matching cell and returns the number
// of cells changed. The whole call is one undo step.
func (d *Document) ReplaceAll(query, replacement string, opts SearchOptions) int {
	m, ok := d.newMatcher(query, opts)
	if !ok {
		return 0
	}
	changed := 0
	d.rewriteRows("replace all", func(_ int, values []string) ([]string, bool) {
		hit := false
		for c, cell := range values {
			if !m.match(cell) {
				continue
			}
			if next := m.replace(cell, replacement); next != cell {
				values[c] = next
				changed++
				hit = true
			}
		}
		return values, hit
	})
	if changed > 0 {
		d.logger.Debug("replaced all", "query", query, "cells", changed)
	}
	return changed
}
