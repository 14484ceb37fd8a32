package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const defaultBarWidth = 40

// progressBar draws load progress on a terminal. On anything else it is
// silent.
type progressBar struct {
	w     io.Writer
	label string
	width int
	last  int
	shown bool
}

func newProgressBar(w io.Writer, label string) *progressBar {
	p := &progressBar{w: w, label: label, last: -1}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p
	}
	p.width = defaultBarWidth
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
		// label, brackets and percentage
		p.width = min(defaultBarWidth, cols-len(label)-9)
	}
	return p
}

// Update draws fraction, which is clamped to [0, 1].
func (p *progressBar) Update(fraction float64) {
	if p.width <= 0 {
		return
	}
	fraction = max(0, min(fraction, 1))
	pct := int(fraction * 100)
	if pct == p.last {
		return
	}
	p.last = pct
	p.shown = true
	filled := int(fraction * float64(p.width))
	fmt.Fprintf(p.w, "\r%s [%s%s] %3d%%", p.label, strings.Repeat("=", filled), strings.Repeat(" ", p.width-filled), pct)
}

// Done clears the bar.
func (p *progressBar) Done() {
	if !p.shown {
		return
	}
	fmt.Fprintf(p.w, "\r%s\r", strings.Repeat(" ", len(p.label)+p.width+8))
	p.shown = false
}
