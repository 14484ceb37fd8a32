package history

import (
	"time"

	"github.com/dshills/gridstorm/internal/engine/piece"
)

// DefaultMaxEntries is the default cap for each stack.
const DefaultMaxEntries = 100

// entry is one saved piece list with metadata.
type entry struct {
	pieces    []piece.Piece
	label     string
	timestamp time.Time
}

// OperationInfo describes a history entry.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
}

// History manages undo/redo snapshot stacks for one document.
// It is not safe for concurrent use.
type History struct {
	undoStack []entry
	redoStack []entry

	// Grouping state
	depth     int
	groupName string

	maxEntries int
}

// New creates a history holding at most maxEntries per stack.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Push records the state before a mutation and clears the redo stack.
// While a group is open Push is a no-op; the group already recorded the
// state its outermost operation started from.
func (h *History) Push(label string, state []piece.Piece) {
	if h.depth > 0 {
		return
	}
	h.undoStack = trim(append(h.undoStack, newEntry(label, state)), h.maxEntries)
	h.redoStack = nil
}

func newEntry(label string, state []piece.Piece) entry {
	return entry{
		pieces:    piece.Clone(state),
		label:     label,
		timestamp: time.Now(),
	}
}

// trim drops the oldest entries beyond max.
func trim(stack []entry, max int) []entry {
	if len(stack) <= max {
		return stack
	}
	excess := len(stack) - max
	clear(stack[:excess])
	return stack[excess:]
}

// Undo moves current onto the redo stack and returns the most recent undo
// snapshot. It returns false, leaving both stacks untouched, when there is
// nothing to undo.
func (h *History) Undo(current []piece.Piece) ([]piece.Piece, bool) {
	if len(h.undoStack) == 0 {
		return nil, false
	}
	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = trim(append(h.redoStack, newEntry(e.label, current)), h.maxEntries)
	return piece.Clone(e.pieces), true
}

// Redo moves current onto the undo stack and returns the most recent redo
// snapshot. It returns false when there is nothing to redo.
func (h *History) Redo(current []piece.Piece) ([]piece.Piece, bool) {
	if len(h.redoStack) == 0 {
		return nil, false
	}
	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = trim(append(h.undoStack, newEntry(e.label, current)), h.maxEntries)
	return piece.Clone(e.pieces), true
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries.
func (h *History) UndoCount() int {
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries.
func (h *History) RedoCount() int {
	return len(h.redoStack)
}

// PeekUndo returns info about the next undo entry without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	return peek(h.undoStack)
}

// PeekRedo returns info about the next redo entry without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	return peek(h.redoStack)
}

func peek(stack []entry) (OperationInfo, bool) {
	if len(stack) == 0 {
		return OperationInfo{}, false
	}
	e := stack[len(stack)-1]
	return OperationInfo{Description: e.label, Timestamp: e.timestamp}, true
}

// Clear removes all undo/redo history and closes any open group.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
	h.depth = 0
	h.groupName = ""
}

