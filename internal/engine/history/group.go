package history

import "github.com/dshills/gridstorm/internal/engine/piece"

// BeginGroup opens a group. The outermost BeginGroup records state as a
// single undo entry; nested groups and pushes inside the group record nothing.
func (h *History) BeginGroup(name string, state []piece.Piece) {
	if h.depth == 0 {
		h.Push(name, state)
		h.groupName = name
	}
	h.depth++
}

// EndGroup closes the innermost open group.
func (h *History) EndGroup() {
	if h.depth == 0 {
		return
	}
	h.depth--
	if h.depth == 0 {
		h.groupName = ""
	}
}

// IsGrouping returns true if a group is open.
func (h *History) IsGrouping() bool {
	return h.depth > 0
}

// GroupName returns the name of the outermost open group.
func (h *History) GroupName() string {
	return h.groupName
}

// GroupScope provides a convenient way to group operations using defer.
// Usage:
//
//	func (d *Document) PasteCells(...) {
//	    defer d.history.GroupScope("paste", d.table.Pieces()).End()
//	    // ... multiple edits ...
//	}
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
func (h *History) GroupScope(name string, state []piece.Piece) *GroupScope {
	h.BeginGroup(name, state)
	return &GroupScope{history: h, active: true}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}
