// Package history provides snapshot-based undo/redo for a piece table.
//
// Because a piece table's edit buffer is append-only, a copy of the piece list
// is a complete, cheap description of the document's content at that moment.
// History keeps two stacks of such copies:
//
//	h := history.New(100)
//
//	h.Push("update cell", table.Pieces()) // before mutating
//	// ... mutate the table ...
//
//	if prev, ok := h.Undo(table.Pieces()); ok {
//	    table.SetPieces(prev)
//	}
//
// Pushing a new entry clears the redo stack. Both stacks are capped; when the
// cap is exceeded the oldest entries are dropped.
//
// # Grouping
//
// Compound operations that call other mutating operations wrap themselves in
// a group so that only the outermost call records a snapshot:
//
//	defer h.GroupScope("paste", table.Pieces()).End()
package history
