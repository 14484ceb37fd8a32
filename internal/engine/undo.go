package engine

import "github.com/dshills/gridstorm/internal/engine/piece"

// Undo restores the state before the most recent mutation. It reports false
// when there is nothing to undo.
func (d *Document) Undo() bool {
	prev, ok := d.hist.Undo(d.table.Pieces())
	if !ok {
		return false
	}
	d.restore(prev)
	d.logger.Debug("undo", "remaining", d.hist.UndoCount())
	return true
}

// Redo reapplies the most recently undone mutation. It reports false when
// there is nothing to redo.
func (d *Document) Redo() bool {
	next, ok := d.hist.Redo(d.table.Pieces())
	if !ok {
		return false
	}
	d.restore(next)
	d.logger.Debug("redo", "remaining", d.hist.RedoCount())
	return true
}

// CanUndo reports whether Undo would change the document.
func (d *Document) CanUndo() bool {
	return d.hist.CanUndo()
}

// CanRedo reports whether Redo would change the document.
func (d *Document) CanRedo() bool {
	return d.hist.CanRedo()
}

// UndoLabel returns the name of the mutation Undo would revert.
func (d *Document) UndoLabel() string {
	info, _ := d.hist.PeekUndo()
	return info.Description
}

// RedoLabel returns the name of the mutation Redo would reapply.
func (d *Document) RedoLabel() string {
	info, _ := d.hist.PeekRedo()
	return info.Description
}

func (d *Document) restore(pieces []piece.Piece) {
	d.table.SetPieces(pieces)
	d.RebuildRowIndex(nil)
	d.modified = true
}
