package export

import (
	"bufio"
	"html"
)

func writeHTML(w *bufio.Writer, src RowSource) error {
	w.WriteString("<html>\n<body>\n<table border=\"1\">\n")
	for r := range src.RowCount() {
		w.WriteString("  <tr>\n")
		for _, cell := range src.RowCells(r) {
			w.WriteString("    <td>")
			w.WriteString(html.EscapeString(cell))
			w.WriteString("</td>\n")
		}
		w.WriteString("  </tr>\n")
	}
	_, err := w.WriteString("</table>\n</body>\n</html>")
	return err
}
