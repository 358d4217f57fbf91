package layout

import (
	"github.com/wudi/pdfreport/observability"
)

// Tabular is the read-only table input: named columns of equal length.
type Tabular interface {
	Columns() []string
	Rows() int
	Cell(row, col int) string
}

// AddTable renders t as a grid of fixed-size bordered cells. Column labels
// are truncated to the configured label limit; cell values are not. When the
// rows spill onto further pages the header row is repeated at the top of
// each of them.
func (e *Engine) AddTable(t Tabular) error {
	if err := e.check("add table"); err != nil {
		return err
	}
	cols := t.Columns()
	tl := e.cfg.Table
	if len(cols) == 0 {
		e.log.Warn("table rejected", observability.String("reason", ErrNoColumns.Error()))
		return newLayoutError("add table", ErrNoColumns, "nothing to draw")
	}
	if limit := tl.MaxColumns(e.cfg.Geometry.UsableWidth()); len(cols) > limit {
		e.log.Warn("table rejected", observability.Int("columns", len(cols)), observability.Int("max_columns", limit))
		return newLayoutError("add table", ErrTooManyColumns, "%d columns given, at most %d fit", len(cols), limit)
	}
	rows := t.Rows()

	if err := e.writeLine("", e.cfg.Regular); err != nil {
		return err
	}
	// Keep the header together with the first row.
	first := tl.CellHeight
	if rows > 0 {
		first *= 2
	}
	if err := e.ensureSpace(first); err != nil {
		return err
	}

	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = TruncateLabel(c, tl.LabelLimit)
	}
	color := e.cfg.Regular.Color
	headerStyle := TextStyle{Font: tl.HeaderFont, Size: tl.FontSize, LineHeight: tl.CellHeight, Color: color}
	cellStyle := TextStyle{Font: tl.Font, Size: tl.FontSize, LineHeight: tl.CellHeight, Color: color}

	ref := e.cursor.Page
	e.emitRow(labels, headerStyle)

	values := make([]string, len(cols))
	for r := 0; r < rows; r++ {
		// A row that does not fit breaks first, so a continuation page
		// always opens with the header row.
		if err := e.ensureSpace(tl.CellHeight); err != nil {
			return err
		}
		if !e.doc.IsReferencePage(ref) {
			e.log.Debug("repeat table header", observability.Int("page", e.cursor.Page), observability.Int("row", r))
			e.emitRow(labels, headerStyle)
			ref = e.cursor.Page
		}
		for c := range cols {
			values[c] = t.Cell(r, c)
		}
		e.emitRow(values, cellStyle)
	}
	e.log.Debug("table placed",
		observability.Int(observability.MetricTableRows, rows),
		observability.Int("columns", len(cols)),
		observability.Int("last_page", e.cursor.Page),
	)
	return e.writeLine("", e.cfg.Regular)
}

// emitRow draws one line of cells from the left margin and moves to the next
// line. The caller guarantees the row fits.
func (e *Engine) emitRow(texts []string, style TextStyle) {
	tl := e.cfg.Table
	p := e.page()
	x := e.cfg.Geometry.Left
	for _, s := range texts {
		p.borderedCell(x, e.cursor.Y, tl.CellWidth, tl.CellHeight, s, style, tl)
		x += tl.CellWidth
	}
	e.cursor.newLine(e.cfg.Geometry, tl.CellHeight)
}
