package layout

import (
	"fmt"
	"strings"

	"github.com/wudi/pdfreport/observability"
)

// writeLine draws one line of text at the cursor and moves to the next line.
// The line never straddles a page break.
func (e *Engine) writeLine(text string, style TextStyle) error {
	if err := e.ensureSpace(style.LineHeight); err != nil {
		return err
	}
	if text != "" {
		e.page().Text(e.cursor.X+cellInset, baseline(e.cursor.Y, style.LineHeight, style), text, style)
	}
	e.cursor.newLine(e.cfg.Geometry, style.LineHeight)
	return nil
}

// WriteHeader writes text in the style of level after a fixed gap and records
// a bookmark for it.
func (e *Engine) WriteHeader(text string, level HeaderLevel) error {
	style, ok := e.cfg.Headers[level]
	if !ok {
		e.log.Warn("unknown header level", observability.Int("level", int(level)))
		return newConfigError(level.String(), fmt.Errorf("%w: %d", ErrUnknownHeaderLevel, int(level)))
	}
	if _, err := e.ensurePage(); err != nil {
		return err
	}
	e.cursor.Advance(e.cfg.HeaderGap)
	e.cursor.X = e.cfg.Geometry.Left
	if err := e.ensureSpace(style.LineHeight); err != nil {
		return err
	}
	e.addOutline(text, level, e.outlineY(e.cursor.Y))
	return e.writeLine(text, style)
}

// WriteText writes text at the regular line height, one line per newline in
// text, and always ends with a line break. Lines are not wrapped.
func (e *Engine) WriteText(text string) error {
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		if err := e.writeLine(line, e.cfg.Regular); err != nil {
			return err
		}
	}
	return nil
}

// AddHorizontalLine writes a blank line, a rule across the writable width
// and another blank line.
func (e *Engine) AddHorizontalLine() error {
	if err := e.writeLine("", e.cfg.Regular); err != nil {
		return err
	}
	g := e.cfg.Geometry
	y := e.cursor.Y
	e.page().Line(g.Left, y, g.Width-g.Right, y, e.cfg.Rule.Color, e.cfg.Rule.Width)
	return e.writeLine("", e.cfg.Regular)
}
