package layout

import (
	"errors"
	"unicode/utf8"

	"github.com/wudi/pdfreport/ir/semantic"
	"github.com/wudi/pdfreport/observability"
)

var errEmptyImage = errors.New("image has no pixels")

// Creator is written to the document information of every report.
const Creator = "pdfreport"

// AddTitlePage starts the report with a title page showing project and
// "By: author". It must be called before any other content. The project
// name is also used by the running footer and the document information.
func (e *Engine) AddTitlePage(project, author string) error {
	if err := e.check("add title page"); err != nil {
		return err
	}
	if n := utf8.RuneCountInString(project); n >= e.cfg.MaxTitleLength {
		e.log.Warn("title rejected", observability.Int("length", n), observability.Int("limit", e.cfg.MaxTitleLength))
		return newLayoutError("add title page", ErrTitleTooLong, "%d characters, use fewer than %d", n, e.cfg.MaxTitleLength)
	}
	if e.doc.PageCount() > 0 {
		return newLayoutError("add title page", ErrTitlePageNotFirst, "%d pages already exist", e.doc.PageCount())
	}
	e.doc.project, e.doc.author = project, author
	e.info = &semantic.DocumentInfo{Title: project, Author: author, Creator: Creator, Producer: Creator}

	if err := e.BreakPage(); err != nil {
		return err
	}
	g := e.cfg.Geometry
	p := e.page()
	x := g.Width / 6
	p.Text(x+cellInset, baseline(g.Height/2, 0, e.cfg.Title), project, e.cfg.Title)
	p.Text(x+cellInset, baseline(g.Height/2+12, 0, e.cfg.Byline), "By: "+author, e.cfg.Byline)
	e.pendingBreak = true
	return nil
}
