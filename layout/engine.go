// Package layout places report content on fixed-size pages. An Engine owns a
// write cursor and breaks to a new page whenever the next line, table row or
// figure would cross the bottom margin; tables repeat their header row at the
// top of every continuation page.
package layout

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/wudi/pdfreport/builder"
	"github.com/wudi/pdfreport/coords"
	"github.com/wudi/pdfreport/ir/semantic"
	"github.com/wudi/pdfreport/observability"
	"github.com/wudi/pdfreport/writer"
)

// Engine is a single report build session. It is not safe for concurrent
// use.
type Engine struct {
	b      builder.PDFBuilder
	cfg    Config
	log    observability.Logger
	doc    *Document
	cursor Cursor

	// pendingBreak defers the break after the title page until content
	// arrives, so a title-only report has a single page.
	pendingBreak bool
	outlines     []outlineEntry
	images       map[string]*semantic.Image
	info         *semantic.DocumentInfo
	built        *semantic.Document
	// err poisons the session after a failure that left partial output.
	err error
}

type outlineEntry struct {
	title string
	level HeaderLevel
	page  int
	y     float64
}

// NewEngine returns an Engine drawing through b.
func NewEngine(b builder.PDFBuilder, opts ...Option) (*Engine, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		b:      b,
		cfg:    cfg,
		log:    cfg.Logger,
		doc:    newDocument(b, cfg.Geometry, cfg.Decorator, cfg.Clock()),
		images: make(map[string]*semantic.Image),
	}, nil
}

// Cursor returns a copy of the write position.
func (e *Engine) Cursor() Cursor { return e.cursor }

func (e *Engine) Geometry() Geometry { return e.cfg.Geometry }

// Document exposes the page list for inspection.
func (e *Engine) Document() *Document { return e.doc }

// BreakPage starts a new page, decorates it and moves the cursor to the top
// left corner of the writable area.
func (e *Engine) BreakPage() error {
	if err := e.check("break page"); err != nil {
		return err
	}
	e.pendingBreak = false
	p, err := e.doc.addPage()
	e.cursor.reset(e.cfg.Geometry, p.Number)
	e.log.Debug("page break", observability.Int("page", p.Number))
	if err != nil {
		e.err = fmt.Errorf("decorate page %d: %w", p.Number, err)
		return e.err
	}
	return nil
}

// check returns the error that stops op: a failed decorator poisons the
// session and a built document takes no more content.
func (e *Engine) check(op string) error {
	if e.err != nil {
		return e.err
	}
	if e.built != nil {
		return newLayoutError(op, ErrBuilt, "no content can follow Build")
	}
	return nil
}

// ensurePage creates the first page or the page deferred after the title
// page. It reports whether a page was created.
func (e *Engine) ensurePage() (bool, error) {
	if err := e.check("write"); err != nil {
		return false, err
	}
	if e.doc.PageCount() > 0 && !e.pendingBreak {
		return false, nil
	}
	return true, e.BreakPage()
}

// ensureSpace breaks the page at most once so that h more millimetres fit
// below the cursor.
func (e *Engine) ensureSpace(h float64) error {
	fresh, err := e.ensurePage()
	if err != nil || fresh {
		return err
	}
	if !e.cfg.Geometry.Fits(e.cursor.Y, h) {
		return e.BreakPage()
	}
	return nil
}

func (e *Engine) page() *Page { return e.doc.Current() }

// Build finalizes the semantic document. Later calls return the same
// document.
func (e *Engine) Build() (*semantic.Document, error) {
	if e.built != nil {
		return e.built, nil
	}
	if e.err != nil {
		return nil, e.err
	}
	if e.doc.PageCount() == 0 {
		return nil, newLayoutError("build", ErrNoPages, "nothing was written")
	}
	info := e.info
	if info == nil {
		info = &semantic.DocumentInfo{Creator: Creator, Producer: Creator}
	}
	e.b.SetInfo(info)
	if e.cfg.Language != "" {
		e.b.SetLanguage(e.cfg.Language)
	}
	for _, o := range nestOutlines(e.outlines) {
		e.b.AddOutline(o)
	}
	doc, err := e.b.Build()
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}
	e.built = doc
	return doc, nil
}

// Save writes the finished PDF to w.
func (e *Engine) Save(ctx context.Context, w io.Writer) error {
	ctx, span := e.cfg.Tracer.StartSpan(ctx, observability.SpanRenderReport)
	defer span.Finish()
	doc, err := e.Build()
	if err != nil {
		span.SetError(err)
		return err
	}
	span.SetTag(observability.MetricPageCount, len(doc.Pages))
	wr := (&writer.WriterBuilder{}).WithLogger(e.log).WithTracer(e.cfg.Tracer).Build()
	if err := wr.Write(ctx, doc, w, e.cfg.Output); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}

// SaveFile writes the PDF to path. The file is only created once the
// document has been built successfully.
func (e *Engine) SaveFile(ctx context.Context, path string) (err error) {
	if _, err := e.Build(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("save %s: %w", path, cerr)
		}
	}()
	if err := e.Save(ctx, f); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func (e *Engine) addOutline(title string, level HeaderLevel, y float64) {
	e.outlines = append(e.outlines, outlineEntry{title: title, level: level, page: e.cursor.Page, y: y})
}

// nestOutlines turns the flat header sequence into a bookmark tree where a
// deeper header becomes a child of the closest shallower one before it.
func nestOutlines(entries []outlineEntry) []builder.Outline {
	type node struct {
		out   builder.Outline
		level HeaderLevel
		kids  []*node
	}
	root := &node{level: 0}
	stack := []*node{root}
	for _, en := range entries {
		top := en.y
		n := &node{
			out:   builder.Outline{Title: en.title, PageIndex: en.page - 1, Y: &top},
			level: en.level,
		}
		for len(stack) > 1 && stack[len(stack)-1].level >= en.level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		parent.kids = append(parent.kids, n)
		stack = append(stack, n)
	}
	var convert func(ns []*node) []builder.Outline
	convert = func(ns []*node) []builder.Outline {
		out := make([]builder.Outline, 0, len(ns))
		for _, n := range ns {
			o := n.out
			o.Children = convert(n.kids)
			out = append(out, o)
		}
		return out
	}
	return convert(root.kids)
}

// outlineY converts a cursor position to the bookmark target in points.
func (e *Engine) outlineY(y float64) float64 {
	return coords.ToPoints(e.cfg.Geometry.Height - y)
}
