package layout

import (
	"time"

	"github.com/wudi/pdfreport/builder"
	"github.com/wudi/pdfreport/coords"
	"github.com/wudi/pdfreport/ir/semantic"
)

// Align is the horizontal alignment of text inside a cell.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// cellInset is the horizontal padding between a cell edge and its text.
const cellInset = 1.0

// Page is one page of the report. Drawing methods take millimetres measured
// from the top-left corner.
type Page struct {
	Number   int
	Geometry Geometry
	Project  string
	Author   string
	Date     time.Time

	b     builder.PDFBuilder
	pb    builder.PageBuilder
	space coords.Matrix
}

func (p *Page) pt(x, y float64) coords.Point {
	return p.space.Transform(coords.Point{X: x, Y: y})
}

// TextWidth measures text in millimetres.
func (p *Page) TextWidth(text string, style TextStyle) float64 {
	return coords.ToMM(p.b.MeasureText(text, style.Size, style.Font))
}

// Text draws text with its baseline at y.
func (p *Page) Text(x, y float64, text string, style TextStyle) {
	at := p.pt(x, y)
	p.pb.DrawText(text, at.X, at.Y, builder.TextOptions{Font: style.Font, FontSize: style.Size, Color: style.Color})
	if style.Underline && text != "" {
		fs := coords.ToMM(style.Size)
		uy := y + 0.1*fs
		p.Line(x, uy, x+p.TextWidth(text, style), uy, style.Color, 0.05*fs)
	}
}

// Cell draws text vertically centred in the w x h box at (x, y), optionally
// with a border. A zero w stretches the box to the right margin.
func (p *Page) Cell(x, y, w, h float64, text string, style TextStyle, border bool, align Align) {
	if w == 0 {
		w = p.Geometry.Width - p.Geometry.Right - x
	}
	if border {
		p.Rect(x, y, w, h, builder.RGB(0, 0, 0), 0.2)
	}
	if text == "" {
		return
	}
	var dx float64
	switch align {
	case AlignCenter:
		dx = (w - p.TextWidth(text, style)) / 2
	case AlignRight:
		dx = w - cellInset - p.TextWidth(text, style)
	default:
		dx = cellInset
	}
	p.Text(x+dx, baseline(y, h, style), text, style)
}

// borderedCell is Cell with an explicit border style.
func (p *Page) borderedCell(x, y, w, h float64, text string, style TextStyle, t TableLayout) {
	p.Rect(x, y, w, h, t.BorderColor, t.BorderWidth)
	p.Cell(x, y, w, h, text, style, false, AlignCenter)
}

// baseline places text of the given style vertically centred in a line of
// height h starting at y.
func baseline(y, h float64, style TextStyle) float64 {
	return y + h/2 + 0.3*coords.ToMM(style.Size)
}

func (p *Page) Line(x1, y1, x2, y2 float64, color builder.Color, width float64) {
	a, b := p.pt(x1, y1), p.pt(x2, y2)
	p.pb.DrawLine(a.X, a.Y, b.X, b.Y, builder.LineOptions{StrokeColor: color, LineWidth: coords.ToPoints(width)})
}

func (p *Page) Rect(x, y, w, h float64, color builder.Color, width float64) {
	ll := p.pt(x, y+h)
	p.pb.DrawRectangle(ll.X, ll.Y, coords.ToPoints(w), coords.ToPoints(h), builder.RectOptions{
		Stroke:      true,
		StrokeColor: color,
		LineWidth:   coords.ToPoints(width),
	})
}

// Image draws img with its top-left corner at (x, y). When one of w or h is
// zero it follows the image's aspect ratio.
func (p *Page) Image(img *semantic.Image, x, y, w, h float64) (float64, float64) {
	w, h = fitImage(img, w, h)
	ll := p.pt(x, y+h)
	p.pb.DrawImage(img, ll.X, ll.Y, coords.ToPoints(w), coords.ToPoints(h), builder.ImageOptions{})
	return w, h
}

func fitImage(img *semantic.Image, w, h float64) (float64, float64) {
	if img.Width <= 0 || img.Height <= 0 {
		return w, h
	}
	ratio := float64(img.Width) / float64(img.Height)
	switch {
	case w == 0 && h == 0:
		return coords.ToMM(float64(img.Width)), coords.ToMM(float64(img.Height))
	case w == 0:
		return h * ratio, h
	case h == 0:
		return w, w / ratio
	}
	return w, h
}

// Document is the append-only list of pages.
type Document struct {
	b         builder.PDFBuilder
	geom      Geometry
	decorator PageDecorator
	date      time.Time
	project   string
	author    string
	pages     []*Page
}

func newDocument(b builder.PDFBuilder, g Geometry, d PageDecorator, date time.Time) *Document {
	return &Document{b: b, geom: g, decorator: d, date: date}
}

func (d *Document) PageCount() int { return len(d.pages) }

// Current is the page being written, or nil before the first page.
func (d *Document) Current() *Page {
	if len(d.pages) == 0 {
		return nil
	}
	return d.pages[len(d.pages)-1]
}

// IsReferencePage reports whether page number ref is still the current page.
func (d *Document) IsReferencePage(ref int) bool {
	return len(d.pages) == ref
}

// addPage appends a page and runs the decorator on it.
func (d *Document) addPage() (*Page, error) {
	p := &Page{
		Number:   len(d.pages) + 1,
		Geometry: d.geom,
		Project:  d.project,
		Author:   d.author,
		Date:     d.date,
		b:        d.b,
		pb:       d.b.NewPage(coords.ToPoints(d.geom.Width), coords.ToPoints(d.geom.Height)),
		space:    coords.PageSpace(d.geom.Height),
	}
	d.pages = append(d.pages, p)
	if d.decorator != nil {
		if err := d.decorator.Decorate(p); err != nil {
			return p, err
		}
	}
	return p, nil
}
