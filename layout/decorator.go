package layout

import (
	"fmt"

	"github.com/wudi/pdfreport/builder"
	"github.com/wudi/pdfreport/ir/semantic"
)

// PageDecorator draws the running header and footer of a freshly created
// page. It draws inside the margins only and never moves the cursor. An error
// aborts the operation that caused the page break.
type PageDecorator interface {
	Decorate(p *Page) error
}

// DecoratorFunc adapts a function to PageDecorator.
type DecoratorFunc func(p *Page) error

func (f DecoratorFunc) Decorate(p *Page) error { return f(p) }

// Decorators runs each decorator in order and stops at the first error.
type Decorators []PageDecorator

func (ds Decorators) Decorate(p *Page) error {
	for _, d := range ds {
		if err := d.Decorate(p); err != nil {
			return err
		}
	}
	return nil
}

// RunningDecorator draws the standard report furniture: an optional logo in
// the top-right third of the page, an optional graphic in the top-left
// corner, a centred "project - N" footer, the report date on the left and an
// optional graphic in the lower right.
type RunningDecorator struct {
	Logo       *semantic.Image
	UpperLeft  *semantic.Image
	LowerRight *semantic.Image

	// FooterOffset is the distance of the footer line from the bottom edge.
	FooterOffset float64
	Footer       TextStyle
}

// NewRunningDecorator returns a RunningDecorator with the default footer.
func NewRunningDecorator() *RunningDecorator {
	return &RunningDecorator{
		FooterOffset: 15,
		Footer:       TextStyle{Font: "Helvetica-Oblique", Size: 9, LineHeight: 10, Color: builder.RGB(128, 128, 128)},
	}
}

func (d *RunningDecorator) Decorate(p *Page) error {
	if p == nil {
		return fmt.Errorf("decorate: nil page")
	}
	g := p.Geometry
	if d.Logo != nil {
		p.Image(d.Logo, 2*g.Width/3, 0, g.Width/3, 0)
	}
	if d.UpperLeft != nil {
		p.Image(d.UpperLeft, 0, 0, 70, 0)
	}

	y := g.Height - d.FooterOffset
	footer := fmt.Sprintf("%d", p.Number)
	if p.Project != "" {
		footer = fmt.Sprintf("%s - %d", p.Project, p.Number)
	}
	p.Cell(g.Left, y, 0, d.Footer.LineHeight, footer, d.Footer, false, AlignCenter)
	if d.LowerRight != nil {
		p.Image(d.LowerRight, g.Width-70, g.Height-34, 70, 0)
	}
	if !p.Date.IsZero() {
		date := fmt.Sprintf("%d/%d/%d", p.Date.Day(), int(p.Date.Month()), p.Date.Year())
		p.Cell(10, y, 0, d.Footer.LineHeight, date, d.Footer, false, AlignLeft)
	}
	return nil
}
