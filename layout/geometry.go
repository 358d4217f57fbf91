package layout

import (
	"errors"
	"fmt"

	"github.com/wudi/pdfreport/builder"
)

// Geometry holds the page size and margins in millimetres. The bottom margin
// doubles as the automatic page-break margin.
type Geometry struct {
	Width, Height            float64
	Top, Left, Right, Bottom float64
}

// DefaultGeometry is A4 portrait with 35 mm top and bottom margins and 20 mm
// side margins.
func DefaultGeometry() Geometry {
	return Geometry{Width: builder.A4.Width, Height: builder.A4.Height, Top: 35, Left: 20, Right: 20, Bottom: 35}
}

// NewGeometry validates and returns a Geometry.
func NewGeometry(width, height, top, left, right, bottom float64) (Geometry, error) {
	g := Geometry{Width: width, Height: height, Top: top, Left: left, Right: right, Bottom: bottom}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

func (g Geometry) Validate() error {
	switch {
	case g.Width <= 0 || g.Height <= 0:
		return newConfigError("geometry", fmt.Errorf("page size %gx%g must be positive", g.Width, g.Height))
	case g.Top < 0 || g.Left < 0 || g.Right < 0 || g.Bottom < 0:
		return newConfigError("geometry", errors.New("margins must not be negative"))
	case g.Width <= g.Left+g.Right:
		return newConfigError("geometry", fmt.Errorf("width %g leaves no room between margins %g and %g", g.Width, g.Left, g.Right))
	case g.Height <= g.Top+g.Bottom:
		return newConfigError("geometry", fmt.Errorf("height %g leaves no room between margins %g and %g", g.Height, g.Top, g.Bottom))
	}
	return nil
}

func (g Geometry) UsableWidth() float64 { return g.Width - g.Left - g.Right }

func (g Geometry) UsableHeight() float64 { return g.Height - g.Top - g.Bottom }

// Limit is the lowest y content may reach before a page break.
func (g Geometry) Limit() float64 { return g.Height - g.Bottom }

// SpaceRemaining is the vertical room left below y.
func (g Geometry) SpaceRemaining(y float64) float64 { return g.Height - g.Bottom - y }

// Fits reports whether h more millimetres fit below y.
func (g Geometry) Fits(y, h float64) bool { return y+h <= g.Limit()+epsilon }

const epsilon = 1e-9
