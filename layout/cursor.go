package layout

// Cursor is the write position: X and Y in millimetres from the top-left
// corner and the 1-based number of the page being written. Page is zero until
// the first page exists.
type Cursor struct {
	X, Y float64
	Page int
}

// Advance moves the cursor down by dy without any page-break check.
func (c *Cursor) Advance(dy float64) { c.Y += dy }

// newLine moves to the start of the next line.
func (c *Cursor) newLine(g Geometry, h float64) {
	c.Y += h
	c.X = g.Left
}

func (c *Cursor) reset(g Geometry, page int) {
	c.X = g.Left
	c.Y = g.Top
	c.Page = page
}
