package builder

// PaperSize is a page size in millimetres.
type PaperSize struct {
	Name   string
	Width  float64
	Height float64
}

var (
	A3     = PaperSize{Name: "A3", Width: 297, Height: 420}
	A4     = PaperSize{Name: "A4", Width: 210, Height: 297}
	A5     = PaperSize{Name: "A5", Width: 148, Height: 210}
	Letter = PaperSize{Name: "Letter", Width: 215.9, Height: 279.4}
	Legal  = PaperSize{Name: "Legal", Width: 215.9, Height: 355.6}
)

// PaperSizes indexes the predefined sizes by name.
var PaperSizes = map[string]PaperSize{
	"a3": A3, "a4": A4, "a5": A5, "letter": Letter, "legal": Legal,
}

// Landscape swaps width and height.
func (s PaperSize) Landscape() PaperSize {
	return PaperSize{Name: s.Name, Width: s.Height, Height: s.Width}
}
