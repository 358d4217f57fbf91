// Package semantic is the in-memory document model produced by the builder
// and consumed by the writer: pages, content operations and resources.
package semantic

// Document is the semantic representation of a PDF.
type Document struct {
	Pages    []*Page
	Info     *DocumentInfo
	Lang     string
	Outlines []OutlineItem
}

// Page models a single PDF page. MediaBox is in points.
type Page struct {
	Index     int
	MediaBox  Rectangle
	Resources *Resources
	Contents  []ContentStream
}

// ContentStream is a sequence of operations on a page.
type ContentStream struct {
	Operations []Operation
	RawBytes   []byte
}

// Operation represents a PDF operator and operands.
type Operation struct {
	Operator string
	Operands []Operand
}

// Operand is a type-safe operand value.
type Operand interface {
	operand()
	Type() string
}

type NumberOperand struct{ Value float64 }

func (NumberOperand) operand()     {}
func (NumberOperand) Type() string { return "number" }

type NameOperand struct{ Value string }

func (NameOperand) operand()     {}
func (NameOperand) Type() string { return "name" }

type StringOperand struct{ Value []byte }

func (StringOperand) operand()     {}
func (StringOperand) Type() string { return "string" }

type ArrayOperand struct{ Values []Operand }

func (ArrayOperand) operand()     {}
func (ArrayOperand) Type() string { return "array" }

// Resources holds the named fonts and XObjects a page refers to.
type Resources struct {
	Fonts    map[string]*Font
	XObjects map[string]XObject
}

// Font represents a font resource. Only simple (non-embedded) fonts are
// produced by the builder; BaseFont names one of the standard 14.
type Font struct {
	Subtype  string // Type1 (default)
	BaseFont string
	Encoding string // e.g. WinAnsiEncoding
}

// ColorSpace names the color space of an image.
type ColorSpace interface {
	ColorSpaceName() string
}

// DeviceColorSpace is one of DeviceGray, DeviceRGB or DeviceCMYK.
type DeviceColorSpace struct {
	Name string
}

func (cs DeviceColorSpace) ColorSpaceName() string { return cs.Name }

// XObject describes a referenced image.
type XObject struct {
	Subtype string // Image
	Width   int
	Height  int
	ColorSpace
	BitsPerComponent int
	Data             []byte
	Filter           string // set when Data is already encoded (e.g. DCTDecode)
	Interpolate      bool
	SMask            *XObject
}

// Image is an alias for XObject for image convenience APIs.
type Image = XObject

// Rectangle represents a PDF rectangle.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// DocumentInfo models /Info dictionary values.
type DocumentInfo struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
	Keywords []string
}

// OutlineItem is a bookmark entry pointing at a page.
type OutlineItem struct {
	Title     string
	PageIndex int
	Dest      *OutlineDestination
	Children  []OutlineItem
}

// OutlineDestination is an /XYZ destination; nil fields keep the viewer's value.
type OutlineDestination struct {
	X    *float64
	Y    *float64
	Zoom *float64
}
