package layout

import (
	"unicode/utf8"

	"github.com/wudi/pdfreport/builder"
	"github.com/wudi/pdfreport/ir/semantic"
)

// --- Mocks ---

type MockBuilder struct {
	Pages    []*MockPageBuilder
	Info     *semantic.DocumentInfo
	Lang     string
	Outlines []builder.Outline
	Builds   int
}

func (m *MockBuilder) NewPage(width, height float64) builder.PageBuilder {
	p := &MockPageBuilder{parent: m, Width: width, Height: height}
	m.Pages = append(m.Pages, p)
	return p
}

func (m *MockBuilder) MeasureText(text string, fontSize float64, fontName string) float64 {
	return float64(utf8.RuneCountInString(text)) * fontSize * 0.5
}

func (m *MockBuilder) SetInfo(info *semantic.DocumentInfo) builder.PDFBuilder {
	m.Info = info
	return m
}
func (m *MockBuilder) SetLanguage(lang string) builder.PDFBuilder {
	m.Lang = lang
	return m
}
func (m *MockBuilder) AddOutline(out builder.Outline) builder.PDFBuilder {
	m.Outlines = append(m.Outlines, out)
	return m
}
func (m *MockBuilder) RegisterFont(name string, font *semantic.Font) builder.PDFBuilder { return m }
func (m *MockBuilder) Build() (*semantic.Document, error) {
	m.Builds++
	doc := &semantic.Document{Info: m.Info}
	for i := range m.Pages {
		doc.Pages = append(doc.Pages, &semantic.Page{Index: i})
	}
	return doc, nil
}

type MockPageBuilder struct {
	parent        *MockBuilder
	Width, Height float64
	DrawnTexts    []DrawnText
	DrawnImages   []DrawnImage
	Rects         int
	Lines         int
}

type DrawnText struct {
	Text string
	X, Y float64
	Opts builder.TextOptions
}

type DrawnImage struct {
	Img        *semantic.Image
	X, Y, W, H float64
}

func (m *MockPageBuilder) DrawText(text string, x, y float64, opts builder.TextOptions) builder.PageBuilder {
	m.DrawnTexts = append(m.DrawnTexts, DrawnText{Text: text, X: x, Y: y, Opts: opts})
	return m
}

func (m *MockPageBuilder) DrawImage(img *semantic.Image, x, y, width, height float64, opts builder.ImageOptions) builder.PageBuilder {
	m.DrawnImages = append(m.DrawnImages, DrawnImage{Img: img, X: x, Y: y, W: width, H: height})
	return m
}

func (m *MockPageBuilder) DrawRectangle(x, y, width, height float64, opts builder.RectOptions) builder.PageBuilder {
	m.Rects++
	return m
}

func (m *MockPageBuilder) DrawLine(x1, y1, x2, y2 float64, opts builder.LineOptions) builder.PageBuilder {
	m.Lines++
	return m
}

func (m *MockPageBuilder) Finish() builder.PDFBuilder                  { return m.parent }

// Texts returns the strings drawn on the page in order.
func (m *MockPageBuilder) Texts() []string {
	out := make([]string, len(m.DrawnTexts))
	for i, t := range m.DrawnTexts {
		out[i] = t.Text
	}
	return out
}

func newTestEngine(t interface {
	Helper()
	Fatalf(string, ...any)
}, opts ...Option) (*Engine, *MockBuilder) {
	t.Helper()
	mb := &MockBuilder{}
	e, err := NewEngine(mb, opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, mb
}

func grid(cols []string, rows int, cell func(r, c int) string) *stringTable {
	st := &stringTable{columns: cols}
	for r := 0; r < rows; r++ {
		row := make([]string, len(cols))
		for c := range cols {
			row[c] = cell(r, c)
		}
		st.rows = append(st.rows, row)
	}
	return st
}

func testImage(w, h int) *semantic.Image {
	return &semantic.Image{
		Width:            w,
		Height:           h,
		ColorSpace:       semantic.DeviceColorSpace{Name: "DeviceGray"},
		BitsPerComponent: 8,
		Data:             make([]byte, w*h),
	}
}
