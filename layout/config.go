package layout

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/wudi/pdfreport/builder"
	"github.com/wudi/pdfreport/observability"
	"github.com/wudi/pdfreport/writer"
)

// HeaderLevel selects one of the configured header styles.
type HeaderLevel int

const (
	Header1 HeaderLevel = iota + 1
	Header2
	Header3
)

func (l HeaderLevel) String() string { return fmt.Sprintf("header_%d", int(l)) }

// ParseHeaderLevel converts 1, 2 or 3 to a HeaderLevel.
func ParseHeaderLevel(n int) (HeaderLevel, error) {
	l := HeaderLevel(n)
	if l < Header1 || l > Header3 {
		return 0, newConfigError("header level", fmt.Errorf("%w: %d", ErrUnknownHeaderLevel, n))
	}
	return l, nil
}

// TextStyle describes how a line of text is set. Size is in points,
// LineHeight in millimetres.
type TextStyle struct {
	Font       string
	Size       float64
	LineHeight float64
	Color      builder.Color
	Underline  bool
}

// TableLayout fixes the cell grid used by AddTable.
type TableLayout struct {
	CellWidth   float64
	CellHeight  float64
	LabelLimit  int
	Font        string
	HeaderFont  string
	FontSize    float64
	BorderWidth float64
	BorderColor builder.Color
}

// MaxColumns is how many cells fit side by side in usableWidth.
func (t TableLayout) MaxColumns(usableWidth float64) int {
	return int(math.Floor(usableWidth/t.CellWidth + epsilon))
}

// RuleStyle describes horizontal rules.
type RuleStyle struct {
	Color builder.Color
	Width float64
}

// Config is the validated engine configuration.
type Config struct {
	Geometry Geometry
	Regular  TextStyle
	Headers  map[HeaderLevel]TextStyle
	// HeaderGap is the space inserted above every header.
	HeaderGap           float64
	Table               TableLayout
	Rule                RuleStyle
	DefaultFigureHeight float64
	// MaxTitleLength is the exclusive upper bound on the title length in runes.
	MaxTitleLength int
	Title          TextStyle
	Byline         TextStyle

	Decorator PageDecorator
	Resolver  Resolver
	Logger    observability.Logger
	Tracer    observability.Tracer
	Clock     func() time.Time
	Output    writer.Config
	// Language is the BCP 47 tag written to the catalog, e.g. "en-GB".
	// Empty leaves it unset.
	Language string
}

// DefaultConfig returns the report defaults: A4, Helvetica 10 body text,
// three underlined bold-oblique header levels and a 20x4 mm Courier table grid.
func DefaultConfig() Config {
	grey := builder.RGB(60, 60, 60)
	header := func(size, lh float64) TextStyle {
		return TextStyle{Font: "Helvetica-BoldOblique", Size: size, LineHeight: lh, Color: grey, Underline: true}
	}
	return Config{
		Geometry: DefaultGeometry(),
		Regular:  TextStyle{Font: "Helvetica", Size: 10, LineHeight: 5, Color: grey},
		Headers: map[HeaderLevel]TextStyle{
			Header1: header(30, 15),
			Header2: header(20, 10),
			Header3: header(15, 7.5),
		},
		HeaderGap: 4,
		Table: TableLayout{
			CellWidth:   20,
			CellHeight:  4,
			LabelLimit:  10,
			Font:        "Courier",
			HeaderFont:  "Courier-BoldOblique",
			FontSize:    6,
			BorderWidth: 0.2,
			BorderColor: builder.RGB(0, 0, 0),
		},
		Rule:                RuleStyle{Color: builder.RGB(220, 220, 220), Width: 0},
		DefaultFigureHeight: 30,
		MaxTitleLength:      15,
		Title:               TextStyle{Font: "Helvetica-Bold", Size: 40, Color: builder.RGB(128, 128, 128)},
		Byline:              TextStyle{Font: "Helvetica-Oblique", Size: 15, Color: builder.RGB(128, 128, 128)},
		Resolver:            DefaultResolver(),
		Logger:              observability.NopLogger{},
		Tracer:              observability.NopTracer(),
		Clock:               time.Now,
		Output:              writer.Config{Version: writer.PDF17, Compression: 6},
	}
}

// Validate checks the configuration as a whole. Every error is a *ConfigError.
func (c Config) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	if err := c.Regular.validate("regular"); err != nil {
		return err
	}
	tallest := math.Max(c.Regular.LineHeight, 2*c.Table.CellHeight)
	for _, l := range []HeaderLevel{Header1, Header2, Header3} {
		s, ok := c.Headers[l]
		if !ok {
			return newConfigError(l.String(), errors.New("missing style"))
		}
		if err := s.validate(l.String()); err != nil {
			return err
		}
		tallest = math.Max(tallest, s.LineHeight)
	}
	for l := range c.Headers {
		if l < Header1 || l > Header3 {
			return newConfigError(l.String(), ErrUnknownHeaderLevel)
		}
	}
	t := c.Table
	switch {
	case t.CellWidth <= 0 || t.CellHeight <= 0:
		return newConfigError("table", fmt.Errorf("cell size %gx%g must be positive", t.CellWidth, t.CellHeight))
	case t.LabelLimit <= 0:
		return newConfigError("table", fmt.Errorf("label limit %d must be positive", t.LabelLimit))
	case t.FontSize <= 0:
		return newConfigError("table", fmt.Errorf("font size %g must be positive", t.FontSize))
	case t.MaxColumns(c.Geometry.UsableWidth()) < 1:
		return newConfigError("table", fmt.Errorf("cell width %g exceeds usable width %g", t.CellWidth, c.Geometry.UsableWidth()))
	}
	if c.HeaderGap < 0 {
		return newConfigError("header gap", fmt.Errorf("%g must not be negative", c.HeaderGap))
	}
	if c.DefaultFigureHeight <= 0 || c.DefaultFigureHeight > c.Geometry.UsableHeight() {
		return newConfigError("figure height", fmt.Errorf("%g must be in (0, %g]", c.DefaultFigureHeight, c.Geometry.UsableHeight()))
	}
	if tallest > c.Geometry.UsableHeight() {
		return newConfigError("geometry", fmt.Errorf("usable height %g is below the tallest line %g", c.Geometry.UsableHeight(), tallest))
	}
	if c.MaxTitleLength <= 0 {
		return newConfigError("title length", fmt.Errorf("%d must be positive", c.MaxTitleLength))
	}
	if c.Resolver == nil || c.Logger == nil || c.Tracer == nil || c.Clock == nil {
		return newConfigError("engine", errors.New("resolver, logger, tracer and clock are required"))
	}
	return nil
}

func (s TextStyle) validate(key string) error {
	if s.Size <= 0 || s.LineHeight <= 0 {
		return newConfigError(key, fmt.Errorf("size %g and line height %g must be positive", s.Size, s.LineHeight))
	}
	return nil
}

// TruncateLabel returns the first n runes of s, without an ellipsis.
func TruncateLabel(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Option configures an Engine.
type Option func(*Config)

func WithGeometry(g Geometry) Option {
	return func(c *Config) { c.Geometry = g }
}

// WithPaperSize keeps the current margins and changes the page size.
func WithPaperSize(size builder.PaperSize) Option {
	return func(c *Config) {
		c.Geometry.Width = size.Width
		c.Geometry.Height = size.Height
	}
}

func WithMargins(top, left, right, bottom float64) Option {
	return func(c *Config) {
		c.Geometry.Top, c.Geometry.Left, c.Geometry.Right, c.Geometry.Bottom = top, left, right, bottom
	}
}

// WithHeaderStyles overrides the styles of the given levels.
func WithHeaderStyles(styles map[HeaderLevel]TextStyle) Option {
	return func(c *Config) {
		merged := make(map[HeaderLevel]TextStyle, len(c.Headers)+len(styles))
		for l, s := range c.Headers {
			merged[l] = s
		}
		for l, s := range styles {
			merged[l] = s
		}
		c.Headers = merged
	}
}

// WithLanguage sets the document's natural language.
func WithLanguage(tag string) Option {
	return func(c *Config) { c.Language = tag }
}

func WithTableLayout(t TableLayout) Option {
	return func(c *Config) { c.Table = t }
}

func WithDefaultFigureHeight(h float64) Option {
	return func(c *Config) { c.DefaultFigureHeight = h }
}

func WithDecorator(d PageDecorator) Option {
	return func(c *Config) { c.Decorator = d }
}

func WithLogger(l observability.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithTracer traces Save and the PDF serialization below it.
func WithTracer(t observability.Tracer) Option {
	return func(c *Config) { c.Tracer = t }
}

func WithResolver(r Resolver) Option {
	return func(c *Config) { c.Resolver = r }
}

// WithClock sets the source of the report date shown by decorators.
func WithClock(now func() time.Time) Option {
	return func(c *Config) { c.Clock = now }
}

func WithOutput(cfg writer.Config) Option {
	return func(c *Config) { c.Output = cfg }
}
