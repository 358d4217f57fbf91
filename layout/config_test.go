package layout

import (
	"errors"
	"testing"

	"github.com/wudi/pdfreport/builder"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestParseHeaderLevel(t *testing.T) {
	for n := 1; n <= 3; n++ {
		l, err := ParseHeaderLevel(n)
		if err != nil || int(l) != n {
			t.Errorf("ParseHeaderLevel(%d) = %v, %v", n, l, err)
		}
	}
	for _, n := range []int{0, 4, -1} {
		_, err := ParseHeaderLevel(n)
		var ce *ConfigError
		if !errors.As(err, &ce) || !errors.Is(err, ErrUnknownHeaderLevel) {
			t.Errorf("ParseHeaderLevel(%d) err = %v", n, err)
		}
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"temperature_celsius", 10, "temperatur"},
		{"short", 10, "short"},
		{"exactlyten", 10, "exactlyten"},
		{"températures", 5, "tempé"},
		{"", 10, ""},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateLabel(tt.in, tt.n); got != tt.want {
			t.Errorf("TruncateLabel(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestMaxColumns(t *testing.T) {
	tl := DefaultConfig().Table
	tests := []struct {
		usable float64
		want   int
	}{
		{170, 8},
		{60, 3},
		{59.9, 2},
		{20, 1},
	}
	for _, tt := range tests {
		if got := tl.MaxColumns(tt.usable); got != tt.want {
			t.Errorf("MaxColumns(%g) = %d, want %d", tt.usable, got, tt.want)
		}
	}
}

func TestWithHeaderStylesMerges(t *testing.T) {
	cfg := DefaultConfig()
	WithHeaderStyles(map[HeaderLevel]TextStyle{Header2: {Font: "Times-Roman", Size: 18, LineHeight: 9}})(&cfg)
	if cfg.Headers[Header2].Font != "Times-Roman" {
		t.Errorf("header 2 font = %q", cfg.Headers[Header2].Font)
	}
	if cfg.Headers[Header1].Size != 30 || cfg.Headers[Header3].Size != 15 {
		t.Errorf("other levels changed: %+v", cfg.Headers)
	}
	if DefaultConfig().Headers[Header2].Font == "Times-Roman" {
		t.Error("defaults mutated")
	}
}

func TestWithPaperSize(t *testing.T) {
	cfg := DefaultConfig()
	WithPaperSize(builder.A4.Landscape())(&cfg)
	g := cfg.Geometry
	if g.Width != builder.A4.Height || g.Height != builder.A4.Width || g.Top != 35 || g.Left != 20 {
		t.Errorf("geometry = %+v", g)
	}
}

func TestGeometry(t *testing.T) {
	g := DefaultGeometry()
	if g.UsableWidth() != 170 {
		t.Errorf("usable width = %g", g.UsableWidth())
	}
	if g.UsableHeight() != 227 {
		t.Errorf("usable height = %g", g.UsableHeight())
	}
	if g.Limit() != 262 {
		t.Errorf("limit = %g", g.Limit())
	}
	if g.SpaceRemaining(250) != 12 {
		t.Errorf("space remaining = %g", g.SpaceRemaining(250))
	}
	if !g.Fits(258, 4) || g.Fits(258.5, 4) {
		t.Error("Fits boundary is wrong")
	}
}

func TestNewGeometry(t *testing.T) {
	tests := []struct {
		name    string
		g       [6]float64
		wantErr bool
	}{
		{"letter", [6]float64{215.9, 279.4, 25, 25, 25, 25}, false},
		{"zero width", [6]float64{0, 100, 0, 0, 0, 0}, true},
		{"negative margin", [6]float64{100, 100, -1, 0, 0, 0}, true},
		{"no width left", [6]float64{100, 100, 10, 50, 50, 10}, true},
		{"no height left", [6]float64{100, 100, 60, 10, 10, 40}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeometry(tt.g[0], tt.g[1], tt.g[2], tt.g[3], tt.g[4], tt.g[5])
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			var ce *ConfigError
			if err != nil && !errors.As(err, &ce) {
				t.Errorf("err = %T, want *ConfigError", err)
			}
		})
	}
}
