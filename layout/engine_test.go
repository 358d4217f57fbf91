package layout

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/wudi/pdfreport/builder"
	"github.com/wudi/pdfreport/coords"
	"github.com/wudi/pdfreport/observability"
)

func ctx() context.Context { return context.Background() }

func TestNewEngine_InvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		field string
	}{
		{"margins overlap", []Option{WithMargins(150, 20, 20, 150)}, "geometry"},
		{"header level 4", []Option{WithHeaderStyles(map[HeaderLevel]TextStyle{4: {Font: "Helvetica", Size: 8, LineHeight: 4}})}, "header_4"},
		{"zero header size", []Option{WithHeaderStyles(map[HeaderLevel]TextStyle{Header2: {Font: "Helvetica", LineHeight: 4}})}, "header_2"},
		{"figure taller than page", []Option{WithDefaultFigureHeight(400)}, "figure height"},
		{"cell wider than page", []Option{WithTableLayout(TableLayout{CellWidth: 500, CellHeight: 4, LabelLimit: 10, FontSize: 6})}, "table"},
		{"nil resolver", []Option{WithResolver(nil)}, "engine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(&MockBuilder{}, tt.opts...)
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestBuild_NoPages(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Build()
	if !errors.Is(err, ErrNoPages) {
		t.Fatalf("err = %v, want ErrNoPages", err)
	}
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := e.SaveFile(ctx(), path); !errors.Is(err, ErrNoPages) {
		t.Fatalf("SaveFile err = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file created for an empty report: %v", err)
	}
}

func TestBuild_Outlines(t *testing.T) {
	e, mb := newTestEngine(t)
	steps := []struct {
		text  string
		level HeaderLevel
	}{
		{"Intro", Header1},
		{"Scope", Header2},
		{"Detail", Header3},
		{"Method", Header2},
		{"Results", Header1},
	}
	for _, s := range steps {
		if err := e.WriteHeader(s.text, s.level); err != nil {
			t.Fatalf("WriteHeader(%s): %v", s.text, err)
		}
	}
	if _, err := e.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := e.Build(); err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if mb.Builds != 1 {
		t.Errorf("builder built %d times", mb.Builds)
	}

	want := []string{"Intro", "  Scope", "    Detail", "  Method", "Results"}
	if diff := cmp.Diff(want, outlineTitles(mb.Outlines, "")); diff != "" {
		t.Errorf("outline tree mismatch (-want +got):\n%s", diff)
	}
	g := e.Geometry()
	first := mb.Outlines[0]
	if first.PageIndex != 0 || first.Y == nil || *first.Y != coords.ToPoints(g.Height-(g.Top+4)) {
		t.Errorf("first outline = %+v", first)
	}
	if mb.Info == nil || mb.Info.Creator != Creator {
		t.Errorf("info = %+v", mb.Info)
	}
	if mb.Lang != "" {
		t.Errorf("language set without WithLanguage: %q", mb.Lang)
	}
}

func outlineTitles(outs []builder.Outline, indent string) []string {
	var titles []string
	for _, o := range outs {
		titles = append(titles, indent+o.Title)
		titles = append(titles, outlineTitles(o.Children, indent+"  ")...)
	}
	return titles
}

func TestBuild_RejectsLaterContent(t *testing.T) {
	e, mb := newTestEngine(t)
	if err := e.WriteText("done"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if _, err := e.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	pageTexts := len(mb.Pages[0].DrawnTexts)

	ops := map[string]func() error{
		"BreakPage":         e.BreakPage,
		"WriteText":         func() error { return e.WriteText("late") },
		"WriteHeader":       func() error { return e.WriteHeader("Late section", Header1) },
		"AddHorizontalLine": e.AddHorizontalLine,
		"AddTable":          func() error { return e.AddTable(grid([]string{"a", "v"}, 1, func(r, c int) string { return "x" })) },
		"AddImage":          func() error { return e.AddImage(testImage(4, 2), 10) },
		"AddFigure":         func() error { return e.AddFigure(ctx(), "logo.png", 10) },
		"AddTitlePage":      func() error { return e.AddTitlePage("Late", "Ops") },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrBuilt) {
			t.Errorf("%s after Build: err = %v, want ErrBuilt", name, err)
		}
	}
	if got := len(mb.Pages[0].DrawnTexts); got != pageTexts {
		t.Errorf("built page gained %d texts", got-pageTexts)
	}
	if len(mb.Pages) != 1 || len(mb.Outlines) != 0 {
		t.Errorf("pages = %d, outlines = %d after rejected writes", len(mb.Pages), len(mb.Outlines))
	}
}

func TestSave_WritesPDF(t *testing.T) {
	b := builder.NewBuilder()
	e, err := NewEngine(b, WithClock(func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }),
		WithDecorator(NewRunningDecorator()), WithLanguage("en-GB"))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := e.AddTitlePage("Quarterly", "Ops"); err != nil {
		t.Fatalf("AddTitlePage: %v", err)
	}
	if err := e.WriteHeader("Summary", Header1); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := e.AddTable(grid([]string{"k", "v"}, 3, func(r, c int) string { return "x" })); err != nil {
		t.Fatalf("AddTable: %v", err)
	}

	var buf bytes.Buffer
	if err := e.Save(ctx(), &buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out := buf.String()
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-1.7")) {
		t.Errorf("output starts with %q", out[:min(len(out), 10)])
	}
	for _, want := range []string{"/Count 2", "/Title (Quarterly)", "/Lang (en-GB)", "/Outlines", "%%EOF"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("output lacks %q", want)
		}
	}

	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := e.SaveFile(ctx(), path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(data) == 0 || !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("saved file is not a PDF")
	}
}

func TestSave_CancelledContext(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.WriteText("x"); err != nil {
		t.Fatal(err)
	}
	c, cancel := context.WithCancel(ctx())
	cancel()
	if err := e.Save(c, &bytes.Buffer{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type spanRecorder struct{ spans []string }

func (r *spanRecorder) StartSpan(c context.Context, name string) (context.Context, observability.Span) {
	r.spans = append(r.spans, name)
	return observability.NopTracer().StartSpan(c, name)
}

func TestSave_Traces(t *testing.T) {
	rec := &spanRecorder{}
	e, _ := newTestEngine(t, WithTracer(rec))
	if err := e.WriteText("x"); err != nil {
		t.Fatal(err)
	}
	if err := e.Save(ctx(), io.Discard); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := []string{observability.SpanRenderReport, observability.SpanWrite}
	if diff := cmp.Diff(want, rec.spans); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
}
