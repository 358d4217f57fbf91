package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wudi/pdfreport/layout"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(context.Background())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReport_CSVAndMarkdown(t *testing.T) {
	dir := t.TempDir()
	var csv strings.Builder
	csv.WriteString("unit,temp,status\n")
	for i := 0; i < 120; i++ {
		csv.WriteString("e1,91,ok\n")
	}
	data := writeFile(t, dir, "data.csv", csv.String())
	md := writeFile(t, dir, "notes.md", "## Notes\n\nAll engines nominal.\n\n---\n")
	out := filepath.Join(dir, "out.pdf")

	err := execute(t, "--csv", data, "--markdown", md, "--title", "Fleet", "--author", "Ops",
		"--deterministic", "-o", out)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	pdf, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-1.7")) {
		t.Errorf("output is not a PDF")
	}
	if !bytes.Contains(pdf, []byte("/Title (Fleet)")) {
		t.Errorf("document info lacks the title")
	}
}

func TestReport_MaxImagePixels(t *testing.T) {
	dir := t.TempDir()
	logo := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for i := range logo.Pix {
		logo.Pix[i] = 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, logo); err != nil {
		t.Fatal(err)
	}
	logoPath := writeFile(t, dir, "logo.png", buf.String())
	data := writeFile(t, dir, "data.csv", "a\n1\n")
	out := filepath.Join(dir, "out.pdf")

	if err := execute(t, "--csv", data, "--logo", logoPath, "--max-image-px", "40", "-o", out); err != nil {
		t.Fatalf("report: %v", err)
	}
	pdf, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(pdf, []byte("/Width 40")) || bytes.Contains(pdf, []byte("/Width 200")) {
		t.Errorf("logo was not resampled to 40 pixels")
	}
}

func TestReport_Errors(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.csv", "a\n1\n")
	wide := writeFile(t, dir, "wide.csv", strings.Repeat("c,", 20)+"c\n"+strings.Repeat("1,", 20)+"1\n")
	out := filepath.Join(dir, "out.pdf")

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{"long title", []string{"--csv", data, "--title", "A very long project title", "-o", out}, layout.ErrTitleTooLong},
		{"too many columns", []string{"--csv", wide, "-o", out}, layout.ErrTooManyColumns},
		{"missing csv", []string{"--csv", filepath.Join(dir, "none.csv"), "-o", out}, os.ErrNotExist},
		{"bad paper", []string{"--csv", data, "--paper", "b9", "-o", out}, nil},
		{"bad margins", []string{"--csv", data, "--margins", "10,10", "-o", out}, nil},
		{"csv and xlsx", []string{"--csv", data, "--xlsx", data, "-o", out}, nil},
		{"nothing to render", []string{"-o", out}, layout.ErrNoPages},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
			if _, statErr := os.Stat(out); statErr == nil {
				t.Errorf("output written despite error")
			}
		})
	}
}
