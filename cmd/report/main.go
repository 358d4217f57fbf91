// Command report renders a paginated PDF report from a dataset, a Markdown
// document or an HTML document.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wudi/pdfreport/builder"
	"github.com/wudi/pdfreport/dataset"
	"github.com/wudi/pdfreport/ir/semantic"
	"github.com/wudi/pdfreport/layout"
	"github.com/wudi/pdfreport/observability"
	"github.com/wudi/pdfreport/writer"
)

type options struct {
	output string
	title  string
	author string
	lang   string

	csv    string
	xlsx   string
	sheet  string
	typed  bool
	driver string
	dsn    string
	query  string

	markdown string
	html     string
	header   string

	paper     string
	landscape bool
	margins   []float64

	logo       string
	upperLeft  string
	lowerRight string
	noFooter   bool

	maxImagePx    int
	compression   int
	deterministic bool
	verbose       bool
	logFormat     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "report [flags]",
		Short: "Render a paginated PDF report",
		Long: `report lays out a title page, sections, a data table that repeats its
header on every page, and figures into a PDF.

The table comes from --csv, --xlsx or a --query against --driver/--dsn.
Markdown and HTML documents are rendered after the table.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), &o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "report.pdf", "Output PDF path")
	f.StringVar(&o.title, "title", "", "Project name for the title page and footer (fewer than 15 characters)")
	f.StringVar(&o.author, "author", "", "Author shown on the title page")
	f.StringVar(&o.lang, "lang", "", "Document language tag, e.g. en-GB")
	f.StringVar(&o.csv, "csv", "", "CSV file whose first record names the columns")
	f.StringVar(&o.xlsx, "xlsx", "", "XLSX workbook whose first row names the columns")
	f.StringVar(&o.sheet, "sheet", "", "Worksheet to read from --xlsx (default: first)")
	f.BoolVar(&o.typed, "typed", false, "Parse numeric CSV/XLSX cells as numbers")
	f.StringVar(&o.driver, "driver", "", "Database for --query: mysql or postgres")
	f.StringVar(&o.dsn, "dsn", "", "Database connection string")
	f.StringVar(&o.query, "query", "", "SQL query producing the table")
	f.StringVar(&o.markdown, "markdown", "", "Markdown document to render")
	f.StringVar(&o.html, "html", "", "HTML document to render")
	f.StringVar(&o.header, "header", "Data", "Section header written above the table")
	f.StringVar(&o.paper, "paper", "a4", "Paper size: a3, a4, a5, letter or legal")
	f.BoolVar(&o.landscape, "landscape", false, "Rotate the paper to landscape")
	f.Float64SliceVar(&o.margins, "margins", nil, "Margins in mm: top,left,right,bottom")
	f.StringVar(&o.logo, "logo", "", "Image (path or URL) for the top-right logo")
	f.StringVar(&o.upperLeft, "upper-left", "", "Image (path or URL) for the top-left corner")
	f.StringVar(&o.lowerRight, "lower-right", "", "Image (path or URL) for the lower-right corner")
	f.BoolVar(&o.noFooter, "no-footer", false, "Omit the page footer and header images")
	f.IntVar(&o.maxImagePx, "max-image-px", layout.DefaultMaxImagePixels, "Resample images whose larger side exceeds this many pixels (0 keeps full size)")
	f.IntVar(&o.compression, "compress", 6, "Flate level for content streams (0 disables)")
	f.BoolVar(&o.deterministic, "deterministic", false, "Derive the file ID from the content")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Log page breaks and placements")
	f.StringVar(&o.logFormat, "log-format", "text", "Log format: text or json")
	cmd.MarkFlagsMutuallyExclusive("csv", "xlsx", "query")
	cmd.MarkFlagsRequiredTogether("driver", "dsn", "query")
	return cmd
}

func newLogger(o *options) observability.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, hopts)
	if o.logFormat == "json" {
		h = slog.NewJSONHandler(os.Stderr, hopts)
	}
	return observability.NewSlogLogger(slog.New(h))
}

func run(ctx context.Context, o *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(o)
	opts, err := engineOptions(ctx, o, logger)
	if err != nil {
		return err
	}
	e, err := layout.NewEngine(builder.NewBuilder(), opts...)
	if err != nil {
		return err
	}

	if o.title != "" {
		if err := e.AddTitlePage(o.title, o.author); err != nil {
			return err
		}
	}
	data, err := loadDataset(ctx, o)
	if err != nil {
		return err
	}
	if data != nil {
		if o.header != "" {
			if err := e.WriteHeader(o.header, layout.Header1); err != nil {
				return err
			}
		}
		if err := e.AddTable(data); err != nil {
			return err
		}
	}
	if o.markdown != "" {
		src, err := os.ReadFile(o.markdown)
		if err != nil {
			return err
		}
		if err := e.RenderMarkdown(ctx, string(src)); err != nil {
			return fmt.Errorf("render %s: %w", o.markdown, err)
		}
	}
	if o.html != "" {
		src, err := os.ReadFile(o.html)
		if err != nil {
			return err
		}
		if err := e.RenderHTML(ctx, string(src)); err != nil {
			return fmt.Errorf("render %s: %w", o.html, err)
		}
	}
	if err := e.SaveFile(ctx, o.output); err != nil {
		return err
	}
	logger.Info("report written",
		observability.String("path", o.output),
		observability.Int("pages", e.Document().PageCount()),
	)
	return nil
}

func engineOptions(ctx context.Context, o *options, logger observability.Logger) ([]layout.Option, error) {
	size, ok := builder.PaperSizes[strings.ToLower(o.paper)]
	if !ok {
		return nil, fmt.Errorf("unknown paper size %q", o.paper)
	}
	if o.landscape {
		size = size.Landscape()
	}
	resolver := layout.NewResolver(builder.DecodeOptions{MaxDimension: o.maxImagePx})
	opts := []layout.Option{
		layout.WithPaperSize(size),
		layout.WithLogger(logger),
		layout.WithResolver(resolver),
		layout.WithLanguage(o.lang),
		layout.WithOutput(writer.Config{Version: writer.PDF17, Compression: o.compression, Deterministic: o.deterministic}),
	}
	if len(o.margins) > 0 {
		if len(o.margins) != 4 {
			return nil, fmt.Errorf("--margins takes 4 values, got %d", len(o.margins))
		}
		m := o.margins
		opts = append(opts, layout.WithMargins(m[0], m[1], m[2], m[3]))
	}
	if !o.noFooter {
		d, err := runningDecorator(ctx, o, resolver)
		if err != nil {
			return nil, err
		}
		opts = append(opts, layout.WithDecorator(d))
	}
	return opts, nil
}

func runningDecorator(ctx context.Context, o *options, r layout.Resolver) (*layout.RunningDecorator, error) {
	d := layout.NewRunningDecorator()
	for _, img := range []struct {
		ref string
		dst **semantic.Image
	}{
		{o.logo, &d.Logo},
		{o.upperLeft, &d.UpperLeft},
		{o.lowerRight, &d.LowerRight},
	} {
		if img.ref == "" {
			continue
		}
		decoded, err := r.Resolve(ctx, img.ref)
		if err != nil {
			return nil, &layout.ResourceError{Ref: img.ref, Err: err}
		}
		*img.dst = decoded
	}
	return d, nil
}

func loadDataset(ctx context.Context, o *options) (*dataset.Dataset, error) {
	switch {
	case o.csv != "":
		return dataset.FromCSVFile(o.csv, dataset.CSVOptions{Typed: o.typed})
	case o.xlsx != "":
		return dataset.FromXLSXFile(o.xlsx, dataset.XLSXOptions{Sheet: o.sheet, Typed: o.typed})
	case o.query != "":
		return queryDataset(ctx, o)
	}
	return nil, nil
}

func queryDataset(ctx context.Context, o *options) (*dataset.Dataset, error) {
	conf := dataset.Conf{DSN: o.dsn}
	switch o.driver {
	case "mysql":
		db, err := dataset.OpenMySQL(ctx, conf)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return dataset.Query(ctx, db, o.query)
	case "postgres", "pgx":
		pool, err := dataset.OpenPgx(ctx, conf)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		return dataset.FromPgx(ctx, pool, o.query)
	}
	return nil, fmt.Errorf("unknown driver %q (want mysql or postgres)", o.driver)
}
