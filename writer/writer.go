// Package writer serializes a semantic.Document into PDF bytes.
package writer

import (
	"context"
	"io"

	"github.com/wudi/pdfreport/ir/raw"
	"github.com/wudi/pdfreport/ir/semantic"
	"github.com/wudi/pdfreport/observability"
)

type PDFVersion string

const (
	PDF14 PDFVersion = "1.4"
	PDF17 PDFVersion = "1.7"
)

// Config controls serialization.
type Config struct {
	Version PDFVersion
	// Compression is the flate level for content streams and raw images.
	// Zero leaves streams uncompressed.
	Compression int
	// Deterministic derives the trailer /ID from the document instead of
	// random bytes so identical input produces identical output.
	Deterministic bool
}

type Writer interface {
	Write(ctx context.Context, doc *semantic.Document, w io.Writer, cfg Config) error
	SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error)
}

type WriterBuilder struct {
	logger observability.Logger
	tracer observability.Tracer
}

func (b *WriterBuilder) WithLogger(l observability.Logger) *WriterBuilder {
	b.logger = l
	return b
}

func (b *WriterBuilder) WithTracer(t observability.Tracer) *WriterBuilder {
	b.tracer = t
	return b
}

func (b *WriterBuilder) Build() Writer {
	w := &impl{logger: b.logger, tracer: b.tracer}
	if w.logger == nil {
		w.logger = observability.NopLogger{}
	}
	if w.tracer == nil {
		w.tracer = observability.NopTracer()
	}
	return w
}
