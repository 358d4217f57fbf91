package writer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/wudi/pdfreport/ir/raw"
	"github.com/wudi/pdfreport/ir/semantic"
	"github.com/wudi/pdfreport/observability"
)

type impl struct {
	logger observability.Logger
	tracer observability.Tracer
}

func (w *impl) SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error) {
	if obj == nil {
		return nil, fmt.Errorf("object %d: nil", ref.Num)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
	buf.Write(serializePrimitive(obj))
	buf.WriteString("\nendobj\n")
	return buf.Bytes(), nil
}

func (w *impl) Write(ctx context.Context, doc *semantic.Document, out io.Writer, cfg Config) (err error) {
	ctx, span := w.tracer.StartSpan(ctx, observability.SpanWrite)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()
	start := time.Now()

	if doc == nil {
		return fmt.Errorf("write pdf: nil document")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	objects, catalogRef, infoRef, err := newObjectBuilder(doc, cfg).Build()
	if err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n%%\xE2\xE3\xCF\xD3\n", pdfVersion(cfg))
	ordered := sortedRefs(objects)
	offsets := make(map[int]int64, len(ordered))
	for _, ref := range ordered {
		if err := ctx.Err(); err != nil {
			return err
		}
		offsets[ref.Num] = int64(buf.Len())
		serialized, err := w.SerializeObject(ref, objects[ref])
		if err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		buf.Write(serialized)
	}

	xrefOffset := buf.Len()
	maxObjNum := ordered[len(ordered)-1].Num
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxObjNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxObjNum; i++ {
		if off, ok := offsets[i]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}
	trailer := buildTrailer(maxObjNum+1, catalogRef, infoRef, fileID(doc, cfg))
	buf.WriteString("trailer\n")
	buf.Write(serializePrimitive(trailer))
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	n, err := out.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	span.SetTag(observability.MetricPageCount, len(doc.Pages))
	span.SetTag(observability.MetricWriteTime, time.Since(start).Seconds())
	w.logger.Info("pdf written",
		observability.Int("pages", len(doc.Pages)),
		observability.Int("objects", len(ordered)),
		observability.Int("bytes", n),
	)
	return nil
}
