package layout

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// RenderMarkdown maps a Markdown document onto the engine: headings become
// headers (levels deeper than 3 are set as level 3), paragraphs and list items
// become text, thematic breaks become rules, GFM tables become tables and
// images become figures.
func (e *Engine) RenderMarkdown(ctx context.Context, source string) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))
	return e.walkMarkdown(ctx, doc, src)
}

func (e *Engine) walkMarkdown(ctx context.Context, node ast.Node, src []byte) error {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch n := child.(type) {
		case *ast.Heading:
			err = e.WriteHeader(inlineText(n, src), clampLevel(n.Level))
		case *ast.Paragraph, *ast.TextBlock:
			err = e.markdownParagraph(ctx, n, src, "")
		case *ast.ThematicBreak:
			err = e.AddHorizontalLine()
		case *ast.List:
			err = e.markdownList(ctx, n, src)
		case *ast.Blockquote:
			err = e.walkMarkdown(ctx, n, src)
		case *ast.FencedCodeBlock:
			err = e.WriteText(blockLines(n, src))
		case *ast.CodeBlock:
			err = e.WriteText(blockLines(n, src))
		case *east.Table:
			err = e.AddTable(markdownTable(n, src))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) markdownList(ctx context.Context, list *ast.List, src []byte) error {
	n := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		bullet := "- "
		if list.IsOrdered() {
			bullet = strconv.Itoa(n) + ". "
			n++
		}
		for block := item.FirstChild(); block != nil; block = block.NextSibling() {
			var err error
			switch b := block.(type) {
			case *ast.List:
				err = e.markdownList(ctx, b, src)
			default:
				err = e.markdownParagraph(ctx, b, src, bullet)
				bullet = "  "
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// markdownParagraph writes the paragraph's text, then any images it holds.
func (e *Engine) markdownParagraph(ctx context.Context, n ast.Node, src []byte, prefix string) error {
	if s := inlineText(n, src); strings.TrimSpace(s) != "" {
		if err := e.WriteText(prefix + s); err != nil {
			return err
		}
	}
	var refs []string
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if img, ok := node.(*ast.Image); ok && entering {
			refs = append(refs, string(img.Destination))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	for _, ref := range refs {
		if err := e.AddFigure(ctx, ref, 0); err != nil {
			return err
		}
	}
	return nil
}

// inlineText flattens the inline children of n. Soft line breaks become
// spaces, hard line breaks newlines; image alt text is dropped.
func inlineText(n ast.Node, src []byte) string {
	var b bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(src))
				switch {
				case t.HardLineBreak():
					b.WriteByte('\n')
				case t.SoftLineBreak():
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(t.Value)
			case *ast.AutoLink:
				b.Write(t.Label(src))
			case *ast.Image, *ast.RawHTML:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

func blockLines(n ast.Node, src []byte) string {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimRight(b.String(), "\n")
}

func markdownTable(t *east.Table, src []byte) *stringTable {
	st := &stringTable{}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			if cell, ok := c.(*east.TableCell); ok {
				cells = append(cells, strings.TrimSpace(inlineText(cell, src)))
			}
		}
		if _, ok := row.(*east.TableHeader); ok {
			st.columns = cells
			continue
		}
		st.rows = append(st.rows, cells)
	}
	return st
}

// clampLevel maps heading levels 4 to 6 onto the deepest header style.
func clampLevel(level int) HeaderLevel {
	switch {
	case level < int(Header1):
		return Header1
	case level > int(Header3):
		return Header3
	}
	return HeaderLevel(level)
}

// stringTable is a Tabular over rows of strings. Short rows read as empty
// cells.
type stringTable struct {
	columns []string
	rows    [][]string
}

func (t *stringTable) Columns() []string { return t.columns }
func (t *stringTable) Rows() int         { return len(t.rows) }
func (t *stringTable) Cell(r, c int) string {
	if c < len(t.rows[r]) {
		return t.rows[r][c]
	}
	return ""
}
