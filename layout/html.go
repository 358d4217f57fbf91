package layout

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderHTML maps an HTML document onto the engine: h1 to h6 become headers
// (h4 to h6 are set as level 3), p, li and pre become text, hr becomes a rule,
// table becomes a table and img becomes a figure. Script, style and head
// content is ignored.
func (e *Engine) RenderHTML(ctx context.Context, source string) error {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return err
	}
	return e.walkHTML(ctx, doc)
}

func (e *Engine) walkHTML(ctx context.Context, n *html.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Head, atom.Script, atom.Style, atom.Template:
			return nil
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			level := int(n.Data[1] - '0')
			return e.WriteHeader(extractText(n), clampLevel(level))
		case atom.P, atom.Li, atom.Pre, atom.Blockquote:
			return e.htmlBlock(ctx, n)
		case atom.Hr:
			return e.AddHorizontalLine()
		case atom.Table:
			t := htmlTable(n)
			if len(t.columns) == 0 {
				e.log.Debug("empty html table skipped")
				return nil
			}
			return e.AddTable(t)
		case atom.Img:
			return e.htmlImage(ctx, n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := e.walkHTML(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) htmlBlock(ctx context.Context, n *html.Node) error {
	s := extractText(n)
	if n.DataAtom == atom.Li {
		s = "- " + s
	}
	if n.DataAtom != atom.Pre {
		s = collapseSpace(s)
	}
	if strings.TrimSpace(strings.TrimPrefix(s, "- ")) != "" {
		if err := e.WriteText(s); err != nil {
			return err
		}
	}
	for _, img := range findAll(n, atom.Img) {
		if err := e.htmlImage(ctx, img); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) htmlImage(ctx context.Context, n *html.Node) error {
	src := attr(n, "src")
	if src == "" {
		return nil
	}
	return e.AddFigure(ctx, src, 0)
}

// htmlTable reads the first row as column labels and every later row as
// data. Nested tables are flattened into text.
func htmlTable(n *html.Node) *stringTable {
	st := &stringTable{}
	for i, tr := range findAll(n, atom.Tr) {
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
				cells = append(cells, collapseSpace(extractText(c)))
			}
		}
		if i == 0 {
			st.columns = cells
			continue
		}
		st.rows = append(st.rows, cells)
	}
	return st
}

// findAll returns the descendants of n with the given tag, without
// descending into matches.
func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var f func(*html.Node)
	f = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == a {
				out = append(out, c)
				continue
			}
			f(c)
		}
	}
	f(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.TrimSpace(sb.String())
}

// collapseSpace folds runs of whitespace within each line to one space.
func collapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.Join(lines, "\n")
}
