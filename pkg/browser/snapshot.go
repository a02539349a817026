package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// CleanedHTML is a page DOM reduced to the markup useful when diagnosing a
// failed locator: structure, text and targeting attributes.
type CleanedHTML struct {
	HTML      string
	Title     string
	Truncated bool
}

var (
	droppedElements = map[string]bool{
		"script": true, "style": true, "noscript": true, "template": true,
		"iframe": true, "embed": true, "object": true, "svg": true, "canvas": true,
	}

	blockElements = map[string]bool{
		"div": true, "p": true, "section": true, "article": true, "header": true,
		"footer": true, "nav": true, "main": true, "aside": true, "form": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"ul": true, "ol": true, "li": true, "table": true, "tr": true, "td": true,
		"th": true, "button": true, "mat-dialog-container": true, "mat-icon": true,
		"vg-controls": true,
	}

	voidElements = map[string]bool{
		"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
		"img": true, "input": true, "link": true, "meta": true, "param": true,
		"source": true, "track": true, "wbr": true,
	}

	keptAttributes = map[string]bool{
		"id": true, "class": true, "role": true, "name": true, "type": true,
		"alt": true, "title": true, "placeholder": true, "href": true, "value": true,
		"disabled": true, "hidden": true,
	}
)

// cleanHTML parses rawHTML and writes a trimmed rendition of at most maxLength bytes of content.
func cleanHTML(rawHTML string, maxLength int) (*CleanedHTML, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	w := &snapshotWriter{max: maxLength}
	w.node(doc, 0)

	return &CleanedHTML{
		HTML:      w.b.String(),
		Title:     findTitle(doc),
		Truncated: w.full,
	}, nil
}

type snapshotWriter struct {
	b    strings.Builder
	n    int
	max  int
	full bool
}

func (w *snapshotWriter) node(n *html.Node, depth int) {
	if w.full {
		return
	}

	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if droppedElements[tag] {
			return
		}
		w.element(n, tag, depth)
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c, depth)
	}
}

func (w *snapshotWriter) text(raw string) {
	text := strings.Join(strings.Fields(raw), " ")
	if text == "" {
		return
	}
	if w.n+len(text) > w.max {
		remaining := w.max - w.n
		w.full = true
		if remaining <= 0 {
			return
		}
		text = text[:remaining] + "..."
	}
	w.b.WriteString(html.EscapeString(text))
	w.n += len(text)
}

func (w *snapshotWriter) element(n *html.Node, tag string, depth int) {
	block := blockElements[tag]
	if block && depth > 0 {
		w.b.WriteString("\n")
		w.b.WriteString(strings.Repeat("  ", depth))
	}

	w.b.WriteString("<" + tag)
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if keptAttributes[key] || strings.HasPrefix(key, "aria-") || strings.HasPrefix(key, "data-") {
			fmt.Fprintf(&w.b, ` %s="%s"`, key, html.EscapeString(attr.Val))
		}
	}
	w.b.WriteString(">")
	w.n += len(tag) + 2

	if voidElements[tag] {
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c, depth+1)
	}

	if block && n.FirstChild != nil && n.FirstChild.Type == html.ElementNode {
		w.b.WriteString("\n")
		w.b.WriteString(strings.Repeat("  ", depth))
	}
	w.b.WriteString("</" + tag + ">")
	w.n += len(tag) + 3
	if w.n >= w.max {
		w.full = true
	}
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}
	return ""
}
