package textdoc

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var htmlPrefix = regexp.MustCompile(`(?i)^\s*(<!--.*?-->\s*)*<(!doctype\s+html|html|head|body)\b`)

// looksLikeHTML sniffs for an HTML document prefix.
func looksLikeHTML(text string) bool {
	return htmlPrefix.MatchString(text)
}

// htmlPages reduces an HTML document to pages of text lines.
func htmlPages(text string) ([][]string, error) {
	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	w := &htmlWriter{pages: [][]string{nil}}
	w.walk(root)
	return w.finish(), nil
}

type htmlWriter struct {
	pages [][]string
	line  strings.Builder
	pre   int
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Main: true, atom.Nav: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Table: true, atom.Tr: true,
	atom.Blockquote: true, atom.Pre: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Figure: true, atom.Figcaption: true,
}

var skippedElements = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Template: true, atom.Noscript: true,
}

func (w *htmlWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		if skippedElements[n.DataAtom] {
			return
		}
		switch n.DataAtom {
		case atom.Hr:
			w.pageBreak()
			return
		case atom.Br:
			w.breakLine()
			return
		}
	}

	isPage := n.Type == html.ElementNode && hasClass(n, "page")
	isBlock := n.Type == html.ElementNode && blockElements[n.DataAtom]

	if isPage {
		w.pageBreak()
	} else if isBlock {
		w.endLine()
	}
	if n.DataAtom == atom.Li {
		w.line.WriteString("• ")
	}
	if n.DataAtom == atom.Pre {
		w.pre++
	}
	if n.DataAtom == atom.Td || n.DataAtom == atom.Th {
		w.space()
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if n.DataAtom == atom.Pre {
		w.pre--
	}
	if isPage {
		w.pageBreak()
	} else if isBlock {
		w.endLine()
	}
}

func (w *htmlWriter) text(s string) {
	if w.pre > 0 {
		parts := strings.Split(s, "\n")
		for i, part := range parts {
			if i > 0 {
				w.breakLine()
			}
			w.line.WriteString(part)
		}
		return
	}

	if s != "" && isHTMLSpace(s[0]) {
		w.space()
	}
	w.line.WriteString(strings.Join(strings.Fields(s), " "))
	if s != "" && isHTMLSpace(s[len(s)-1]) {
		w.space()
	}
}

func (w *htmlWriter) space() {
	if w.line.Len() == 0 {
		return
	}
	if cur := w.line.String(); !strings.HasSuffix(cur, " ") {
		w.line.WriteByte(' ')
	}
}

// endLine finishes the current line if it has any text.
func (w *htmlWriter) endLine() {
	if strings.TrimSpace(w.line.String()) == "" {
		w.line.Reset()
		return
	}
	w.breakLine()
}

// breakLine finishes the current line even when it is empty. Runs of
// blank lines collapse into one and pages never start with one.
func (w *htmlWriter) breakLine() {
	line := strings.TrimRight(w.line.String(), " ")
	w.line.Reset()

	page := &w.pages[len(w.pages)-1]
	if line == "" && (len(*page) == 0 || (*page)[len(*page)-1] == "") {
		return
	}
	*page = append(*page, line)
}

func (w *htmlWriter) pageBreak() {
	w.endLine()
	if len(w.pages[len(w.pages)-1]) > 0 {
		w.pages = append(w.pages, nil)
	}
}

// finish trims blank edges and drops empty pages, keeping at least one.
func (w *htmlWriter) finish() [][]string {
	w.endLine()

	pages := make([][]string, 0, len(w.pages))
	for _, p := range w.pages {
		for len(p) > 0 && p[len(p)-1] == "" {
			p = p[:len(p)-1]
		}
		if len(p) > 0 {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		pages = append(pages, []string{""})
	}
	return pages
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func isHTMLSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
