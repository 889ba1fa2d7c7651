package segment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/svb-events/internal/normalize"
)

// Line is one visible line of a page. Break lines mark a horizontal rule or other
// explicit section break and carry no text.
type Line struct {
	Text  string `json:"text,omitempty"`
	Break bool   `json:"break,omitempty"`
}

// Page is listing content ready for segmentation.
type Page struct {
	doc    *goquery.Document // nil for plain-text pages
	lines  []Line
	blocks []string
}

// NewHTMLPage parses HTML and extracts its visible lines. Block elements and <br>
// end a line, list items become bullet lines and <hr> becomes a break.
func NewHTMLPage(src string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	p := &Page{doc: doc}
	for _, n := range doc.Selection.Nodes {
		p.lines = append(p.lines, visibleLines(n)...)
	}
	return p, nil
}

// NewTextPage splits plain text into cleaned lines. Lines made only of dashes,
// asterisks or underscores are breaks, and blank lines separate heuristic blocks.
func NewTextPage(text string) *Page {
	p := &Page{}
	var block []string
	endBlock := func() {
		if len(block) > 0 {
			p.blocks = append(p.blocks, strings.Join(block, " "))
			block = nil
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(raw) == "" {
			endBlock()
			continue
		}
		line := cleanLine(raw)
		if ruleLine.MatchString(line) {
			endBlock()
			p.lines = append(p.lines, Line{Break: true})
			continue
		}
		if line == "" {
			continue
		}
		p.lines = append(p.lines, Line{Text: line})
		block = append(block, line)
	}
	endBlock()
	return p
}

// Lines returns the page's visible lines.
func (p *Page) Lines() []Line {
	return p.lines
}

// IsHTML reports whether the page came from markup.
func (p *Page) IsHTML() bool {
	return p.doc != nil
}

// Text returns the visible lines joined by newlines, breaks omitted.
func (p *Page) Text() string {
	var b strings.Builder
	for _, l := range p.lines {
		if l.Break {
			continue
		}
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

var (
	ruleLine = regexp.MustCompile(`^(?:-{3,}|\*{3,}|_{3,})$`)

	// "[Soho](https://...)" as left behind by markdown-ish page text.
	mdLink = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
)

func cleanLine(s string) string {
	return normalize.Clean(mdLink.ReplaceAllString(s, "$1"))
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"head": true, "svg": true, "iframe": true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true, "dl": true, "dt": true, "dd": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true, "nav": true, "aside": true,
	"main": true, "table": true, "tr": true, "td": true, "th": true, "blockquote": true,
	"pre": true, "figure": true, "figcaption": true, "address": true, "body": true,
}

// visibleLines flattens a node tree into cleaned text lines.
func visibleLines(root *html.Node) []Line {
	var lines []Line
	var buf strings.Builder
	bullet := false

	flush := func() {
		text := cleanLine(buf.String())
		buf.Reset()
		if text != "" {
			if bullet && !normalize.HasBullet(text) {
				text = "* " + text
			}
			lines = append(lines, Line{Text: text})
		}
		bullet = false
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			tag := strings.ToLower(n.Data)
			switch {
			case skipTags[tag]:
				return
			case tag == "br":
				flush()
				return
			case tag == "hr":
				flush()
				lines = append(lines, Line{Break: true})
				return
			}
			block := blockTags[tag]
			if block {
				flush()
				if tag == "li" {
					bullet = true
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if block {
				flush()
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(root)
	flush()
	return lines
}

// nodeText returns a selection's visible text as a single cleaned line.
func nodeText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		for _, l := range visibleLines(n) {
			if !l.Break {
				parts = append(parts, normalize.StripBullet(l.Text))
			}
		}
	}
	return normalize.Clean(strings.Join(parts, " "))
}
