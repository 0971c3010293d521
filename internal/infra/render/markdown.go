package render

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/term"
)

// MarkdownPrefix marks a TargetProcess description written in markdown.
const MarkdownPrefix = "<!--markdown-->"

const maxReadableWidth = 100

// Markdown renders markdown for the terminal. Returns the input unchanged
// when rendering fails or stdout is not a terminal.
func Markdown(md string) string {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return md
	}
	width := 80
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = w
	}
	return MarkdownWidth(md, width)
}

// MarkdownWidth renders markdown wrapped at width, capped at 100 columns.
func MarkdownWidth(md string, width int) string {
	if width > maxReadableWidth {
		width = maxReadableWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// Description converts a ticket description to markdown. Descriptions
// starting with the markdown marker are returned as-is without the marker;
// anything else is treated as HTML.
func Description(desc string) string {
	trimmed := strings.TrimSpace(desc)
	if rest, ok := strings.CutPrefix(trimmed, MarkdownPrefix); ok {
		return strings.TrimSpace(rest)
	}
	if !strings.Contains(trimmed, "<") {
		return trimmed
	}
	return HTMLToMarkdown(trimmed)
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// HTMLToMarkdown converts the subset of HTML TargetProcess emits.
func HTMLToMarkdown(src string) string {
	nodes, err := html.ParseFragment(strings.NewReader(src), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return src
	}
	var c converter
	for _, n := range nodes {
		c.node(n)
	}
	out := blankLines.ReplaceAllString(c.b.String(), "\n\n")
	return strings.TrimSpace(out)
}

type converter struct {
	b     strings.Builder
	lists []listState
	inPre bool
}

type listState struct {
	ordered bool
	n       int
}

func (c *converter) children(n *html.Node) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.node(ch)
	}
}

func (c *converter) wrap(n *html.Node, mark string) {
	c.b.WriteString(mark)
	c.children(n)
	c.b.WriteString(mark)
}

func (c *converter) block() {
	c.b.WriteString("\n\n")
}

func (c *converter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		text := n.Data
		if !c.inPre {
			text = collapseSpace(text)
		}
		c.b.WriteString(text)
		return
	case html.ElementNode:
	default:
		c.children(n)
		return
	}

	switch n.DataAtom {
	case atom.P, atom.Div:
		c.block()
		c.children(n)
		c.block()
	case atom.Br:
		c.b.WriteString("\n")
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		c.block()
		c.b.WriteString(strings.Repeat("#", level) + " ")
		c.children(n)
		c.block()
	case atom.Strong, atom.B:
		c.wrap(n, "**")
	case atom.Em, atom.I:
		c.wrap(n, "_")
	case atom.Code:
		if c.inPre {
			c.children(n)
			return
		}
		c.wrap(n, "`")
	case atom.Pre:
		c.block()
		c.b.WriteString("```\n")
		c.inPre = true
		c.children(n)
		c.inPre = false
		c.b.WriteString("\n```")
		c.block()
	case atom.A:
		href := attr(n, "href")
		if href == "" {
			c.children(n)
			return
		}
		c.b.WriteString("[")
		c.children(n)
		fmt.Fprintf(&c.b, "](%s)", href)
	case atom.Img:
		fmt.Fprintf(&c.b, "![%s](%s)", attr(n, "alt"), attr(n, "src"))
	case atom.Ul, atom.Ol:
		c.lists = append(c.lists, listState{ordered: n.DataAtom == atom.Ol})
		c.b.WriteString("\n")
		c.children(n)
		c.lists = c.lists[:len(c.lists)-1]
		c.b.WriteString("\n")
	case atom.Li:
		depth := len(c.lists)
		marker := "- "
		if depth > 0 {
			l := &c.lists[depth-1]
			l.n++
			if l.ordered {
				marker = fmt.Sprintf("%d. ", l.n)
			}
			depth--
		}
		c.b.WriteString("\n" + strings.Repeat("  ", depth) + marker)
		c.children(n)
	case atom.Hr:
		c.block()
		c.b.WriteString("---")
		c.block()
	case atom.Script, atom.Style:
	default:
		c.children(n)
	}
}

// collapseSpace folds whitespace runs into one space, keeping a single
// leading or trailing space so inline elements stay separated.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	out := strings.Join(fields, " ")
	if strings.TrimLeft(s, " \t\r\n") != s {
		out = " " + out
	}
	if strings.TrimRight(s, " \t\r\n") != s {
		out += " "
	}
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
