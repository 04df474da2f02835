package narration

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// truncatedRe matches the "[+1234 chars]" marker news APIs append to
// shortened content.
var truncatedRe = regexp.MustCompile(`\s*\[\+\d+ chars\]\s*$`)

// ArticleSegments returns the segments for reading one article: its title
// followed by its description, or its content when there is no description.
func ArticleSegments(title, description, content, lang string) []TextSegment {
	title = PlainText(title)
	body := PlainText(description)
	if body == "" {
		body = PlainText(truncatedRe.ReplaceAllString(content, ""))
	}

	var text string
	switch {
	case title == "" && body == "":
		return nil
	case body == "":
		text = title
	case title == "":
		text = body
	default:
		text = title + ". " + body
	}
	return []TextSegment{NewSegment(text, lang)}
}

// HeadlineSegments returns an intro segment followed by one segment per
// non-empty headline. It returns nil when there are no headlines.
func HeadlineSegments(headlines []string, lang string) []TextSegment {
	segs := make([]TextSegment, 0, len(headlines)+1)
	for _, h := range headlines {
		if h = PlainText(h); h != "" {
			segs = append(segs, NewSegment(h, lang))
		}
	}
	if len(segs) == 0 {
		return nil
	}
	return append([]TextSegment{NewSegment(HeadlinesIntro, lang)}, segs...)
}

// PlainText strips markdown and inline HTML from s, keeping the readable
// text on a single line.
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	reader := text.NewReader([]byte(s))
	doc := goldmark.New().Parser().Parse(reader)

	var buf strings.Builder
	walkPlain(doc, reader.Source(), &buf)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func walkPlain(node ast.Node, source []byte, buf *strings.Builder) {
	switch n := node.(type) {
	case *ast.HTMLBlock, *ast.RawHTML:
		return

	case *ast.CodeBlock, *ast.FencedCodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}
		buf.WriteString(" ")
		return

	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteString(" ")
		}
		return

	case *ast.String:
		buf.Write(n.Value)
		return

	case *ast.AutoLink:
		buf.Write(n.Label(source))
		return

	case *ast.Image:
		// alt text only
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walkPlain(c, source, buf)
		}
		return

	case *ast.Heading, *ast.Paragraph, *ast.ListItem:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walkPlain(c, source, buf)
		}
		buf.WriteString(" ")
		return
	}

	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		walkPlain(c, source, buf)
	}
}
