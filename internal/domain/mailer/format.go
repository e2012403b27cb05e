package mailer

import (
	"regexp"
	"strings"
)

var (
	htmlEscaper      = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	paragraphPattern = regexp.MustCompile(`\n{2,}`)
)

// FormatHTML turns a plain or lightly marked up summary into minimal HTML for
// an email body. Special characters are escaped before any tag is produced.
func FormatHTML(text string) string {
	escaped := htmlEscaper.Replace(text)
	paragraphs := paragraphPattern.Split(escaped, -1)
	out := make([]string, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		out = append(out, "<p>"+formatParagraph(paragraph)+"</p>")
	}
	return strings.Join(out, "\n")
}

func formatParagraph(paragraph string) string {
	var (
		b     strings.Builder
		text  []string
		items []string
	)
	flushText := func() {
		if len(text) > 0 {
			b.WriteString(strings.Join(text, "<br/>"))
			text = text[:0]
		}
	}
	flushItems := func() {
		if len(items) > 0 {
			b.WriteString("<ul>")
			for _, item := range items {
				b.WriteString("<li>" + item + "</li>")
			}
			b.WriteString("</ul>")
			items = items[:0]
		}
	}
	for _, line := range strings.Split(paragraph, "\n") {
		if item, ok := bulletItem(line); ok {
			flushText()
			items = append(items, item)
			continue
		}
		flushItems()
		text = append(text, line)
	}
	flushText()
	flushItems()
	return b.String()
}

func bulletItem(line string) (string, bool) {
	if len(line) > 2 && (strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")) {
		return line[2:], true
	}
	return "", false
}
