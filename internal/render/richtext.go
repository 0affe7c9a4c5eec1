package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/jomei/notionapi"
)

// RichText renders a list of rich-text runs as inline HTML
func RichText(runs []notionapi.RichText) string {
	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(richTextRun(run))
	}
	return sb.String()
}

func richTextRun(run notionapi.RichText) string {
	text := html.EscapeString(runText(run))

	if a := run.Annotations; a != nil {
		if a.Bold {
			text = "<strong>" + text + "</strong>"
		}
		if a.Italic {
			text = "<em>" + text + "</em>"
		}
		if a.Code {
			text = "<code>" + text + "</code>"
		}
	}

	if run.Href != "" {
		text = fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`, html.EscapeString(run.Href), text)
	}

	return text
}

// PlainText concatenates the unformatted text of the runs
func PlainText(runs []notionapi.RichText) string {
	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(runText(run))
	}
	return sb.String()
}

func runText(run notionapi.RichText) string {
	if run.PlainText != "" {
		return run.PlainText
	}
	if run.Text != nil {
		return run.Text.Content
	}
	return ""
}
