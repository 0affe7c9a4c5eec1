package parser

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var htmlImageSrc = regexp.MustCompile(`(?i)(<img\b[^>]*?\bsrc\s*=\s*)(["'])([^"']*)(["'])`)

// imageBaseTransformer prefixes relative markdown image destinations with base
type imageBaseTransformer struct {
	base string
}

func (t *imageBaseTransformer) Transform(doc *ast.Document, _ text.Reader, _ gmparser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok && isRelative(string(img.Destination)) {
			img.Destination = []byte(t.base + string(img.Destination))
		}
		return ast.WalkContinue, nil
	})
}

// rebaseHTMLImages prefixes relative src attributes of raw HTML <img> tags
// with base. Markdown images are already absolute by the time this runs.
func rebaseHTMLImages(html, base string) string {
	return htmlImageSrc.ReplaceAllStringFunc(html, func(tag string) string {
		m := htmlImageSrc.FindStringSubmatch(tag)
		if !isRelative(m[3]) {
			return tag
		}
		return m[1] + m[2] + base + m[3] + m[4]
	})
}

func isRelative(src string) bool {
	return src != "" &&
		!strings.HasPrefix(src, "http") &&
		!strings.HasPrefix(src, "/") &&
		!strings.HasPrefix(src, "data:")
}
