// Package markdown renders article bodies to HTML.
//
// Rendering is CommonMark plus GitHub tables, strikethrough and autolinks.
// Raw HTML in the source is omitted and links with unsafe schemes are
// emptied. Absolute http(s) links open in a new tab.
package markdown

import (
	"bytes"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
		parser.WithASTTransformers(util.Prioritized(externalLinks{}, 100)),
	),
)

// Render writes the HTML representation of content to w.
func Render(w io.Writer, content string) error {
	return md.Convert([]byte(content), w)
}

// HTML renders content for use inside html/template.
func HTML(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Render(&buf, content); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// externalLinks marks absolute http(s) links to open in a new tab.
type externalLinks struct{}

func (externalLinks) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok && isExternal(string(link.Destination)) {
			link.SetAttributeString("target", []byte("_blank"))
			link.SetAttributeString("rel", []byte("noopener noreferrer"))
		}
		return ast.WalkContinue, nil
	})
}

func isExternal(dest string) bool {
	dest = strings.ToLower(strings.TrimSpace(dest))
	return strings.HasPrefix(dest, "http://") || strings.HasPrefix(dest, "https://")
}
