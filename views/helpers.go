package views

import (
	"html/template"
	"strconv"
	"time"

	"github.com/eringen/pubfront"
	"github.com/eringen/pubfront/logger"
	"github.com/eringen/pubfront/markdown"
)

var funcs = template.FuncMap{
	"date":         pubfront.FormatDate,
	"isoDate":      isoDate,
	"readingTime":  pubfront.ReadingTime,
	"articlePath":  pubfront.ArticlePath,
	"categoryPath": pubfront.CategoryPath,
	"tagPath":      pubfront.TagPath,
	"markdown":     renderMarkdown,
	"jsonld":       jsonLD,
	"pageLink":     PageLink,
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// renderMarkdown falls back to escaped source when conversion fails.
func renderMarkdown(source string) template.HTML {
	out, err := markdown.HTML(source)
	if err != nil {
		logger.Warn().Err(err).Msg("render markdown")
		return template.HTML(template.HTMLEscapeString(source))
	}
	return out
}

// jsonLD marks a pre-encoded schema.org block as safe script content.
// The block comes from json.Marshal, which escapes <, > and &.
func jsonLD(block string) template.JS {
	return template.JS(block)
}

// PageLink returns the listing URL delta pages away from the current one.
// Page 1 is the bare base path.
func PageLink(p pubfront.ListingPage, delta int) string {
	n := p.Page + delta
	if n <= 1 {
		return p.BasePath
	}
	return p.BasePath + "?page=" + strconv.Itoa(n)
}
