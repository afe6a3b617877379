// Package views holds the HTML pages of the site. Pages are html/template
// files embedded in the binary and exposed as templ components.
package views

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"github.com/eringen/pubfront"
)

//go:embed templates/*.html
var files embed.FS

var pages = map[string]*template.Template{
	"article":     parsePage("article"),
	"listing":     parsePage("listing"),
	"login":       parsePage("login"),
	"notfound":    parsePage("notfound"),
	"servererror": parsePage("servererror"),
}

// parsePage parses a page together with the shared layout and card
// templates and returns the layout as the entry point.
func parsePage(name string) *template.Template {
	set := template.Must(template.New(name).Funcs(funcs).ParseFS(files,
		"templates/layout.html",
		"templates/card.html",
		"templates/"+name+".html",
	))
	return set.Lookup("layout")
}

func page(name string, layout pubfront.Layout, data any) templ.Component {
	return templ.FromGoHTML(pages[name], pageData{Layout: layout, Page: data})
}

// Funcs returns the ViewFuncs the App renders with.
func Funcs() pubfront.ViewFuncs {
	return pubfront.ViewFuncs{
		Article:     Article,
		Listing:     Listing,
		Login:       Login,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

// Article renders a single article with its related articles.
func Article(p pubfront.ArticlePage, layout pubfront.Layout) templ.Component {
	return page("article", layout, p)
}

// Listing renders the home, category and tag pages.
func Listing(p pubfront.ListingPage, layout pubfront.Layout) templ.Component {
	return page("listing", layout, p)
}

func Login(showError bool, message string, layout pubfront.Layout) templ.Component {
	return page("login", layout, loginData{ShowError: showError, Message: message})
}

func NotFound(layout pubfront.Layout) templ.Component {
	return page("notfound", layout, nil)
}

func ServerError(layout pubfront.Layout) templ.Component {
	return page("servererror", layout, nil)
}
