package views

import "github.com/eringen/pubfront"

// pageData is the root value every template executes against.
type pageData struct {
	Layout pubfront.Layout
	Page   any
}

type loginData struct {
	ShowError bool
	Message   string
}
