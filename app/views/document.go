// Package views holds the HTML components of the application.
//
// Markup lives in .templ files; the *_templ.go files next to them are
// generated and committed. Plain Go files hold the helpers the templates
// call and the layout adapters used by the route tree.
package views

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"github.com/a-h/templ"

	"github.com/dmitrymomot/mwm"
)

// Script and stylesheet locations used by the document shell.
const (
	StylesheetPath = "/static/app.css"
	FaviconPath    = "/static/favicon.svg"
	HTMXScriptURL  = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"
	siteName       = "mwm"
)

type titleKey struct{}

// SetTitle sets the document title for the current request.
func SetTitle(c mwm.Context, title string) {
	c.Set(titleKey{}, title)
}

func pageTitle(c mwm.Context) string {
	if t := mwm.ContextValue[string](c, titleKey{}); t != "" {
		return t + " · " + siteName
	}
	return siteName
}

// Document is the HTML shell around every full page render.
func Document(c mwm.Context, body mwm.Component) mwm.Component {
	return documentShell(pageTitle(c), body)
}

// avatarSrc drops unsafe URL schemes from user supplied image sources.
func avatarSrc(u string) string {
	return string(templ.URL(u))
}
