package internal

import "net/http"

// View produces the content of a page. Returning a RedirectError ends the
// request with a redirect; any other error goes to the error handler.
type View func(c Context) (Component, error)

// Action is a per-method page entry: either a View, whose component is
// wrapped in layouts, or a HandlerFunc that writes the raw response itself.
type Action interface {
	action()
}

func (View) action()        {}
func (HandlerFunc) action() {}

// Module is the value a route file exports.
//
// Page is the default view. When no method entries are set it answers every
// method; otherwise it answers GET and HEAD. When both Page and GET are set,
// full GET requests get the Page and partial GET requests get GET.
// Methods absent from the module respond with 405.
//
//	var Detail = mwm.Module{
//	    Page: showRole,
//	    POST: mwm.View(updateRole),
//	}
type Module struct {
	Page   View
	GET    Action
	POST   Action
	PUT    Action
	DELETE Action
}

func (m Module) methods() map[string]Action {
	out := make(map[string]Action, 4)
	for method, a := range map[string]Action{
		http.MethodGet:    m.GET,
		http.MethodPost:   m.POST,
		http.MethodPut:    m.PUT,
		http.MethodDelete: m.DELETE,
	} {
		if isSet(a) {
			out[method] = a
		}
	}
	return out
}

func isSet(a Action) bool {
	switch v := a.(type) {
	case nil:
		return false
	case View:
		return v != nil
	case HandlerFunc:
		return v != nil
	}
	return true
}

// WrapFunc places page content inside layout chrome.
type WrapFunc func(c Context, content Component) Component

// GuardFunc decides whether a request may reach the layouts and content
// below it. A non-nil error stops the request; a RedirectError is written
// as-is.
type GuardFunc func(c Context) error

// Layout is a directory layout: a plain wrap or a guard with optional chrome.
// Values are created with Wrap or Guard.
type Layout interface {
	layout() (GuardFunc, WrapFunc)
}

type wrapLayout struct{ wrap WrapFunc }

func (l wrapLayout) layout() (GuardFunc, WrapFunc) { return nil, l.wrap }

type guardLayout struct {
	check GuardFunc
	wrap  WrapFunc
}

func (l guardLayout) layout() (GuardFunc, WrapFunc) { return l.check, l.wrap }

// Wrap returns a layout that only adds chrome.
func Wrap(fn WrapFunc) Layout {
	return wrapLayout{wrap: fn}
}

// Guard returns a layout that runs check before anything nested below it.
// wrap may be nil when the guard adds no chrome.
func Guard(check GuardFunc, wrap WrapFunc) Layout {
	return guardLayout{check: check, wrap: wrap}
}

// DocumentFunc renders the outermost HTML document around a full page.
type DocumentFunc func(c Context, body Component) Component

// PageRoute is a compiled route table entry.
type PageRoute struct {
	Pattern string
	File    string
	Module  Module
	Layouts []Layout
}

// Asset is a static file served at a fixed path.
type Asset struct {
	Path        string
	File        string
	ContentType string
}

type statusComponent struct {
	Component
	code int
}

// WithStatus makes a view respond with code instead of 200.
func WithStatus(code int, c Component) Component {
	return statusComponent{Component: c, code: code}
}
