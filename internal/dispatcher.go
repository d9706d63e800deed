package internal

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/mwm/pkg/routing"
)

// errResponded stops a request whose response a guard already wrote.
var errResponded = errors.New("response already written")

// pageRoute is a route resolved into per-method handlers at build time.
type pageRoute struct {
	methods map[string]HandlerFunc
	any     HandlerFunc
	pattern string
	allow   string
}

// dispatcher serves file-routed pages from a routing table.
type dispatcher struct {
	table    *routing.Table[*pageRoute]
	document DocumentFunc
}

func newDispatcher(routes []PageRoute, document DocumentFunc) (*dispatcher, error) {
	d := &dispatcher{
		table:    routing.NewTable[*pageRoute](),
		document: document,
	}
	for _, r := range routes {
		pr, err := d.resolve(r)
		if err != nil {
			return nil, err
		}
		if err := d.table.Add(r.Pattern, pr); err != nil {
			return nil, fmt.Errorf("route %s (%s): %w", r.Pattern, r.File, err)
		}
	}
	return d, nil
}

// resolve turns a module into its method handlers. A module with only a
// Page answers every method.
func (d *dispatcher) resolve(r PageRoute) (*pageRoute, error) {
	pr := &pageRoute{pattern: r.Pattern, methods: make(map[string]HandlerFunc)}

	for method, a := range r.Module.methods() {
		pr.methods[method] = d.handler(a, r.Layouts)
	}

	if r.Module.Page != nil {
		page := d.handler(r.Module.Page, r.Layouts)
		if len(pr.methods) == 0 {
			pr.any = page
		} else if get, ok := pr.methods[http.MethodGet]; ok {
			pr.methods[http.MethodGet] = splitPartial(page, get)
		} else {
			pr.methods[http.MethodGet] = page
		}
	}

	if pr.any == nil && len(pr.methods) == 0 {
		return nil, fmt.Errorf("route %s (%s): module has no page or method handlers", r.Pattern, r.File)
	}

	if get, ok := pr.methods[http.MethodGet]; ok {
		if _, ok := pr.methods[http.MethodHead]; !ok {
			pr.methods[http.MethodHead] = get
		}
	}

	allow := make([]string, 0, len(pr.methods))
	for m := range pr.methods {
		allow = append(allow, m)
	}
	slices.Sort(allow)
	pr.allow = strings.Join(allow, ", ")
	return pr, nil
}

func (d *dispatcher) handler(a Action, layouts []Layout) HandlerFunc {
	switch h := a.(type) {
	case View:
		return d.viewHandler(h, layouts)
	case HandlerFunc:
		return func(c Context) error {
			if err := runGuards(c, layouts); err != nil {
				return err
			}
			return h(c)
		}
	}
	panic(fmt.Sprintf("unsupported page action %T", a))
}

// viewHandler runs the guards root-first, then the view, and wraps the
// result innermost-first in layout chrome and the document shell. Partial
// requests still pass the guards but skip all chrome.
func (d *dispatcher) viewHandler(view View, layouts []Layout) HandlerFunc {
	return func(c Context) error {
		if err := runGuards(c, layouts); err != nil {
			return err
		}

		content, err := view(c)
		if err != nil {
			return err
		}
		if c.Written() {
			return nil
		}
		if content == nil {
			return c.NoContent(http.StatusNoContent)
		}

		code := http.StatusOK
		if sc, ok := content.(statusComponent); ok {
			code, content = sc.code, sc.Component
		}

		if !c.IsPartial() {
			for i := len(layouts) - 1; i >= 0; i-- {
				if _, wrap := layouts[i].layout(); wrap != nil {
					content = wrap(c, content)
				}
			}
			if d.document != nil {
				content = d.document(c, content)
			}
		}
		return c.Render(code, content)
	}
}

// splitPartial serves full requests with the page and partial ones with
// the fragment handler.
func splitPartial(page, fragment HandlerFunc) HandlerFunc {
	return func(c Context) error {
		if c.IsPartial() {
			return fragment(c)
		}
		return page(c)
	}
}

func runGuards(c Context, layouts []Layout) error {
	for _, l := range layouts {
		check, _ := l.layout()
		if check == nil {
			continue
		}
		if err := check(c); err != nil {
			return err
		}
		if c.Written() {
			return errResponded
		}
	}
	return nil
}

// serve matches the request path and runs the route for the method.
func (d *dispatcher) serve(c *requestContext) error {
	r := c.Request()
	route, params, ok := d.table.Lookup(r.URL.EscapedPath())
	if !ok {
		return ErrNotFound("Page not found")
	}

	h := route.methods[r.Method]
	if h == nil {
		h = route.any
	}
	if h == nil {
		c.SetHeader("Allow", route.allow)
		return ErrMethodNotAllowed("Method not allowed")
	}

	c.attach(params)
	return h(c)
}
