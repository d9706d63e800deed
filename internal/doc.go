// Package internal implements the web framework behind the mwm facade.
//
// An App wraps a chi router. Global middleware, health endpoints, static
// assets and handler-declared routes (such as the JSON API) are registered
// on chi directly. Everything chi does not route is handed to the page
// dispatcher, which serves the compiled page table.
//
// # Pages
//
// A page route is a Module exported by a route file plus the chain of
// layouts of its ancestor directories, root-most first. Modules are resolved
// once, at New, into per-method handlers:
//
//   - a View returns a Component and is wrapped in layout chrome;
//   - a HandlerFunc writes the raw response itself.
//
// Matching uses routing.Table: exact static patterns first, then dynamic
// patterns by precedence. No match yields 404; a method the module does not
// handle yields 405 with an Allow header.
//
// # Layouts
//
// Layouts are built with Wrap (chrome only) or Guard (a check plus optional
// chrome). Guards run root-first before the content. A guard that returns an
// error, such as RedirectTo("/identity/sign-in"), stops the request and no
// inner layout or content runs. Chrome is applied innermost-first and the
// document shell goes around everything.
//
// Requests carrying "HX-Request: true" or "?partial=yes" are partial: they
// still pass every guard but receive the bare view output.
//
// # Request scope
//
// Before a page runs, the dispatcher resolves the auth session and attaches
// a reqctx.Context with the request, URL, params, query and session to the
// request context. Code reached from the handler reads it with reqctx.From.
//
// # Errors
//
// Returning a RedirectError writes the redirect (HX-Redirect for htmx).
// Other errors go to the configured ErrorHandler; without one the status
// of an HTTPError, or 500, is written as plain text.
package internal
