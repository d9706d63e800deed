// Package routing holds the path-pattern rules shared by the route compiler
// and the runtime page dispatcher.
//
// A route file path is translated into a URL pattern:
//
//	index.go                  -> /
//	users/index.go            -> /users
//	admin/roles/index.$id.go  -> /admin/roles/:id
//	users/index.$id.edit.go   -> /users/:id/edit
//	blog/$slug.go             -> /blog/:slug
//
// The go command refuses file names starting with "$", so Go route trees
// use the "index.$name" form. Files and directories whose names start with
// "_", "-" or "." are not routable.
//
// At runtime a Table resolves request paths. Static patterns are looked up
// by exact string match first. Dynamic patterns are tried only when no exact
// match exists, in precedence order:
//
//  1. longer static prefix (leading literal segments) first;
//  2. then more literal segments overall;
//  3. then lexical order of the pattern.
//
// Literal segments compare case-sensitively against the URL-decoded request
// segment; a ":name" segment matches any segment and binds its decoded value.
//
// Usage:
//
//	t := routing.NewTable[http.Handler]()
//	_ = t.Add("/users/:id", usersShow)
//	h, params, ok := t.Lookup("/users/42")
package routing
