// Package api serves typed JSON endpoints on chi and describes them as an
// OpenAPI 3.1 document.
//
// An endpoint is a plain function from a typed input to a typed output.
// Input structs are filled from the JSON body, the query string (`query`
// tags) and path params (`path` tags), in that order, so path values always
// win. Path and query fields should carry `json:"-"` to stay out of the
// body schema:
//
//	type GetPostInput struct {
//	    ID string `path:"id" json:"-"`
//	}
//
//	type CreatePostInput struct {
//	    Title   string `json:"title" validate:"required"`
//	    Content string `json:"content" validate:"required"`
//	}
//
//	a := api.New(api.WithInfo("mwm API", "1.0.0", ""))
//	api.Get(a, "/posts/{id}", getPost, api.Summary("Get a post"))
//	api.Post(a, "/posts", createPost)
//
// Inputs are sanitized (`sanitize` tags) and validated (`validate` tags)
// before the handler runs. A failure answers 400 with field detail:
//
//	{"error":"Input validation failed","fieldErrors":{"title":["Title is required"]},"formErrors":[]}
//
// Handlers receive a context carrying the request id; read it with
// RequestID. Returning an *Error picks the status and message; any other
// error is logged and answered with a generic 500. Unknown paths answer
// 404 {"error":"Not found"}.
package api
