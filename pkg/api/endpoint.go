package api

import (
	"context"
	"errors"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mwm/pkg/binder"
	"github.com/dmitrymomot/mwm/pkg/sanitizer"
	"github.com/dmitrymomot/mwm/pkg/validator"
)

// Handler is a typed endpoint.
type Handler[I, O any] func(ctx context.Context, in I) (O, error)

type operation struct {
	handler     http.Handler
	input       reflect.Type
	output      reflect.Type
	method      string
	pattern     string
	summary     string
	description string
	operationID string
	tags        []string
	status      int
}

// EndpointOption describes an endpoint.
type EndpointOption func(*operation)

// Summary sets the one-line description.
func Summary(s string) EndpointOption {
	return func(o *operation) { o.summary = s }
}

// Description sets the long description.
func Description(s string) EndpointOption {
	return func(o *operation) { o.description = s }
}

// Tags groups the endpoint in the document.
func Tags(tags ...string) EndpointOption {
	return func(o *operation) { o.tags = append(o.tags, tags...) }
}

// OperationID sets a stable operation id.
func OperationID(id string) EndpointOption {
	return func(o *operation) { o.operationID = id }
}

// Status sets the success status. The default is 200.
func Status(code int) EndpointOption {
	return func(o *operation) {
		if code >= 200 && code < 300 {
			o.status = code
		}
	}
}

// Get registers a GET endpoint.
func Get[I, O any](a *API, pattern string, h Handler[I, O], opts ...EndpointOption) {
	Handle(a, http.MethodGet, pattern, h, opts...)
}

// Post registers a POST endpoint.
func Post[I, O any](a *API, pattern string, h Handler[I, O], opts ...EndpointOption) {
	Handle(a, http.MethodPost, pattern, h, opts...)
}

// Put registers a PUT endpoint.
func Put[I, O any](a *API, pattern string, h Handler[I, O], opts ...EndpointOption) {
	Handle(a, http.MethodPut, pattern, h, opts...)
}

// Patch registers a PATCH endpoint.
func Patch[I, O any](a *API, pattern string, h Handler[I, O], opts ...EndpointOption) {
	Handle(a, http.MethodPatch, pattern, h, opts...)
}

// Delete registers a DELETE endpoint.
func Delete[I, O any](a *API, pattern string, h Handler[I, O], opts ...EndpointOption) {
	Handle(a, http.MethodDelete, pattern, h, opts...)
}

// Handle registers an endpoint for method and a chi pattern.
func Handle[I, O any](a *API, method, pattern string, h Handler[I, O], opts ...EndpointOption) {
	op := &operation{
		method:  method,
		pattern: pattern,
		input:   reflect.TypeFor[I](),
		output:  reflect.TypeFor[O](),
		status:  http.StatusOK,
	}
	for _, opt := range opts {
		opt(op)
	}

	status := op.status
	op.handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := a.requestID(r)
		w.Header().Set(RequestIDHeader, id)
		ctx := WithRequestIDContext(r.Context(), id)
		r = r.WithContext(ctx)

		var in I
		if err := decode(r, &in); err != nil {
			a.writeError(w, r, err)
			return
		}

		out, err := h(ctx, in)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, status, out)
	})
	a.register(op)
}

// decode fills in from the body, the query and the path, then sanitizes
// and validates it.
func decode[I any](r *http.Request, in *I) error {
	if hasBody(r) {
		if err := binder.JSON()(r, in); err != nil {
			return ValidationError(nil, "Malformed JSON body")
		}
	}

	if reflect.TypeFor[I]().Kind() != reflect.Struct {
		return nil
	}

	if err := binder.Query()(r, in); err != nil {
		return bindError(err)
	}
	if err := binder.Path(pathParams(r), in); err != nil {
		return bindError(err)
	}
	if err := sanitizer.SanitizeStruct(in); err != nil {
		return err
	}
	if err := validator.ValidateStruct(in); err != nil {
		if ve := validator.ExtractValidationErrors(err); ve != nil {
			return ValidationError(ve.Map())
		}
		return err
	}
	return nil
}

func bindError(err error) error {
	var fe *binder.FieldError
	if errors.As(err, &fe) {
		return ValidationError(map[string][]string{fe.Field: {"Invalid value"}})
	}
	return err
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.Body != nil && r.Body != http.NoBody
	}
	return false
}

func pathParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return params
}
