package api

import (
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
)

// OpenAPIVersion is the version of the emitted document.
const OpenAPIVersion = "3.1.0"

// Document is an OpenAPI 3.1 document.
type Document struct {
	Paths   map[string]PathItem `json:"paths"`
	OpenAPI string              `json:"openapi"`
	Info    Info                `json:"info"`
	Servers []Server            `json:"servers,omitempty"`
}

// Info is the document metadata.
type Info struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// Server is a base URL the paths are relative to.
type Server struct {
	URL string `json:"url"`
}

// PathItem maps lower-case methods to operations.
type PathItem map[string]*Operation

// Operation describes one endpoint.
type Operation struct {
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"`
	OperationID string              `json:"operationId,omitempty"`
	Summary     string              `json:"summary,omitempty"`
	Description string              `json:"description,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
}

// Parameter is a path or query parameter.
type Parameter struct {
	Schema   *jsonschema.Schema `json:"schema"`
	Name     string             `json:"name"`
	In       string             `json:"in"`
	Required bool               `json:"required"`
}

// RequestBody is a JSON request body.
type RequestBody struct {
	Content  map[string]MediaType `json:"content"`
	Required bool                 `json:"required"`
}

// MediaType wraps a schema.
type MediaType struct {
	Schema *jsonschema.Schema `json:"schema"`
}

// Response is one response of an operation.
type Response struct {
	Content     map[string]MediaType `json:"content,omitempty"`
	Description string               `json:"description"`
}

const mimeJSON = "application/json"

func (a *API) buildDocument() *Document {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := &jsonschema.Reflector{DoNotReference: true, Anonymous: true}
	schemaOf := func(t reflect.Type) *jsonschema.Schema {
		s := r.ReflectFromType(t)
		s.Version = ""
		return s
	}

	errSchema := schemaOf(reflect.TypeFor[errorBody]())
	validationSchema := schemaOf(reflect.TypeFor[validationBody]())

	doc := &Document{
		OpenAPI: OpenAPIVersion,
		Info:    a.info,
		Servers: a.servers,
		Paths:   make(map[string]PathItem),
	}

	for _, op := range a.ops {
		o := &Operation{
			OperationID: op.operationID,
			Summary:     op.summary,
			Description: op.description,
			Tags:        op.tags,
			Parameters:  parameters(op.input),
			Responses: map[string]Response{
				statusKey(op.status): {
					Description: http.StatusText(op.status),
					Content:     map[string]MediaType{mimeJSON: {Schema: schemaOf(op.output)}},
				},
				"400": {
					Description: MsgValidationFailed,
					Content:     map[string]MediaType{mimeJSON: {Schema: validationSchema}},
				},
				"500": {
					Description: MsgInternal,
					Content:     map[string]MediaType{mimeJSON: {Schema: errSchema}},
				},
			},
		}
		if op.operationID == "" {
			o.OperationID = operationID(op.method, op.pattern)
		}
		if hasBodyMethod(op.method) && hasJSONFields(op.input) {
			o.RequestBody = &RequestBody{
				Required: true,
				Content:  map[string]MediaType{mimeJSON: {Schema: schemaOf(op.input)}},
			}
		}

		item, ok := doc.Paths[op.pattern]
		if !ok {
			item = make(PathItem)
			doc.Paths[op.pattern] = item
		}
		item[strings.ToLower(op.method)] = o
	}
	return doc
}

func statusKey(code int) string {
	return strconv.Itoa(code)
}

// operationID turns "GET /posts/{id}" into "getPostsId".
func operationID(method, pattern string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.FieldsFunc(pattern, func(r rune) bool {
		return r == '/' || r == '{' || r == '}' || r == '-' || r == '_'
	}) {
		b.WriteString(strings.ToUpper(seg[:1]) + seg[1:])
	}
	return b.String()
}

func hasBodyMethod(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// parameters lists the `path` and `query` fields of a struct input.
func parameters(t reflect.Type) []Parameter {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var out []Parameter
	for f := range structFields(t) {
		for _, in := range []string{"path", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(in), ",")
			if name == "" || name == "-" {
				continue
			}
			out = append(out, Parameter{
				Name:     name,
				In:       in,
				Required: in == "path" || slices.Contains(strings.Split(f.Tag.Get("validate"), ","), "required"),
				Schema:   scalarSchema(f.Type),
			})
		}
	}
	return out
}

func hasJSONFields(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return true
	}
	for f := range structFields(t) {
		if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "-" {
			return true
		}
	}
	return false
}

// structFields yields exported fields, flattening embedded structs.
func structFields(t reflect.Type) func(yield func(reflect.StructField) bool) {
	return func(yield func(reflect.StructField) bool) {
		var walk func(reflect.Type) bool
		walk = func(t reflect.Type) bool {
			for i := range t.NumField() {
				f := t.Field(i)
				if f.Anonymous && f.Type.Kind() == reflect.Struct {
					if !walk(f.Type) {
						return false
					}
					continue
				}
				if !f.IsExported() {
					continue
				}
				if !yield(f) {
					return false
				}
			}
			return true
		}
		walk(t)
	}
}

func scalarSchema(t reflect.Type) *jsonschema.Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return &jsonschema.Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &jsonschema.Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &jsonschema.Schema{Type: "number"}
	case reflect.Slice:
		return &jsonschema.Schema{Type: "array", Items: scalarSchema(t.Elem())}
	default:
		return &jsonschema.Schema{Type: "string"}
	}
}
