// Package binder decodes request data into tagged structs.
//
// Fields are matched by tag: `form` for url-encoded and multipart bodies,
// `query` for the URL query and `path` for route params. JSON bodies use the
// standard `json` tags.
//
//	type Filter struct {
//	    Limit int    `query:"limit"`
//	    Sort  string `query:"sort"`
//	}
//
//	var f Filter
//	err := binder.Query()(r, &f)
//
// Supported field kinds are strings, booleans, signed and unsigned integers,
// floats, slices of those and pointers to those. Empty values leave the
// field untouched so defaults survive.
package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Default body limits.
const (
	MaxJSONBody      = 1 << 20  // 1MB
	MaxMultipartBody = 10 << 20 // 10MB
)

var (
	// ErrNotPointer is returned when the target is not a pointer to a struct.
	ErrNotPointer = errors.New("binder: target must be a non-nil pointer to a struct")

	// ErrUnsupportedType is returned for fields of unsupported kinds.
	ErrUnsupportedType = errors.New("binder: unsupported field type")

	// ErrInvalidValue is returned when a value cannot be parsed into its field.
	ErrInvalidValue = errors.New("binder: invalid value")

	// ErrInvalidJSON is returned for malformed JSON bodies.
	ErrInvalidJSON = errors.New("binder: invalid JSON body")
)

// FieldError names the tagged field a value could not be bound to.
type FieldError struct {
	Err   error
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Func binds request data into v.
type Func func(r *http.Request, v any) error

// Form binds url-encoded or multipart form values using `form` tags.
func Form() Func {
	return func(r *http.Request, v any) error {
		ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if ct == "multipart/form-data" {
			if err := r.ParseMultipartForm(MaxMultipartBody); err != nil {
				return fmt.Errorf("parse multipart form: %w", err)
			}
		} else if err := r.ParseForm(); err != nil {
			return fmt.Errorf("parse form: %w", err)
		}
		return Values(r.PostForm, "form", v)
	}
}

// Query binds URL query values using `query` tags.
func Query() Func {
	return func(r *http.Request, v any) error {
		return Values(r.URL.Query(), "query", v)
	}
}

// JSON decodes a JSON body. An empty body leaves v untouched.
func JSON() Func {
	return func(r *http.Request, v any) error {
		if r.Body == nil || r.Body == http.NoBody {
			return nil
		}
		dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBody))
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		return nil
	}
}

// Path binds route params using `path` tags.
func Path(params map[string]string, v any) error {
	values := make(url.Values, len(params))
	for k, p := range params {
		values.Set(k, p)
	}
	return Values(values, "path", v)
}

// Values binds values into the struct fields carrying tag.
func Values(values url.Values, tag string, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotPointer
	}
	return bindStruct(rv.Elem(), values, tag)
}

func bindStruct(sv reflect.Value, values url.Values, tag string) error {
	st := sv.Type()
	for i := range st.NumField() {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := sv.Field(i)

		if f.Anonymous && fv.Kind() == reflect.Struct {
			if err := bindStruct(fv, values, tag); err != nil {
				return err
			}
			continue
		}

		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "" || name == "-" {
			continue
		}
		raw, ok := values[name]
		if !ok || len(raw) == 0 {
			continue
		}
		if err := setField(fv, raw); err != nil {
			return &FieldError{Field: name, Err: err}
		}
	}
	return nil
}

func setField(fv reflect.Value, raw []string) error {
	if fv.Kind() == reflect.Slice {
		out := reflect.MakeSlice(fv.Type(), 0, len(raw))
		for _, s := range raw {
			ev := reflect.New(fv.Type().Elem()).Elem()
			if err := setScalar(ev, s); err != nil {
				return err
			}
			out = reflect.Append(out, ev)
		}
		fv.Set(out)
		return nil
	}

	s := raw[0]
	if s == "" && fv.Kind() != reflect.String {
		return nil
	}
	return setScalar(fv, s)
}

func setScalar(fv reflect.Value, s string) error {
	if fv.Kind() == reflect.Pointer {
		ptr := reflect.New(fv.Type().Elem())
		if err := setScalar(ptr.Elem(), s); err != nil {
			return err
		}
		fv.Set(ptr)
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(s)
	case reflect.Bool:
		b, err := parseBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidValue, s)
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidValue, s)
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidValue, s)
		}
		fv.SetFloat(n)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, fv.Type())
	}
	return nil
}

// parseBool also accepts HTML checkbox values.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes", "1", "true":
		return true, nil
	case "off", "no", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidValue, s)
}
