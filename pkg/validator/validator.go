// Package validator validates structs through `validate` tags and turns
// failures into user-facing field messages.
//
// It wraps github.com/go-playground/validator/v10. Field keys come from the
// first of the form, json, query or path tags, so errors line up with the
// names clients send. Messages use the `label` tag (or the Go field name):
//
//	type SignIn struct {
//	    Email    string `form:"email" validate:"required,email"`
//	    Password string `form:"password" validate:"required,min=6"`
//	}
//
//	err := validator.ValidateStruct(&in)
//	if ve := validator.ExtractValidationErrors(err); ve != nil {
//	    ve.Get("password") // "Password must be at least 6 characters"
//	}
//
// The "slug" rule accepts lowercase identifiers such as role names:
// a leading letter followed by letters, digits, '-' or '_'.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

// SlugPattern is the format enforced by the "slug" rule.
var SlugPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

var (
	instance *playground.Validate
	initOnce sync.Once
)

func validate() *playground.Validate {
	initOnce.Do(func() {
		v := playground.New(playground.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldKey)
		_ = v.RegisterValidation("slug", func(fl playground.FieldLevel) bool {
			return SlugPattern.MatchString(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// ValidateStruct validates v. It returns ValidationErrors for rule failures
// and a plain error when v cannot be validated at all.
func ValidateStruct(v any) error {
	err := validate().Struct(v)
	if err == nil {
		return nil
	}

	var invalid *playground.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("validator: %w", err)
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	labels := labelsOf(v)
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		label := labels[fe.StructField()]
		if label == "" {
			label = humanize(fe.StructField())
		}
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(label, fe),
		})
	}
	return out
}

// Var validates a single value against rules, reporting failures under field.
func Var(field, label string, value any, rules string) error {
	err := validate().Var(value, rules)
	if err == nil {
		return nil
	}
	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validator: %w", err)
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{Field: field, Tag: fe.Tag(), Message: message(label, fe)})
	}
	return out
}

func message(label string, fe playground.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", label, fe.Param())
	case "slug":
		return label + " must start with a letter and contain only lowercase letters, numbers, hyphens and underscores"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	case "url", "http_url":
		return label + " must be a valid URL"
	case "uuid", "uuid4":
		return label + " must be a valid UUID"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", label, fe.Param())
	default:
		return label + " is invalid"
	}
}

// fieldKey names fields after the tag the client uses.
func fieldKey(f reflect.StructField) string {
	for _, tag := range []string{"form", "json", "query", "path"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			continue
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func labelsOf(v any) map[string]string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	labels := make(map[string]string)
	if t == nil || t.Kind() != reflect.Struct {
		return labels
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if l := f.Tag.Get("label"); l != "" {
			labels[f.Name] = l
		}
	}
	return labels
}

// humanize turns "DisplayName" into "Display name".
func humanize(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
