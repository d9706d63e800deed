package sanitizer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// ErrNotStructPointer is returned when SanitizeStruct gets anything other
// than a non-nil pointer to a struct.
var ErrNotStructPointer = errors.New("sanitizer: target must be a non-nil pointer to a struct")

// Rules accepted by the `sanitize` tag, applied in the listed order.
const (
	RuleTrim       = "trim"       // trim surrounding whitespace
	RuleLower      = "lower"      // lowercase
	RuleUpper      = "upper"      // uppercase
	RuleHTML       = "html"       // keep safe formatting only
	RuleStrip      = "strip"      // remove all markup
	RuleSingleLine = "singleline" // collapse whitespace runs into single spaces
	RuleEmail      = "email"      // trim and lowercase
)

// SanitizeStruct applies `sanitize` tag rules to string fields of v,
// including string slices, string pointers and nested structs.
func SanitizeStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}
	return sanitizeStruct(rv.Elem())
}

func sanitizeStruct(sv reflect.Value) error {
	st := sv.Type()
	for i := range st.NumField() {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := sv.Field(i)
		tag := f.Tag.Get("sanitize")

		if tag == "" {
			if fv.Kind() == reflect.Struct {
				if err := sanitizeStruct(fv); err != nil {
					return err
				}
			}
			continue
		}
		if tag == "-" {
			continue
		}

		rules := strings.Split(tag, ",")
		for _, r := range rules {
			if !knownRule(r) {
				return fmt.Errorf("sanitizer: field %s: unknown rule %q", f.Name, r)
			}
		}

		switch {
		case fv.Kind() == reflect.String:
			fv.SetString(apply(fv.String(), rules))
		case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.String:
			if !fv.IsNil() {
				fv.Elem().SetString(apply(fv.Elem().String(), rules))
			}
		case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String:
			for j := range fv.Len() {
				fv.Index(j).SetString(apply(fv.Index(j).String(), rules))
			}
		}
	}
	return nil
}

func knownRule(r string) bool {
	switch r {
	case RuleTrim, RuleLower, RuleUpper, RuleHTML, RuleStrip, RuleSingleLine, RuleEmail:
		return true
	}
	return false
}

func apply(s string, rules []string) string {
	for _, r := range rules {
		switch r {
		case RuleTrim:
			s = strings.TrimSpace(s)
		case RuleLower:
			s = strings.ToLower(s)
		case RuleUpper:
			s = strings.ToUpper(s)
		case RuleHTML:
			s = SanitizeHTML(s)
		case RuleStrip:
			s = StripHTML(s)
		case RuleSingleLine:
			s = strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
		case RuleEmail:
			s = strings.ToLower(strings.TrimSpace(s))
		}
	}
	return s
}
