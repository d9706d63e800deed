package views

import (
	"github.com/dmitrymomot/mwm/app/services"
	"github.com/dmitrymomot/mwm/pkg/validator"
)

// MsgFixErrors is the form-level notice shown above invalid forms.
const MsgFixErrors = "Please fix the errors below"

// Field describes one form control.
type Field struct {
	Label    string
	Name     string
	Type     string // defaults to "text"
	Value    string
	Error    string
	Hint     string
	Required bool
	Disabled bool
}

// FieldFor fills the error of a field from errs.
func FieldFor(errs validator.ValidationErrors, f Field) Field {
	if f.Error == "" {
		f.Error = errs.Get(f.Name)
	}
	return f
}

func (f Field) inputType() string {
	if f.Type == "" {
		return "text"
	}
	return f.Type
}

// Passwords and files are never echoed back.
func (f Field) keepsValue() bool {
	t := f.inputType()
	return t != "password" && t != "file"
}

func (f Field) errorID() string { return f.Name + "-error" }

// FormMessage picks the form-level message for errs: a form error when one
// exists, the generic notice for field errors, or nothing.
func FormMessage(errs validator.ValidationErrors) string {
	if msg := errs.Get(services.FormErrorKey); msg != "" {
		return msg
	}
	if len(errs) > 0 {
		return MsgFixErrors
	}
	return ""
}
