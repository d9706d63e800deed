// Package sanitizer cleans user input before it is stored or rendered.
//
// Struct fields opt in through the `sanitize` tag, applied by SanitizeStruct
// right after binding:
//
//	type RoleInput struct {
//	    Name        string `form:"name" sanitize:"trim,lower"`
//	    Description string `form:"description" sanitize:"strip,trim"`
//	}
package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = bluemonday.StrictPolicy()
	textPolicy  = formattingPolicy()
)

// formattingPolicy allows the inline and list markup used in descriptions.
func formattingPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "b", "em", "i", "ul", "ol", "li", "code", "pre", "blockquote")
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	return p
}

// StripHTML drops all markup and unescapes entities.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// SanitizeHTML keeps basic formatting. Scripts, event handlers and
// javascript: URLs are removed.
func SanitizeHTML(s string) string {
	return textPolicy.Sanitize(s)
}

// SanitizeHTMLCustom sanitizes with policy; nil leaves s untouched.
func SanitizeHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
