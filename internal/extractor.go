package internal

import "strings"

// ExtractorSource reads one candidate value from a request.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries sources in order and returns the first non-empty value.
//
//	returnURL := mwm.NewExtractor(mwm.FromForm("returnUrl"), mwm.FromQuery("returnUrl"))
//	to, ok := returnURL.Extract(c)
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor over sources.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value, or ("", false).
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func nonEmpty(v string) (string, bool) {
	return v, v != ""
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) { return nonEmpty(c.Header(name)) }
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) { return nonEmpty(c.Query(name)) }
}

// FromForm reads a form field.
func FromForm(name string) ExtractorSource {
	return func(c Context) (string, bool) { return nonEmpty(c.Form(name)) }
}

// FromParam reads a route parameter.
func FromParam(name string) ExtractorSource {
	return func(c Context) (string, bool) { return nonEmpty(c.Param(name)) }
}

// FromCookie reads a plain cookie.
func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, err := c.Cookie(name)
		if err != nil {
			return "", false
		}
		return nonEmpty(v)
	}
}

// FromCookieSigned reads a signed cookie.
func FromCookieSigned(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, err := c.CookieSigned(name)
		if err != nil {
			return "", false
		}
		return nonEmpty(v)
	}
}

// FromBearerToken reads the token of an "Authorization: Bearer" header.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		h := c.Header("Authorization")
		if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
			return "", false
		}
		return nonEmpty(strings.TrimSpace(h[7:]))
	}
}
