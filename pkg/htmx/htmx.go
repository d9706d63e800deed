// Package htmx reads htmx request headers and sets response headers.
package htmx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Request headers.
const (
	HeaderRequest    = "HX-Request"
	HeaderBoosted    = "HX-Boosted"
	HeaderTarget     = "HX-Target"
	HeaderCurrentURL = "HX-Current-URL"
)

// Response headers.
const (
	HeaderRedirect   = "HX-Redirect"
	HeaderRefresh    = "HX-Refresh"
	HeaderPushURL    = "HX-Push-Url"
	HeaderReplaceURL = "HX-Replace-Url"
	HeaderRetarget   = "HX-Retarget"
	HeaderReswap     = "HX-Reswap"
	HeaderTrigger    = "HX-Trigger"
)

// Swap styles for WithReswap.
const (
	SwapInnerHTML = "innerHTML"
	SwapOuterHTML = "outerHTML"
	SwapBeforeEnd = "beforeend"
	SwapNone      = "none"
)

func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderRequest) == "true"
}

// IsBoosted reports a request from an hx-boost link or form.
func IsBoosted(r *http.Request) bool {
	return r.Header.Get(HeaderBoosted) == "true"
}

// Target returns the id of the element being swapped.
func Target(r *http.Request) string {
	return r.Header.Get(HeaderTarget)
}

// RedirectWithStatus redirects regular requests with status. htmx follows
// HX-Redirect only on 2xx, so htmx requests get the header and 200.
func RedirectWithStatus(w http.ResponseWriter, r *http.Request, url string, status int) {
	if !IsHTMX(r) {
		http.Redirect(w, r, url, status)
		return
	}
	w.Header().Set(HeaderRedirect, url)
	w.WriteHeader(http.StatusOK)
}

// Component is anything that renders HTML, such as a templ component.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Config collects response headers and out-of-band swaps for one render.
type Config struct {
	OOBComponents []Component
	triggers      []string
	headers       map[string]string
}

type RenderOption func(*Config)

func NewConfig(opts ...RenderOption) *Config {
	c := &Config{headers: make(map[string]string)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ApplyHeaders sets the collected headers. Call it before WriteHeader.
func (c *Config) ApplyHeaders(w http.ResponseWriter) {
	if c == nil {
		return
	}
	h := w.Header()
	for k, v := range c.headers {
		h.Set(k, v)
	}
	switch len(c.triggers) {
	case 0:
	case 1:
		h.Set(HeaderTrigger, c.triggers[0])
	default:
		events := make(map[string]any, len(c.triggers))
		for _, t := range c.triggers {
			events[t] = nil
		}
		b, _ := json.Marshal(events)
		h.Set(HeaderTrigger, string(b))
	}
}

// WithTrigger fires client events after the response is received.
func WithTrigger(events ...string) RenderOption {
	return func(c *Config) {
		for _, e := range events {
			if e = strings.TrimSpace(e); e != "" {
				c.triggers = append(c.triggers, e)
			}
		}
	}
}

func WithRetarget(selector string) RenderOption {
	return func(c *Config) { c.headers[HeaderRetarget] = selector }
}

func WithReswap(style string) RenderOption {
	return func(c *Config) { c.headers[HeaderReswap] = style }
}

func WithPushURL(url string) RenderOption {
	return func(c *Config) { c.headers[HeaderPushURL] = url }
}

func WithReplaceURL(url string) RenderOption {
	return func(c *Config) { c.headers[HeaderReplaceURL] = url }
}

// WithRefresh makes the client reload the whole page.
func WithRefresh() RenderOption {
	return func(c *Config) { c.headers[HeaderRefresh] = "true" }
}

// WithOOB appends components rendered after the main one. Each should carry
// hx-swap-oob.
func WithOOB(components ...Component) RenderOption {
	return func(c *Config) { c.OOBComponents = append(c.OOBComponents, components...) }
}
