package routing

import (
	"slices"
	"strings"
	"sync"
)

// Params maps parameter names to their decoded values.
type Params map[string]string

// Get returns the value for name or an empty string.
func (p Params) Get(name string) string {
	if p == nil {
		return ""
	}
	return p[name]
}

type dynamicEntry[T any] struct {
	value   T
	pattern Pattern
}

// Table maps URL patterns to values.
// It is safe for concurrent lookups once populated; Add may be called
// concurrently with Lookup.
type Table[T any] struct {
	exact   map[string]T
	dynamic []dynamicEntry[T]
	mu      sync.RWMutex
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{exact: make(map[string]T)}
}

// Add registers a value under a pattern.
// Returns ErrDuplicatePattern if the pattern is already present.
func (t *Table[T]) Add(raw string, value T) error {
	p, err := Compile(raw)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !p.Dynamic() {
		if _, ok := t.exact[p.raw]; ok {
			return ErrDuplicatePattern
		}
		t.exact[p.raw] = value
		return nil
	}

	for _, e := range t.dynamic {
		if e.pattern.raw == p.raw {
			return ErrDuplicatePattern
		}
	}
	t.dynamic = append(t.dynamic, dynamicEntry[T]{pattern: p, value: value})
	slices.SortStableFunc(t.dynamic, func(a, b dynamicEntry[T]) int {
		switch {
		case morePrecise(a.pattern, b.pattern):
			return -1
		case morePrecise(b.pattern, a.pattern):
			return 1
		default:
			return 0
		}
	})
	return nil
}

// Lookup resolves an escaped request path.
// Exact static patterns win over dynamic ones; dynamic patterns are tried in
// precedence order and the first match is returned.
func (t *Table[T]) Lookup(escapedPath string) (T, Params, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	norm := Normalize(escapedPath)
	if key, ok := decodePath(norm); ok {
		if v, ok := t.exact[key]; ok {
			return v, Params{}, true
		}
	}

	for _, e := range t.dynamic {
		if params, ok := e.pattern.Match(norm); ok {
			return e.value, params, true
		}
	}

	var zero T
	return zero, nil, false
}

// Patterns returns every registered pattern: static ones sorted
// lexically, followed by dynamic ones in match order.
func (t *Table[T]) Patterns() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.exact)+len(t.dynamic))
	for k := range t.exact {
		out = append(out, k)
	}
	slices.Sort(out)
	for _, e := range t.dynamic {
		out = append(out, e.pattern.raw)
	}
	return out
}

// Len returns the number of registered patterns.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.exact) + len(t.dynamic)
}

// decodePath decodes each segment of p. It reports false when a decoded
// segment contains a slash, since no static pattern can match it.
func decodePath(p string) (string, bool) {
	segs := Split(p)
	if len(segs) == 0 {
		return "/", true
	}
	var b strings.Builder
	for _, s := range segs {
		v := decode(s)
		if strings.Contains(v, "/") {
			return "", false
		}
		b.WriteByte('/')
		b.WriteString(v)
	}
	return b.String(), true
}
