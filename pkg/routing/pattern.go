package routing

import (
	"net/url"
	"path"
	"strings"
)

// ParamPrefix marks a dynamic segment in a compiled pattern.
const ParamPrefix = ":"

// FileParamPrefix marks a dynamic segment in a route file name.
const FileParamPrefix = "$"

// IndexName is the file name that maps to its directory path.
const IndexName = "index"

// IsExcluded reports whether a file or directory name is hidden from routing.
func IsExcluded(name string) bool {
	return name == "" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, "-") || strings.HasPrefix(name, ".")
}

// FromFile converts a slash-separated route file path relative to the routes
// root into a URL pattern. The extension is stripped, dot-separated parts of
// the base name become nested segments, "$name" becomes ":name" and "index"
// parts of the base name are dropped.
//
// The go command rejects file names starting with "$", so a dynamic segment
// directly under a directory is written "index.$id.go", which maps to the
// same pattern as "$id.go".
func FromFile(rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))

	var parts []string
	dir, base := path.Split(rel)
	for _, d := range strings.Split(strings.Trim(dir, "/"), "/") {
		if d != "" {
			parts = append(parts, d)
		}
	}
	for _, b := range strings.Split(base, ".") {
		if b != IndexName {
			parts = append(parts, b)
		}
	}

	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if name, ok := strings.CutPrefix(p, FileParamPrefix); ok {
			p = ParamPrefix + name
		}
		segs = append(segs, p)
	}

	return "/" + strings.Join(segs, "/")
}

// IsDynamic reports whether a pattern contains a parameter segment.
func IsDynamic(pattern string) bool {
	return strings.Contains(pattern, "/"+ParamPrefix)
}

// Normalize trims a trailing slash from a request path, keeping "/" intact.
func Normalize(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// Split returns the segments of a normalized path. The root path has no
// segments; repeated slashes yield empty segments.
func Split(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Pattern is a compiled URL pattern.
type Pattern struct {
	raw      string
	segments []string
	params   []string
	literals int
	prefix   int
}

// Compile parses a pattern such as "/admin/roles/:id".
func Compile(raw string) (Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return Pattern{}, ErrInvalidPattern
	}
	p := Pattern{raw: Normalize(raw)}
	p.segments = Split(p.raw)

	seen := make(map[string]struct{})
	inPrefix := true
	for _, s := range p.segments {
		if s == "" {
			return Pattern{}, ErrInvalidPattern
		}
		name, isParam := strings.CutPrefix(s, ParamPrefix)
		if !isParam {
			p.literals++
			if inPrefix {
				p.prefix++
			}
			continue
		}
		inPrefix = false
		if name == "" {
			return Pattern{}, ErrInvalidPattern
		}
		if _, dup := seen[name]; dup {
			return Pattern{}, ErrDuplicateParam
		}
		seen[name] = struct{}{}
		p.params = append(p.params, name)
	}
	return p, nil
}

// String returns the normalized pattern text.
func (p Pattern) String() string { return p.raw }

// Params returns the parameter names in order of appearance.
func (p Pattern) Params() []string { return p.params }

// Dynamic reports whether the pattern has parameters.
func (p Pattern) Dynamic() bool { return len(p.params) > 0 }

// Match tests an escaped request path against the pattern. Parameter
// values are URL-decoded; a segment that fails to decode is used verbatim.
func (p Pattern) Match(escapedPath string) (Params, bool) {
	segs := Split(Normalize(escapedPath))
	if len(segs) != len(p.segments) {
		return nil, false
	}

	var params Params
	for i, s := range p.segments {
		if segs[i] == "" {
			return nil, false
		}
		value := decode(segs[i])
		if name, ok := strings.CutPrefix(s, ParamPrefix); ok {
			if params == nil {
				params = make(Params, len(p.params))
			}
			params[name] = value
			continue
		}
		if s != value {
			return nil, false
		}
	}
	return params, true
}

// morePrecise orders dynamic patterns for matching.
func morePrecise(a, b Pattern) bool {
	if a.prefix != b.prefix {
		return a.prefix > b.prefix
	}
	if a.literals != b.literals {
		return a.literals > b.literals
	}
	return a.raw < b.raw
}

func decode(seg string) string {
	v, err := url.PathUnescape(seg)
	if err != nil {
		return seg
	}
	return v
}
