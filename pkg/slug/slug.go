package slug

import (
	"crypto/rand"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

type config struct {
	maxLength int
	separator string
	suffixLen int
	reserved  map[string]struct{}
}

// Option configures Make.
type Option func(*config)

// MaxLength caps the slug length in runes, suffix included. Zero disables it.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// Separator replaces the default "-".
func Separator(sep string) Option {
	return func(c *config) { c.separator = sep }
}

// WithSuffix appends a random alphanumeric suffix of n characters.
func WithSuffix(n int) Option {
	return func(c *config) { c.suffixLen = n }
}

// ReservedSlugs lists slugs that always get a random suffix.
func ReservedSlugs(names ...string) Option {
	return func(c *config) {
		if c.reserved == nil {
			c.reserved = make(map[string]struct{}, len(names))
		}
		for _, n := range names {
			c.reserved[strings.ToLower(n)] = struct{}{}
		}
	}
}

// Make builds a slug from s.
func Make(s string, opts ...Option) string {
	cfg := config{separator: "-"}
	for _, opt := range opts {
		opt(&cfg)
	}

	base := normalize(s, cfg.separator)

	suffixLen := cfg.suffixLen
	if _, ok := cfg.reserved[base]; ok && suffixLen == 0 && base != "" {
		suffixLen = 6
	}

	if cfg.maxLength > 0 {
		limit := cfg.maxLength
		if suffixLen > 0 {
			limit -= suffixLen + len([]rune(cfg.separator))
		}
		base = truncate(base, limit, cfg.separator)
	}

	if suffixLen == 0 {
		return base
	}
	if base == "" {
		return randomSuffix(suffixLen)
	}
	return base + cfg.separator + randomSuffix(suffixLen)
}

func normalize(s, sep string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		s,
	)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r == 'ß':
			r = 's'
		case r > unicode.MaxASCII:
			pending = b.Len() > 0
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending {
				b.WriteString(sep)
				pending = false
			}
			b.WriteRune(r)
			continue
		}
		pending = b.Len() > 0
	}
	return b.String()
}

// truncate cuts at limit runes and drops a dangling separator.
func truncate(s string, limit int, sep string) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return strings.TrimSuffix(string(rs[:limit]), sep)
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = suffixAlphabet[int(buf[i])%len(suffixAlphabet)]
	}
	return string(buf)
}
