package slug_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mwm/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []slug.Option
		expected string
	}{
		{name: "simple", input: "Acme Inc", expected: "acme-inc"},
		{name: "punctuation", input: "Hello, World!", expected: "hello-world"},
		{name: "numbers", input: "Price: $99.99", expected: "price-99-99"},
		{name: "whitespace", input: "  Too   Many  ", expected: "too-many"},
		{name: "diacritics", input: "Café & Résumé", expected: "cafe-resume"},
		{name: "sharp s", input: "straße", expected: "strase"},
		{name: "non latin", input: "hello мир world", expected: "hello-world"},
		{name: "only symbols", input: "!@#$", expected: ""},
		{name: "empty", input: "", expected: ""},
		{name: "separator", input: "Product Name", opts: []slug.Option{slug.Separator("_")}, expected: "product_name"},
		{name: "max length", input: "very long organization name", opts: []slug.Option{slug.MaxLength(10)}, expected: "very-long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slug.Make(tt.input, tt.opts...))
		})
	}
}

func TestMakeSuffix(t *testing.T) {
	t.Parallel()

	t.Run("random suffix", func(t *testing.T) {
		t.Parallel()
		s := slug.Make("Acme", slug.WithSuffix(6))
		assert.Regexp(t, regexp.MustCompile(`^acme-[a-z0-9]{6}$`), s)
		assert.NotEqual(t, s, slug.Make("Acme", slug.WithSuffix(6)))
	})

	t.Run("suffix respects max length", func(t *testing.T) {
		t.Parallel()
		s := slug.Make("organization", slug.WithSuffix(4), slug.MaxLength(10))
		assert.LessOrEqual(t, len(s), 10)
		assert.True(t, strings.HasPrefix(s, "organ-"), s)
	})

	t.Run("reserved names", func(t *testing.T) {
		t.Parallel()
		s := slug.Make("Admin", slug.ReservedSlugs("admin", "api"))
		assert.Regexp(t, regexp.MustCompile(`^admin-[a-z0-9]{6}$`), s)
		assert.Equal(t, "acme", slug.Make("acme", slug.ReservedSlugs("admin")))
	})
}
