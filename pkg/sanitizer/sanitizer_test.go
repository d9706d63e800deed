package sanitizer_test

import (
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"script", `<p>Hello</p><script>alert('xss')</script>`, "Hello"},
		{"nested", `<div><p>nested <span>content</span></p></div>`, "nested content"},
		{"javascript url", `<a href="javascript:alert('xss')">click</a>`, "click"},
		{"entities", `Tom &amp; Jerry`, "Tom & Jerry"},
		{"plain", "normal text", "normal text"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"drops script", `<p>Hello</p><script>alert('xss')</script>`, "<p>Hello</p>"},
		{"keeps formatting", `<p><strong>Bold</strong> and <em>italic</em></p>`, `<p><strong>Bold</strong> and <em>italic</em></p>`},
		{"keeps lists", `<ul><li>one</li></ul>`, `<ul><li>one</li></ul>`},
		{"nofollow links", `<a href="https://example.com">link</a>`, `<a href="https://example.com" rel="nofollow">link</a>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.SanitizeHTML(tt.input))
		})
	}

	t.Run("event handlers", func(t *testing.T) {
		t.Parallel()
		out := sanitizer.SanitizeHTML(`<p onclick="alert(1)">x</p><img src=x onerror=alert(1)>`)
		assert.NotContains(t, out, "onclick")
		assert.NotContains(t, out, "onerror")
	})
}

func TestSanitizeHTMLCustom(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<b>x</b>", sanitizer.SanitizeHTMLCustom("<b>x</b>", nil))
	assert.Equal(t, "x", sanitizer.SanitizeHTMLCustom("<b>x</b>", bluemonday.StrictPolicy()))
}

func TestSanitizeStruct(t *testing.T) {
	t.Parallel()

	type meta struct {
		Tag string `sanitize:"trim,lower"`
	}
	type roleInput struct {
		Name        string   `sanitize:"trim,lower"`
		DisplayName string   `sanitize:"strip,singleline"`
		Description string   `sanitize:"html"`
		Email       *string  `sanitize:"email"`
		Aliases     []string `sanitize:"trim"`
		Raw         string   `sanitize:"-"`
		Meta        meta
	}

	email := "  Admin@Example.COM "
	in := roleInput{
		Name:        "  Editor ",
		DisplayName: "<b>Content</b>\n  Editor",
		Description: `<p>ok</p><script>x</script>`,
		Email:       &email,
		Aliases:     []string{" a ", "b "},
		Raw:         "  keep ",
		Meta:        meta{Tag: " X "},
	}

	require.NoError(t, sanitizer.SanitizeStruct(&in))
	assert.Equal(t, "editor", in.Name)
	assert.Equal(t, "Content Editor", in.DisplayName)
	assert.Equal(t, "<p>ok</p>", in.Description)
	assert.Equal(t, "admin@example.com", *in.Email)
	assert.Equal(t, []string{"a", "b"}, in.Aliases)
	assert.Equal(t, "  keep ", in.Raw)
	assert.Equal(t, "x", in.Meta.Tag)

	t.Run("rejects non pointers", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, sanitizer.SanitizeStruct(in), sanitizer.ErrNotStructPointer)
	})

	t.Run("rejects unknown rules", func(t *testing.T) {
		t.Parallel()
		var bad struct {
			V string `sanitize:"shout"`
		}
		require.Error(t, sanitizer.SanitizeStruct(&bad))
	})
}
