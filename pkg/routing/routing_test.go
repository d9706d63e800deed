package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/pkg/routing"
)

func TestFromFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file string
		want string
	}{
		{"index.go", "/"},
		{"users/index.go", "/users"},
		{"admin/roles/index.go", "/admin/roles"},
		{"about.go", "/about"},
		{"a.b.c.go", "/a/b/c"},
		{"docs/a.b.go", "/docs/a/b"},
		{"admin/roles/$id.go", "/admin/roles/:id"},
		{"admin/roles/$id.delete.go", "/admin/roles/:id/delete"},
		{"users/$id.edit.go", "/users/:id/edit"},
		{"users/$id/index.go", "/users/:id"},
		{"admin/roles/index.$id.go", "/admin/roles/:id"},
		{"admin/roles/index.$id.delete.go", "/admin/roles/:id/delete"},
		{"users/index.$id.edit.go", "/users/:id/edit"},
		{"identity/sign-in.go", "/identity/sign-in"},
		{"blog.index.go", "/blog"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, routing.FromFile(tt.file))
		})
	}
}

func TestIsExcluded(t *testing.T) {
	t.Parallel()

	assert.True(t, routing.IsExcluded("_layout"))
	assert.True(t, routing.IsExcluded("-components"))
	assert.True(t, routing.IsExcluded(".hidden"))
	assert.True(t, routing.IsExcluded(""))
	assert.False(t, routing.IsExcluded("index.go"))
	assert.False(t, routing.IsExcluded("$id.go"))
}

func TestCompile(t *testing.T) {
	t.Parallel()

	t.Run("rejects pattern without leading slash", func(t *testing.T) {
		t.Parallel()
		_, err := routing.Compile("users")
		require.ErrorIs(t, err, routing.ErrInvalidPattern)
	})

	t.Run("rejects empty parameter name", func(t *testing.T) {
		t.Parallel()
		_, err := routing.Compile("/users/:")
		require.ErrorIs(t, err, routing.ErrInvalidPattern)
	})

	t.Run("rejects duplicate parameter", func(t *testing.T) {
		t.Parallel()
		_, err := routing.Compile("/a/:id/b/:id")
		require.ErrorIs(t, err, routing.ErrDuplicateParam)
	})

	t.Run("collects parameters", func(t *testing.T) {
		t.Parallel()
		p, err := routing.Compile("/orgs/:org/users/:id")
		require.NoError(t, err)
		assert.Equal(t, []string{"org", "id"}, p.Params())
		assert.True(t, p.Dynamic())
	})
}

func TestPatternMatch(t *testing.T) {
	t.Parallel()

	p, err := routing.Compile("/users/:id/edit")
	require.NoError(t, err)

	t.Run("binds parameter", func(t *testing.T) {
		t.Parallel()
		params, ok := p.Match("/users/42/edit")
		require.True(t, ok)
		assert.Equal(t, "42", params.Get("id"))
	})

	t.Run("decodes parameter", func(t *testing.T) {
		t.Parallel()
		params, ok := p.Match("/users/john%20doe%2Fx/edit")
		require.True(t, ok)
		assert.Equal(t, "john doe/x", params.Get("id"))
	})

	t.Run("literal segments are case sensitive", func(t *testing.T) {
		t.Parallel()
		_, ok := p.Match("/Users/42/edit")
		assert.False(t, ok)
	})

	t.Run("segment count must match", func(t *testing.T) {
		t.Parallel()
		_, ok := p.Match("/users/42")
		assert.False(t, ok)
		_, ok = p.Match("/users/42/edit/more")
		assert.False(t, ok)
	})

	t.Run("trailing slash is ignored", func(t *testing.T) {
		t.Parallel()
		_, ok := p.Match("/users/42/edit/")
		assert.True(t, ok)
	})
}

func TestTableLookup(t *testing.T) {
	t.Parallel()

	table := routing.NewTable[string]()
	for _, pattern := range []string{
		"/",
		"/users",
		"/users/new",
		"/users/:id",
		"/users/:id/edit",
		"/:section/:id/edit",
		"/admin/roles/:id",
		"/admin/roles/:id/delete",
	} {
		require.NoError(t, table.Add(pattern, pattern))
	}

	tests := []struct {
		name    string
		path    string
		want    string
		params  routing.Params
		matched bool
	}{
		{name: "root", path: "/", want: "/", params: routing.Params{}, matched: true},
		{name: "static", path: "/users", want: "/users", params: routing.Params{}, matched: true},
		{name: "exact beats pattern", path: "/users/new", want: "/users/new", params: routing.Params{}, matched: true},
		{name: "dynamic", path: "/users/7", want: "/users/:id", params: routing.Params{"id": "7"}, matched: true},
		{name: "static prefix wins", path: "/users/7/edit", want: "/users/:id/edit", params: routing.Params{"id": "7"}, matched: true},
		{name: "fallback to generic", path: "/posts/7/edit", want: "/:section/:id/edit", params: routing.Params{"section": "posts", "id": "7"}, matched: true},
		{name: "nested", path: "/admin/roles/r1/delete", want: "/admin/roles/:id/delete", params: routing.Params{"id": "r1"}, matched: true},
		{name: "miss", path: "/nope/1/2/3", matched: false},
		{name: "encoded slash is one segment", path: "/users%2Fnew", matched: false},
		{name: "one trailing slash", path: "/users/7/", want: "/users/:id", params: routing.Params{"id": "7"}, matched: true},
		{name: "repeated trailing slash", path: "/users/7//", matched: false},
		{name: "empty segment", path: "/users//edit", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, params, ok := table.Lookup(tt.path)
			require.Equal(t, tt.matched, ok)
			if !tt.matched {
				return
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/", routing.Normalize(""))
	assert.Equal(t, "/", routing.Normalize("/"))
	assert.Equal(t, "/a", routing.Normalize("/a/"))
	assert.Equal(t, "/a/", routing.Normalize("/a//"))
}

func TestTableAddDuplicate(t *testing.T) {
	t.Parallel()

	table := routing.NewTable[int]()
	require.NoError(t, table.Add("/a", 1))
	require.ErrorIs(t, table.Add("/a/", 2), routing.ErrDuplicatePattern)
	require.NoError(t, table.Add("/a/:id", 3))
	require.ErrorIs(t, table.Add("/a/:id", 4), routing.ErrDuplicatePattern)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"/a", "/a/:id"}, table.Patterns())
}

func TestTablePrecedenceIsIndependentOfInsertionOrder(t *testing.T) {
	t.Parallel()

	a := routing.NewTable[string]()
	require.NoError(t, a.Add("/:a/:b", "generic"))
	require.NoError(t, a.Add("/docs/:b", "docs"))

	b := routing.NewTable[string]()
	require.NoError(t, b.Add("/docs/:b", "docs"))
	require.NoError(t, b.Add("/:a/:b", "generic"))

	for _, table := range []*routing.Table[string]{a, b} {
		got, _, ok := table.Lookup("/docs/intro")
		require.True(t, ok)
		assert.Equal(t, "docs", got)
	}
}
