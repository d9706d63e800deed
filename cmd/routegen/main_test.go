package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/pkg/logger"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTree(t, filepath.Join(dir, "routes"), map[string]string{
		"index.go":            "package routes\n\nimport \"github.com/dmitrymomot/mwm\"\n\nvar Home = mwm.Module{}\n",
		"layout.go":           "package routes\n\nimport \"github.com/dmitrymomot/mwm\"\n\nvar Layout = mwm.Wrap(nil)\n",
		"blog/index.$slug.go": "package blog\n\nimport \"github.com/dmitrymomot/mwm\"\n\nvar Post = mwm.Module{}\n",
		"blog/helpers.go":     "package blog\n\nfunc helper() {}\n",
	})
	writeTree(t, filepath.Join(dir, "public"), map[string]string{"app.css": "body{}"})

	opts := options{
		routesDir:  filepath.Join(dir, "routes"),
		modulePath: "example.com/site/routes",
		publicDir:  filepath.Join(dir, "public"),
		prefix:     "/static",
		out:        filepath.Join(dir, "gen", "routes.go"),
		manifest:   filepath.Join(dir, "gen", "routes.json"),
		pkg:        "gen",
	}
	require.NoError(t, generate(opts, logger.NewNope()))

	src, err := os.ReadFile(opts.out)
	require.NoError(t, err)
	assert.Contains(t, string(src), `Pattern: "/blog/:slug"`)
	assert.Contains(t, string(src), `Path: "/static/app.css"`)

	manifest, err := os.ReadFile(opts.manifest)
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"skipped"`)

	opts.strict = true
	assert.Error(t, generate(opts, logger.NewNope()))
}
