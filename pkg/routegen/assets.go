package routegen

import (
	"fmt"
	"io/fs"
	"mime"
	"path"
	"slices"
	"strings"

	"github.com/dmitrymomot/mwm/pkg/routing"
)

// Asset is a static file served at a fixed URL path.
type Asset struct {
	Path        string `json:"path"`
	File        string `json:"file"`
	ContentType string `json:"contentType"`
}

// ScanAssets lists every file in fsys as a static route under prefix.
// Hidden names are skipped. The result is sorted by URL path.
func ScanAssets(fsys fs.FS, prefix string) ([]Asset, error) {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = ""
	}

	var assets []Asset
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if routing.IsExcluded(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		assets = append(assets, Asset{
			Path:        prefix + "/" + p,
			File:        p,
			ContentType: contentType(p),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan assets: %w", err)
	}

	slices.SortFunc(assets, func(a, b Asset) int { return strings.Compare(a.Path, b.Path) })
	return assets, nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
