package internal

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/http"
	"time"
)

// Cache-Control values for static assets.
const (
	CacheControlImmutable = "public, max-age=31536000, immutable"
	CacheControlNoCache   = "no-cache"
)

type assetConfig struct {
	fsys   fs.FS
	assets []Asset
	dev    bool
}

// mountAssets registers one GET/HEAD route per asset. In production the
// file is read once and served with a long-lived cache header and an ETag;
// in development it is re-read on every request and never cached.
func (a *App) mountAssets() error {
	for _, asset := range a.assets.assets {
		h, err := a.assetHandler(asset)
		if err != nil {
			return err
		}
		a.router.Get(asset.Path, h)
		a.router.Head(asset.Path, h)
	}
	return nil
}

func (a *App) assetHandler(asset Asset) (http.HandlerFunc, error) {
	fsys := a.assets.fsys
	if a.assets.dev {
		return func(w http.ResponseWriter, r *http.Request) {
			data, err := fs.ReadFile(fsys, asset.File)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			writeAssetHeaders(w, asset, CacheControlNoCache)
			http.ServeContent(w, r, asset.File, time.Time{}, bytes.NewReader(data))
		}, nil
	}

	data, err := fs.ReadFile(fsys, asset.File)
	if err != nil {
		return nil, fmt.Errorf("static asset %s: %w", asset.Path, err)
	}
	sum := sha256.Sum256(data)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	return func(w http.ResponseWriter, r *http.Request) {
		writeAssetHeaders(w, asset, CacheControlImmutable)
		w.Header().Set("ETag", etag)
		http.ServeContent(w, r, asset.File, time.Time{}, bytes.NewReader(data))
	}, nil
}

func writeAssetHeaders(w http.ResponseWriter, asset Asset, cacheControl string) {
	h := w.Header()
	if asset.ContentType != "" {
		h.Set("Content-Type", asset.ContentType)
	}
	h.Set("Cache-Control", cacheControl)
	h.Set("X-Content-Type-Options", "nosniff")
}
