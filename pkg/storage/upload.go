package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ImageTypes are the web image formats browsers render inline.
var ImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// Policy restricts what Upload accepts.
type Policy struct {
	// Prefix is prepended to the generated key, e.g. "avatars/<user id>".
	Prefix string
	// MaxSize in bytes. Zero means no limit.
	MaxSize int64
	// Allow lists accepted content types. Empty accepts anything.
	Allow []string
}

// Object describes a stored upload.
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// Upload validates fh against p and stores it under a random key with an
// extension matching its sniffed content type. Policy violations are
// returned as *RejectedError.
func Upload(ctx context.Context, s Storage, fh *multipart.FileHeader, p Policy) (Object, error) {
	if fh.Size == 0 {
		return Object{}, ErrEmptyFile
	}
	if p.MaxSize > 0 && fh.Size > p.MaxSize {
		return Object{}, &RejectedError{Message: fmt.Sprintf("File must be at most %s", formatSize(p.MaxSize))}
	}

	f, err := fh.Open()
	if err != nil {
		return Object{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return Object{}, fmt.Errorf("detect content type: %w", err)
	}
	if len(p.Allow) > 0 && !slices.ContainsFunc(p.Allow, mt.Is) {
		return Object{}, &RejectedError{Message: "File type is not allowed"}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Object{}, fmt.Errorf("rewind upload: %w", err)
	}

	ext := mt.Extension()
	if ext == "" {
		ext = ".bin"
	}
	key := path.Join(cleanPrefix(p.Prefix), uuid.NewString()+ext)
	contentType := mt.String()
	if err := s.Put(ctx, key, f, fh.Size, contentType); err != nil {
		return Object{}, err
	}
	return Object{Key: key, URL: s.URL(key), ContentType: contentType, Size: fh.Size}, nil
}

// cleanPrefix drops traversal and empty segments so a prefix built from
// user data cannot escape its folder.
func cleanPrefix(prefix string) string {
	parts := strings.FieldsFunc(prefix, func(r rune) bool { return r == '/' || r == '\\' })
	out := parts[:0]
	for _, p := range parts {
		if p != "." && p != ".." {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
