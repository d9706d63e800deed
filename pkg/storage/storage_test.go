package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/pkg/storage"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	_, fh, err := req.FormFile("file")
	require.NoError(t, err)
	return fh
}

func TestUpload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	policy := storage.Policy{Prefix: "avatars/u1", MaxSize: 1 << 10, Allow: storage.ImageTypes}

	t.Run("stores an allowed image", func(t *testing.T) {
		t.Parallel()
		mem := storage.NewMemory("https://cdn.example.com/")
		obj, err := storage.Upload(ctx, mem, fileHeader(t, "me.txt", pngData), policy)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(obj.Key, "avatars/u1/"))
		assert.True(t, strings.HasSuffix(obj.Key, ".png"), "extension follows the content, not the file name")
		assert.Equal(t, "image/png", obj.ContentType)
		assert.Equal(t, "https://cdn.example.com/"+obj.Key, obj.URL)
		assert.Equal(t, int64(len(pngData)), obj.Size)

		stored, ok := mem.Get(obj.Key)
		require.True(t, ok)
		assert.Equal(t, pngData, stored.Data)
	})

	t.Run("rejects other types", func(t *testing.T) {
		t.Parallel()
		mem := storage.NewMemory("")
		_, err := storage.Upload(ctx, mem, fileHeader(t, "me.png", []byte("just text")), policy)
		var rejected *storage.RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "File type is not allowed", rejected.Message)
		assert.Zero(t, mem.Len())
	})

	t.Run("rejects large files", func(t *testing.T) {
		t.Parallel()
		big := append(append([]byte{}, pngData...), make([]byte, 2<<10)...)
		_, err := storage.Upload(ctx, storage.NewMemory(""), fileHeader(t, "big.png", big), policy)
		var rejected *storage.RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "File must be at most 1 KB", rejected.Message)
	})

	t.Run("rejects empty files", func(t *testing.T) {
		t.Parallel()
		_, err := storage.Upload(ctx, storage.NewMemory(""), fileHeader(t, "empty.png", nil), policy)
		require.ErrorIs(t, err, storage.ErrEmptyFile)
	})

	t.Run("prefix cannot escape", func(t *testing.T) {
		t.Parallel()
		obj, err := storage.Upload(ctx, storage.NewMemory(""), fileHeader(t, "me.png", pngData),
			storage.Policy{Prefix: "../../etc//./x"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(obj.Key, "etc/x/"), obj.Key)
	})
}

type failingStore struct{ *storage.Memory }

func (failingStore) Put(context.Context, string, io.ReadSeeker, int64, string) error {
	return storage.ErrUploadFailed
}

func TestUploadStoreError(t *testing.T) {
	t.Parallel()
	_, err := storage.Upload(context.Background(), failingStore{storage.NewMemory("")}, fileHeader(t, "me.png", pngData), storage.Policy{})
	require.True(t, errors.Is(err, storage.ErrUploadFailed))
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()
	_, err := storage.New(storage.Config{AccessKey: "a", SecretKey: "b"})
	require.ErrorIs(t, err, storage.ErrInvalidConfig)
	_, err = storage.New(storage.Config{Bucket: "b"})
	require.ErrorIs(t, err, storage.ErrInvalidConfig)
}

func TestS3URL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  storage.Config
		want string
	}{
		{"aws", storage.Config{Region: "eu-west-1"}, "https://media.s3.eu-west-1.amazonaws.com/a/b.png"},
		{"default region", storage.Config{}, "https://media.s3.us-east-1.amazonaws.com/a/b.png"},
		{"public url", storage.Config{PublicURL: "https://cdn.example.com/"}, "https://cdn.example.com/a/b.png"},
		{"path style", storage.Config{Endpoint: "http://minio:9000", PathStyle: true}, "http://minio:9000/media/a/b.png"},
		{"virtual host endpoint", storage.Config{Endpoint: "https://media.r2.dev/"}, "https://media.r2.dev/a/b.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := tt.cfg
			cfg.Bucket, cfg.AccessKey, cfg.SecretKey = "media", "key", "secret"
			s, err := storage.New(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.URL("a/b.png"))
		})
	}
}
