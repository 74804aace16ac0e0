package fetch

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch_DataURI(t *testing.T) {
	f := New()
	ctx := context.Background()

	payload := []byte("fake image bytes")
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	data, contentType, err := f.Fetch(ctx, uri)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "image/png", contentType)
}

func TestFetcher_Fetch_DataURI_Malformed(t *testing.T) {
	f := New()
	_, _, err := f.Fetch(context.Background(), "data:image/png;base64")
	assert.Error(t, err)
}

func TestFetcher_Fetch_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	f := New()
	data, contentType, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestFetcher_Fetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New()
	_, _, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetcher_Fetch_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "avatar.bin")
	require.NoError(t, os.WriteFile(path, []byte("file-bytes"), 0o600))

	f := New()
	data, contentType, err := f.Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, []byte("file-bytes"), data)
	assert.NotEmpty(t, contentType)
}

func TestFetcher_Fetch_Unsupported(t *testing.T) {
	f := New()
	_, _, err := f.Fetch(context.Background(), "ftp://example.com/a.jpg")
	assert.Error(t, err)
}

func TestFetcher_Exists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "avatar.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New()
	ctx := context.Background()

	assert.True(t, f.Exists(ctx, "data:image/png;base64,AAAA"))
	assert.True(t, f.Exists(ctx, "file://"+path))
	assert.False(t, f.Exists(ctx, "file://"+filepath.Join(dir, "missing.bin")))
	assert.True(t, f.Exists(ctx, srv.URL+"/ok"))
	assert.False(t, f.Exists(ctx, srv.URL+"/gone"))
	assert.False(t, f.Exists(ctx, "content://unknown"))
}
