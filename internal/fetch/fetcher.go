// Package fetch materializes opaque image locators into binary payloads.
// It covers the locator shapes the mobile clients hand over: http(s) URLs,
// file paths and data URIs.
package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Fetcher resolves image URIs into payload bytes plus a best-effort
// content type.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with a default HTTP client.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch materializes the given URI. The returned content type may be empty
// or generic; callers are expected to correct it from the URI extension.
func (f *Fetcher) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(uri, "data:"):
		return fetchDataURI(uri)
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return f.fetchHTTP(ctx, uri)
	case strings.HasPrefix(uri, "file://"):
		return fetchFile(strings.TrimPrefix(uri, "file://"))
	case strings.HasPrefix(uri, "/"):
		return fetchFile(uri)
	default:
		return nil, "", fmt.Errorf("unsupported uri scheme: %q", uri)
	}
}

// Exists reports whether the resource behind uri is still reachable.
// Data URIs are self-contained and always reachable; for http(s) a HEAD
// request is issued; for files the path is stat'ed.
func (f *Fetcher) Exists(ctx context.Context, uri string) bool {
	switch {
	case strings.HasPrefix(uri, "data:"):
		return true
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
		if err != nil {
			return false
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode < 400
	case strings.HasPrefix(uri, "file://"):
		_, err := os.Stat(strings.TrimPrefix(uri, "file://"))
		return err == nil
	case strings.HasPrefix(uri, "/"):
		_, err := os.Stat(uri)
		return err == nil
	default:
		return false
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, uri string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch uri: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

func fetchFile(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	// Sniff the content type from the payload itself; file paths carry no
	// reliable type information.
	return data, http.DetectContentType(data), nil
}

// fetchDataURI decodes an RFC 2397 data URI of the form
// data:<mediatype>;base64,<payload>.
func fetchDataURI(uri string) ([]byte, string, error) {
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, "", fmt.Errorf("malformed data uri")
	}

	contentType := meta
	base64Encoded := false
	if strings.HasSuffix(meta, ";base64") {
		contentType = strings.TrimSuffix(meta, ";base64")
		base64Encoded = true
	}

	if !base64Encoded {
		return []byte(payload), contentType, nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data uri: %w", err)
	}
	return data, contentType, nil
}
