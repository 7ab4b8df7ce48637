package itunes

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
)

const maxRedirects = 5

func limitRedirects(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

// DownloadPreview fetches the preview bytes at locator into a uniquely-named
// temporary file and returns its path. The caller owns deleting the file.
// Implausibly small payloads are treated as truncated responses and retried.
func (c *Client) DownloadPreview(ctx context.Context, locator string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		c.log.Debug("preview download", "attempt", attempt, "url", locator)

		path, err := c.downloadOnce(ctx, locator)
		if err == nil {
			return path, nil
		}
		lastErr = err
		c.log.Warn("preview download failed", "attempt", attempt, "error", err)
		if err := sleep(ctx, c.downloadBackoff); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %w", ErrRetriesExceeded, lastErr)
}

func (c *Client) downloadOnce(ctx context.Context, locator string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	buf, err := c.fetch(ctx, locator)
	if err != nil {
		return "", err
	}
	if len(buf) < c.minPreviewSize {
		return "", fmt.Errorf("preview too small (%d bytes)", len(buf))
	}

	dir := c.tmpDir
	if dir == "" {
		dir = os.TempDir()
	}
	name := filepath.Join(dir, "preview_"+uuid.NewString()+previewExt(locator))
	if err := os.WriteFile(name, buf, 0o600); err != nil {
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	c.log.Debug("saved preview", "path", name, "bytes", len(buf))
	return name, nil
}

func previewExt(locator string) string {
	u, err := url.Parse(locator)
	if err != nil {
		return ".m4a"
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return ".m4a"
}

// fetch GETs a URL with bounded size and redirects, transparently decoding
// recognized content encodings.
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, snippet)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(raw)) > c.maxBytes {
		return nil, fmt.Errorf("response too large (> %d bytes)", c.maxBytes)
	}

	return decode(raw, resp.Header.Get("Content-Encoding")), nil
}

// decode decompresses raw according to the Content-Encoding header. On any
// decode error the raw bytes are returned unchanged, matching how lenient
// CDN responses are handled upstream.
func decode(raw []byte, encoding string) []byte {
	var r io.Reader
	switch {
	case encoding == "":
		return raw
	case strings.Contains(encoding, "gzip"):
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return raw
		}
		r = gz
	case strings.Contains(encoding, "deflate"):
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			r = flate.NewReader(bytes.NewReader(raw))
		} else {
			r = zr
		}
	case strings.Contains(encoding, "br"):
		r = brotli.NewReader(bytes.NewReader(raw))
	default:
		return raw
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return raw
	}
	return out
}
