// Package fetch retrieves uploaded client files by URL or local path.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout bounds a single download.
const DefaultTimeout = 30 * time.Second

// maxFileBytes caps any single file; uploads are images and documents.
var maxFileBytes int64 = 64 * 1024 * 1024

// ErrTooLarge is returned by a fetched reader once the file passes the cap.
var ErrTooLarge = errors.New("file exceeds 64 MiB")

// Fetcher opens the content behind a file reference. Callers close the reader.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (io.ReadCloser, error)
}

// New returns a Fetcher that serves http(s) references over the network and
// everything else from the filesystem, resolving relative paths against baseDir.
func New(baseDir string, timeout time.Duration) Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &mux{
		remote: &HTTP{Client: &http.Client{Timeout: timeout}},
		local:  &Local{Root: baseDir},
	}
}

type mux struct {
	remote *HTTP
	local  *Local
}

func (m *mux) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	if isRemote(ref) {
		return m.remote.Fetch(ctx, ref)
	}
	return m.local.Fetch(ctx, ref)
}

func isRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// HTTP fetches files with GET requests.
type HTTP struct {
	Client *http.Client
}

func (h *HTTP) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: HTTP %d", ref, resp.StatusCode)
	}
	return limited(resp.Body), nil
}

// Local reads files from disk. Relative paths resolve against Root, and when
// Root is set no path may leave it.
type Local struct {
	Root string
}

func (l *Local) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := ref
	if u, err := url.Parse(ref); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	if l.Root != "" {
		resolved, err := within(l.Root, path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", ref, err)
		}
		path = resolved
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", ref, err)
	}
	return limited(f), nil
}

// within resolves path against root and rejects results outside root.
func within(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(absRoot, path)
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(absRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path is outside %s", root)
	}
	return path, nil
}

// limitedReadCloser reads one byte past the cap so an oversized file fails
// with ErrTooLarge instead of being cut short silently.
type limitedReadCloser struct {
	r    io.Reader
	read int64
	over bool
	io.Closer
}

func limited(rc io.ReadCloser) io.ReadCloser {
	return &limitedReadCloser{r: io.LimitReader(rc, maxFileBytes+1), Closer: rc}
}

func (l *limitedReadCloser) Read(p []byte) (int, error) {
	if l.over {
		return 0, ErrTooLarge
	}
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > maxFileBytes {
		n -= int(l.read - maxFileBytes)
		l.read = maxFileBytes
		l.over = true
		return n, ErrTooLarge
	}
	return n, err
}

// FileName returns the last path element of ref, without any query string.
func FileName(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		ref = u.Path
	}
	name := filepath.Base(filepath.FromSlash(ref))
	if name == "." || name == "/" || name == string(filepath.Separator) {
		return "file"
	}
	return name
}
