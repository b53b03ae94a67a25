// Package iconcache caches cosmetic icons by cosmetic ID, in memory and on
// disk. It replaces ambient global caching with an explicit object injected
// into the render boundary.
package iconcache

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // icon decoding
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Cache is a process-lifetime icon cache with get-or-fetch-and-store
// semantics. At most one download runs per missing ID; concurrent requests
// for the same ID wait for the first. No eviction at this scale.
type Cache struct {
	cacheDir   string
	httpClient *http.Client

	mu       sync.Mutex
	images   map[string]image.Image
	inflight map[string]chan struct{}
}

// Options configures the icon cache.
type Options struct {
	CacheDir string        // Directory to store cached icons
	Timeout  time.Duration // HTTP request timeout
}

// DefaultOptions returns sensible default cache options.
func DefaultOptions() Options {
	homeDir, _ := os.UserHomeDir()
	return Options{
		CacheDir: filepath.Join(homeDir, ".exocheck", "icon-cache"),
		Timeout:  30 * time.Second,
	}
}

// New creates an icon cache backed by the given directory.
func New(options Options) (*Cache, error) {
	if options.CacheDir == "" {
		options.CacheDir = DefaultOptions().CacheDir
	}
	if options.Timeout == 0 {
		options.Timeout = DefaultOptions().Timeout
	}

	if err := os.MkdirAll(options.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Cache{
		cacheDir:   options.CacheDir,
		httpClient: &http.Client{Timeout: options.Timeout},
		images:     make(map[string]image.Image),
		inflight:   make(map[string]chan struct{}),
	}, nil
}

// Get returns the icon for the cosmetic ID, loading it from memory, disk or
// the URL in that order. The decoded image is retained for the process
// lifetime.
func (c *Cache) Get(ctx context.Context, id, url string) (image.Image, error) {
	if id == "" {
		return nil, fmt.Errorf("icon ID is empty")
	}
	key := strings.ToLower(id)

	for {
		c.mu.Lock()
		if img, ok := c.images[key]; ok {
			c.mu.Unlock()
			return img, nil
		}
		wait, busy := c.inflight[key]
		if !busy {
			done := make(chan struct{})
			c.inflight[key] = done
			c.mu.Unlock()

			img, err := c.load(ctx, key, url)

			c.mu.Lock()
			if err == nil {
				c.images[key] = img
			}
			delete(c.inflight, key)
			close(done)
			c.mu.Unlock()

			return img, err
		}
		c.mu.Unlock()

		// another goroutine is fetching this ID
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wait:
		}
	}
}

// Len returns the number of icons held in memory.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

// load reads the icon from disk, or downloads and persists it.
func (c *Cache) load(ctx context.Context, key, url string) (image.Image, error) {
	path := filepath.Join(c.cacheDir, key+".png")

	if data, err := os.ReadFile(path); err == nil {
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			return img, nil
		}
		// corrupt cache file; re-download below
		_ = os.Remove(path)
	}

	if url == "" {
		return nil, fmt.Errorf("no icon URL for %s", key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download icon: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download icon: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read icon: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode icon: %w", err)
	}

	if err := c.persist(path, img); err != nil {
		// disk persistence is best effort; the decoded image still serves
		return img, nil
	}

	return img, nil
}

// persist writes the decoded icon to disk as PNG via a temp file rename.
func (c *Cache) persist(path string, img image.Image) error {
	tempFile, err := os.CreateTemp(c.cacheDir, "download-*.tmp")
	if err != nil {
		return err
	}
	tempPath := tempFile.Name()

	if err := png.Encode(tempFile, img); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return err
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	return nil
}
