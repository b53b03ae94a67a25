package iconcache

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newIconServer(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		_, _ = w.Write(pngBytes(t, color.RGBA{R: 255, A: 255}))
	}))
}

func TestGet_DownloadsOnce(t *testing.T) {
	var hits int64
	server := newIconServer(t, &hits)
	defer server.Close()

	cache, err := New(Options{CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first, err := cache.Get(context.Background(), "CID_Alpha", server.URL+"/icon.png")
	if err != nil {
		t.Fatalf("first Get failed: %v", err)
	}
	second, err := cache.Get(context.Background(), "cid_alpha", server.URL+"/icon.png")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}

	if atomic.LoadInt64(&hits) != 1 {
		t.Errorf("expected 1 download, got %d", hits)
	}
	if first != second {
		t.Error("cached image must be returned by reference")
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestGet_ConcurrentSingleFlight(t *testing.T) {
	var hits int64
	server := newIconServer(t, &hits)
	defer server.Close()

	cache, err := New(Options{CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get(context.Background(), "cid_alpha", server.URL+"/icon.png"); err != nil {
				t.Errorf("Get failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Errorf("expected 1 download for 8 concurrent gets, got %d", got)
	}
}

func TestGet_PersistsToDisk(t *testing.T) {
	var hits int64
	server := newIconServer(t, &hits)
	defer server.Close()

	dir := t.TempDir()

	cache, err := New(Options{CacheDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := cache.Get(context.Background(), "cid_alpha", server.URL+"/icon.png"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "cid_alpha.png")); err != nil {
		t.Fatalf("cached file missing: %v", err)
	}

	// a fresh cache over the same directory must not hit the network
	reopened, err := New(Options{CacheDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := reopened.Get(context.Background(), "cid_alpha", server.URL+"/icon.png"); err != nil {
		t.Fatalf("Get from disk failed: %v", err)
	}

	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Errorf("expected disk hit to avoid download, got %d downloads", got)
	}
}

func TestGet_EmptyID(t *testing.T) {
	cache, err := New(Options{CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := cache.Get(context.Background(), "", "http://unused.invalid"); err == nil {
		t.Fatal("expected error for empty ID")
	}
}

func TestGet_DownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	cache, err := New(Options{CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := cache.Get(context.Background(), "cid_missing", server.URL+"/gone.png"); err == nil {
		t.Fatal("expected error for missing icon")
	}
	if cache.Len() != 0 {
		t.Errorf("failed download must not populate the cache, Len = %d", cache.Len())
	}
}
