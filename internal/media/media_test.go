package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigcpilot/harvester/internal/browser"
	"github.com/aigcpilot/harvester/internal/utils"
)

type memStore struct {
	base    string
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemStore(base string) *memStore {
	return &memStore{base: base, objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) PutObject(_ context.Context, key, contentType string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return m.base + "/" + key, nil
}

func (m *memStore) PublicBase() string { return m.base }

func fixedRelocator(store *memStore) *Relocator {
	r := NewRelocator(store)
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	return r
}

func TestRelocateEmptyAndOwned(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	store := newMemStore("https://cdn.example.com")
	r := fixedRelocator(store)

	got, ok := r.Relocate(context.Background(), "", "logos", ".png")
	assert.False(t, ok)
	assert.Empty(t, got)

	owned := "https://cdn.example.com/logos/1_abc.png"
	got, ok = r.Relocate(context.Background(), owned, "logos", ".png")
	assert.True(t, ok)
	assert.Equal(t, owned, got)

	// Relocating twice never re-uploads.
	again, _ := r.Relocate(context.Background(), got, "logos", ".png")
	assert.Equal(t, owned, again)

	assert.Zero(t, atomic.LoadInt32(&hits))
	assert.Empty(t, store.objects)
}

func TestOwned(t *testing.T) {
	tests := []struct {
		base string
		url  string
		want bool
	}{
		{"https://cdn.example.com", "https://cdn.example.com/logos/a.png", true},
		{"https://cdn.example.com/", "https://cdn.example.com/logos/a.png", true},
		{"https://cdn.example.com", "https://cdn.example.com.evil.io/x.png", false},
		{"https://cdn.example.com", "https://cdn.example.community/x.png", false},
		{"https://cdn.example.com", "https://cdn.example.com", false},
		{"", "https://cdn.example.com/a.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			r := NewRelocator(newMemStore(tt.base))
			assert.Equal(t, tt.want, r.Owned(tt.url))
		})
	}
}

func TestRelocateDownloadsLookalikeHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png"))
	}))
	defer srv.Close()

	// The look-alike base is a prefix of the test server's URL without the path separator.
	store := newMemStore(srv.URL[:len(srv.URL)-1])
	got, ok := fixedRelocator(store).Relocate(context.Background(), srv.URL+"/x.png", "logos", ".png")
	require.True(t, ok)
	assert.NotEqual(t, srv.URL+"/x.png", got)
	assert.Len(t, store.objects, 1)
}

func TestIdleWatcher(t *testing.T) {
	w := newIdleWatcher()
	w.handle(&page.EventLifecycleEvent{Name: "networkIdle"})
	w.arm()
	w.handle(&page.EventLifecycleEvent{Name: "networkIdle"})
	assert.False(t, w.wait(context.Background(), 10*time.Millisecond), "idle before the new document must not count")

	w.handle(&page.EventLifecycleEvent{Name: "init"})
	w.handle(&page.EventLifecycleEvent{Name: "load"})
	w.handle(&page.EventLifecycleEvent{Name: "networkIdle"})
	w.handle(&page.EventLifecycleEvent{Name: "networkIdle"})
	assert.True(t, w.wait(context.Background(), time.Second))
}

func TestIdleWatcherCancelled(t *testing.T) {
	w := newIdleWatcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, w.wait(ctx, time.Minute))
}

func TestRelocateDownloadsAndStores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo":
			w.Header().Set("Content-Type", "image/webp")
			_, _ = w.Write([]byte("webp-bytes"))
		case "/untyped":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("raw"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := newMemStore("https://cdn.example.com")
	r := fixedRelocator(store)

	src := srv.URL + "/logo"
	got, ok := r.Relocate(context.Background(), src, "logos", ".png")
	require.True(t, ok)
	key := "logos/1700000000_" + utils.ShortHash(src, 16) + ".webp"
	assert.Equal(t, "https://cdn.example.com/"+key, got)
	assert.Equal(t, "webp-bytes", string(store.objects[key]))
	assert.Equal(t, "image/webp", store.types[key])

	got, ok = r.Relocate(context.Background(), srv.URL+"/untyped", "videos", ".mp4")
	require.True(t, ok)
	assert.Contains(t, got, ".mp4")

	got, ok = r.Relocate(context.Background(), srv.URL+"/missing", "logos", ".png")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestRelocateUploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	store := newMemStore("https://cdn.example.com")
	store.err = errors.New("bucket gone")

	asset := fixedRelocator(store).Asset(context.Background(), srv.URL, "logos", ".png")
	assert.Equal(t, srv.URL, asset.SourceRef)
	assert.Empty(t, asset.StoredURL)
}

func TestStore(t *testing.T) {
	store := newMemStore("https://cdn.example.com")
	r := fixedRelocator(store)

	got, ok := r.Store(context.Background(), []byte("png"), "Toolly", "screenshots", ".png")
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/screenshots/1700000000_"+utils.ShortHash("Toolly", 16)+".png", got)

	_, ok = r.Store(context.Background(), nil, "Toolly", "screenshots", ".png")
	assert.False(t, ok)
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", ".png"},
		{"image/jpeg; charset=binary", ".jpg"},
		{"IMAGE/SVG+XML", ".svg"},
		{"video/mp4", ".mp4"},
		{"text/html", ".bin"},
		{"", ".bin"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtensionFor(tt.contentType, ".bin"), tt.contentType)
	}
}

func TestCaptureUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a browser")
	}
	b := browser.New(browser.Config{NavigationTimeout: 2 * time.Second})
	defer b.Close()

	png, ok := NewCapturer(b).Capture(context.Background(), "http://127.0.0.1:1")
	assert.False(t, ok)
	assert.Nil(t, png)
}
