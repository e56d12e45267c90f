package media

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/models"
	"github.com/aigcpilot/harvester/internal/storage"
	"github.com/aigcpilot/harvester/internal/utils"
)

const downloadTimeout = 30 * time.Second

// extensions maps served content types to stored file extensions.
var extensions = map[string]string{
	"image/png":                ".png",
	"image/jpeg":               ".jpg",
	"image/jpg":                ".jpg",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/svg+xml":            ".svg",
	"image/x-icon":             ".ico",
	"image/vnd.microsoft.icon": ".ico",
	"image/avif":               ".avif",
	"video/mp4":                ".mp4",
	"video/webm":               ".webm",
	"video/quicktime":          ".mov",
}

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".avif": "image/avif",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

// ExtensionFor picks a file extension from a Content-Type header, falling back to def.
func ExtensionFor(contentType, def string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return def
	}
	if ext, ok := extensions[strings.ToLower(mediaType)]; ok {
		return ext
	}
	return def
}

// Relocator copies external media into owned storage.
type Relocator struct {
	store  storage.ObjectStore
	client *resty.Client
	now    func() time.Time
	log    *zerolog.Logger
}

func NewRelocator(store storage.ObjectStore) *Relocator {
	return &Relocator{
		store: store,
		client: resty.New().
			SetTimeout(downloadTimeout).
			SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		now: time.Now,
		log: logger.Component("relocator"),
	}
}

// Owned reports whether url is already served from our storage. The base must be followed
// by a path separator so look-alike hosts such as cdn.example.com.evil.io do not match.
func (r *Relocator) Owned(url string) bool {
	base := strings.TrimRight(r.store.PublicBase(), "/")
	return base != "" && strings.HasPrefix(url, base+"/")
}

// Relocate downloads sourceURL and stores it under folder. Empty and already-owned URLs
// are returned as is without any network call. It returns false when nothing was stored.
func (r *Relocator) Relocate(ctx context.Context, sourceURL, folder, defaultExt string) (string, bool) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return "", false
	}
	if r.Owned(sourceURL) {
		return sourceURL, true
	}

	log := r.log.With().Str("url", sourceURL).Str("folder", folder).Logger()

	resp, err := r.client.R().SetContext(ctx).Get(sourceURL)
	if err != nil {
		log.Warn().Err(err).Msg("Media download failed")
		return "", false
	}
	if resp.IsError() {
		log.Warn().Int("status", resp.StatusCode()).Msg("Media download rejected")
		return "", false
	}
	if len(resp.Body()) == 0 {
		log.Warn().Msg("Media download returned no data")
		return "", false
	}

	ext := ExtensionFor(resp.Header().Get("Content-Type"), defaultExt)
	stored, err := r.put(ctx, resp.Body(), sourceURL, folder, ext)
	if err != nil {
		log.Warn().Err(err).Msg("Media upload failed")
		return "", false
	}
	return stored, true
}

// Store uploads in-memory bytes such as a screenshot. name seeds the object key.
func (r *Relocator) Store(ctx context.Context, data []byte, name, folder, ext string) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	stored, err := r.put(ctx, data, name, folder, ext)
	if err != nil {
		r.log.Warn().Err(err).Str("name", name).Str("folder", folder).Msg("Upload failed")
		return "", false
	}
	return stored, true
}

// Asset relocates a reference and reports it as a MediaAsset.
func (r *Relocator) Asset(ctx context.Context, sourceURL, folder, defaultExt string) models.MediaAsset {
	stored, _ := r.Relocate(ctx, sourceURL, folder, defaultExt)
	return models.MediaAsset{SourceRef: sourceURL, StoredURL: stored}
}

func (r *Relocator) put(ctx context.Context, data []byte, seed, folder, ext string) (string, error) {
	key := utils.ObjectKey(folder, seed, ext, r.now())
	url, err := r.store.PutObject(ctx, key, contentTypes[strings.ToLower(ext)], data)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return url, nil
}
