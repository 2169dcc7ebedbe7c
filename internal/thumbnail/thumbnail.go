// Package thumbnail defines the featured-image contract for new posts.
package thumbnail

import (
	"context"
	"fmt"
	"strings"

	"github.com/reloadpress/autopost/internal/logger"
)

// Image is ready-to-upload thumbnail material.
type Image struct {
	Data     []byte
	Filename string
	MimeType string
}

// Generator produces a thumbnail for a planned post. Implementations
// may compose, fetch, or delegate; callers only see bytes.
type Generator interface {
	Generate(ctx context.Context, title, category string) (Image, error)
}

// Downloader fetches raw bytes from a URL, reporting the content type.
type Downloader interface {
	DownloadBytes(ctx context.Context, url string) ([]byte, string, error)
}

// RemoteBase serves every request from a fixed base image URL, named
// per post so the media library stays searchable.
type RemoteBase struct {
	baseURL    string
	downloader Downloader
	logger     logger.Logger
}

func NewRemoteBase(baseURL string, d Downloader, log logger.Logger) *RemoteBase {
	return &RemoteBase{baseURL: baseURL, downloader: d, logger: log}
}

func (r *RemoteBase) Generate(ctx context.Context, title, category string) (Image, error) {
	return fetchBase(ctx, r.downloader, r.baseURL, title, category, r.logger)
}

// MediaResolver turns a CMS media library ID into its source URL.
type MediaResolver interface {
	GetMediaSourceURL(ctx context.Context, id int) (string, error)
}

// MediaBase serves every request from a media library item, resolved to
// its source URL on first use and cached for the process lifetime.
type MediaBase struct {
	mediaID    int
	resolver   MediaResolver
	downloader Downloader
	logger     logger.Logger

	baseURL string
}

func NewMediaBase(mediaID int, res MediaResolver, d Downloader, log logger.Logger) *MediaBase {
	return &MediaBase{mediaID: mediaID, resolver: res, downloader: d, logger: log}
}

func (m *MediaBase) Generate(ctx context.Context, title, category string) (Image, error) {
	if m.baseURL == "" {
		u, err := m.resolver.GetMediaSourceURL(ctx, m.mediaID)
		if err != nil {
			return Image{}, fmt.Errorf("resolve thumbnail media %d: %w", m.mediaID, err)
		}
		m.baseURL = u
		m.logger.Debug("thumbnail media resolved",
			logger.Int("media_id", m.mediaID),
			logger.String("url", u),
		)
	}
	return fetchBase(ctx, m.downloader, m.baseURL, title, category, m.logger)
}

func fetchBase(ctx context.Context, d Downloader, baseURL, title, category string, log logger.Logger) (Image, error) {
	data, contentType, err := d.DownloadBytes(ctx, baseURL)
	if err != nil {
		return Image{}, fmt.Errorf("fetch thumbnail base: %w", err)
	}

	mime := contentType
	ext := "jpg"
	switch {
	case strings.Contains(contentType, "png"):
		ext = "png"
	case strings.Contains(contentType, "webp"):
		ext = "webp"
	case contentType == "":
		mime = "image/jpeg"
	}

	img := Image{
		Data:     data,
		Filename: fmt.Sprintf("%s-thumb.%s", slug(title), ext),
		MimeType: mime,
	}
	log.Debug("thumbnail prepared",
		logger.String("filename", img.Filename),
		logger.String("category", category),
		logger.Int("size_bytes", len(img.Data)),
	)
	return img, nil
}

func slug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if n := b.Len(); n > 0 && b.String()[n-1] != '-' {
				b.WriteByte('-')
			}
		}
	}
	s := strings.Trim(b.String(), "-")
	if len(s) > 60 {
		s = strings.Trim(s[:60], "-")
	}
	if s == "" {
		s = "post"
	}
	return s
}
