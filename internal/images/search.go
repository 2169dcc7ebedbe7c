package images

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/reloadpress/autopost/internal/logger"
)

// Photo is one result page entry from the image search service.
type Photo struct {
	ID  string
	URL string
}

// SearchService is the image search boundary. Both calls may return
// empty results; callers must treat that as soft failure, never fatal.
type SearchService interface {
	// Search returns an ordered result page for the query.
	Search(ctx context.Context, query string) ([]Photo, error)
	// Random returns a single image URL for the query.
	Random(ctx context.Context, query string) (string, error)
}

const defaultPerPage = 20

// UnsplashClient implements SearchService against the Unsplash API.
type UnsplashClient struct {
	baseURL   string
	accessKey string
	perPage   int
	client    *http.Client
	logger    logger.Logger
}

// NewUnsplashClient creates a search client. baseURL defaults to the
// public API host when empty.
func NewUnsplashClient(baseURL, accessKey string, timeout time.Duration, log logger.Logger) *UnsplashClient {
	if baseURL == "" {
		baseURL = "https://api.unsplash.com"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &UnsplashClient{
		baseURL:   baseURL,
		accessKey: accessKey,
		perPage:   defaultPerPage,
		client:    &http.Client{Timeout: timeout},
		logger:    log,
	}
}

type unsplashPhoto struct {
	ID   string `json:"id"`
	URLs struct {
		Regular string `json:"regular"`
	} `json:"urls"`
}

type unsplashSearchResponse struct {
	Results []unsplashPhoto `json:"results"`
}

func (c *UnsplashClient) Search(ctx context.Context, query string) ([]Photo, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(c.perPage))
	params.Set("orientation", "landscape")
	params.Set("content_filter", "high")

	var resp unsplashSearchResponse
	if err := c.getJSON(ctx, "/search/photos", params, &resp); err != nil {
		return nil, err
	}

	photos := make([]Photo, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.ID != "" && r.URLs.Regular != "" {
			photos = append(photos, Photo{ID: r.ID, URL: r.URLs.Regular})
		}
	}
	return photos, nil
}

func (c *UnsplashClient) Random(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", "landscape")

	var photo unsplashPhoto
	if err := c.getJSON(ctx, "/photos/random", params, &photo); err != nil {
		return "", err
	}
	return photo.URLs.Regular, nil
}

func (c *UnsplashClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("image search request failed",
			logger.String("path", path),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err),
		)
		return fmt.Errorf("image search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("image search non-OK status",
			logger.String("path", path),
			logger.Int("status_code", resp.StatusCode),
		)
		return fmt.Errorf("image search: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode image search response: %w", err)
	}
	return nil
}
