// Package wordpress is a minimal client for the WordPress REST API,
// covering the post, category, and media surface the publishing
// pipeline needs.
package wordpress

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/reloadpress/autopost/internal/logger"
	"github.com/reloadpress/autopost/internal/models"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultPerPage  = 50
	categoriesBatch = 100
)

type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	logger   logger.Logger
}

// New builds a client for a WordPress site. baseURL is the site root,
// without the /wp-json suffix. Credentials are an application password
// pair sent as HTTP basic auth.
func New(baseURL, username, password string, log logger.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("wordpress base URL is required")
	}
	if username == "" || password == "" {
		return nil, errors.New("wordpress credentials are required")
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: defaultTimeout},
		logger:   log,
	}, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/wp-json/wp/v2" + path
}

func (c *Client) setAuth(req *http.Request) {
	cred := base64.StdEncoding.EncodeToString([]byte(c.username + ":" + c.password))
	req.Header.Set("Authorization", "Basic "+cred)
}

// do issues a request and returns the raw response body plus headers.
// A non-JSON response body is treated as an upstream availability
// problem rather than a client bug: maintenance pages and WAF
// challenges come back as HTML with a 200.
func (c *Client) do(ctx context.Context, method, rawURL string, payload any) ([]byte, http.Header, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.setAuth(req)

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s %s: %v", models.ErrUpstreamUnavailable, method, rawURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("wordpress request",
		logger.String("method", method),
		logger.String("url", rawURL),
		logger.Int("status_code", resp.StatusCode),
		logger.Duration("request_duration", duration),
	)

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, fmt.Errorf("%s %s: %w", method, rawURL, models.ErrNotFound)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if decodeErr := json.Unmarshal(raw, &apiErr); decodeErr == nil && apiErr.Message != "" {
			c.logger.Error("wordpress API error",
				logger.String("method", method),
				logger.String("url", rawURL),
				logger.Int("status_code", resp.StatusCode),
				logger.String("error_code", apiErr.Code),
				logger.String("error_message", apiErr.Message),
			)
			return nil, nil, fmt.Errorf("wordpress API error (%d) %s: %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return nil, nil, fmt.Errorf("wordpress API error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		snippet := string(raw)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		c.logger.Warn("non-JSON response from wordpress",
			logger.String("url", rawURL),
			logger.String("content_type", contentType),
			logger.String("body_snippet", snippet),
		)
		return nil, nil, fmt.Errorf("%w: non-JSON response (%s) from %s", models.ErrUpstreamUnavailable, contentType, rawURL)
	}

	return raw, resp.Header, nil
}

// ListOptions narrows a post listing.
type ListOptions struct {
	Status  string
	After   time.Time
	PerPage int
	Search  string
	// Category restricts results to one category ID; zero means all.
	Category int
	// MaxPages bounds pagination; zero means follow X-WP-TotalPages to
	// the end.
	MaxPages int
}

// ListPosts returns posts matching opts, newest first, following
// X-WP-TotalPages pagination until exhausted.
func (c *Client) ListPosts(ctx context.Context, opts ListOptions) ([]Post, error) {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	var all []Post
	totalPages := 1
	for page := 1; page <= totalPages; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))
		q.Set("orderby", "date")
		q.Set("order", "desc")
		if opts.Status != "" {
			q.Set("status", opts.Status)
		}
		if !opts.After.IsZero() {
			q.Set("after", opts.After.UTC().Format(time.RFC3339))
		}
		if opts.Search != "" {
			q.Set("search", opts.Search)
		}
		if opts.Category > 0 {
			q.Set("categories", strconv.Itoa(opts.Category))
		}

		raw, headers, err := c.do(ctx, http.MethodGet, c.endpoint("/posts")+"?"+q.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("list posts page %d: %w", page, err)
		}

		var batch []Post
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, fmt.Errorf("decode posts page %d: %w", page, err)
		}
		all = append(all, batch...)

		if page == 1 {
			totalPages = headerPages(headers)
			if opts.MaxPages > 0 && totalPages > opts.MaxPages {
				totalPages = opts.MaxPages
			}
		}
	}

	c.logger.Debug("listed posts",
		logger.String("status", opts.Status),
		logger.Int("count", len(all)),
		logger.Int("pages", totalPages),
	)
	return all, nil
}

// headerPages reads X-WP-TotalPages, defaulting to a single page when
// the header is missing or malformed.
func headerPages(h http.Header) int {
	n, err := strconv.Atoi(h.Get("X-WP-TotalPages"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ListCategories returns every category on the site, paged.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var all []Category
	totalPages := 1
	for page := 1; page <= totalPages; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(categoriesBatch))
		q.Set("page", strconv.Itoa(page))

		raw, headers, err := c.do(ctx, http.MethodGet, c.endpoint("/categories")+"?"+q.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("list categories page %d: %w", page, err)
		}

		var batch []Category
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, fmt.Errorf("decode categories page %d: %w", page, err)
		}
		all = append(all, batch...)

		if page == 1 {
			totalPages = headerPages(headers)
		}
	}
	return all, nil
}

// CreatePost creates a post and returns the stored representation.
func (c *Client) CreatePost(ctx context.Context, p NewPost) (Post, error) {
	raw, _, err := c.do(ctx, http.MethodPost, c.endpoint("/posts"), p)
	if err != nil {
		return Post{}, fmt.Errorf("create post %q: %w", p.Title, err)
	}

	var created Post
	if err := json.Unmarshal(raw, &created); err != nil {
		return Post{}, fmt.Errorf("decode created post: %w", err)
	}

	c.logger.Info("created post",
		logger.Int("post_id", created.ID),
		logger.String("title", p.Title),
		logger.String("status", p.Status),
		logger.String("date_gmt", p.DateGMT),
	)
	return created, nil
}

// UpdatePost sends a partial update. Only the fields present in the map
// change; everything else keeps its stored value.
func (c *Client) UpdatePost(ctx context.Context, id int, fields map[string]any) (Post, error) {
	raw, _, err := c.do(ctx, http.MethodPost, c.endpoint("/posts/"+strconv.Itoa(id)), fields)
	if err != nil {
		return Post{}, fmt.Errorf("update post %d: %w", id, err)
	}

	var updated Post
	if err := json.Unmarshal(raw, &updated); err != nil {
		return Post{}, fmt.Errorf("decode updated post: %w", err)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	c.logger.Info("updated post",
		logger.Int("post_id", id),
		logger.Strings("fields", keys),
	)
	return updated, nil
}

// UploadMedia uploads raw image bytes to the media library.
func (c *Client) UploadMedia(ctx context.Context, data []byte, filename, mimeType string) (Media, error) {
	rawURL := c.endpoint("/media")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(data))
	if err != nil {
		return Media{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	req.Header.Set("Accept", "application/json")
	c.setAuth(req)

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		return Media{}, fmt.Errorf("%w: upload media: %v", models.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Media{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if decodeErr := json.Unmarshal(raw, &apiErr); decodeErr == nil && apiErr.Message != "" {
			return Media{}, fmt.Errorf("wordpress API error (%d) %s: %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return Media{}, fmt.Errorf("wordpress API error: %d %s", resp.StatusCode, resp.Status)
	}

	var media Media
	if err := json.Unmarshal(raw, &media); err != nil {
		return Media{}, fmt.Errorf("decode media response: %w", err)
	}

	c.logger.Info("uploaded media",
		logger.Int("media_id", media.ID),
		logger.String("filename", filename),
		logger.String("mime_type", mimeType),
		logger.Int("size_bytes", len(data)),
		logger.Duration("request_duration", duration),
	)
	return media, nil
}

// GetMediaSourceURL resolves a media ID to its public source URL.
func (c *Client) GetMediaSourceURL(ctx context.Context, id int) (string, error) {
	raw, _, err := c.do(ctx, http.MethodGet, c.endpoint("/media/"+strconv.Itoa(id)), nil)
	if err != nil {
		return "", fmt.Errorf("get media %d: %w", id, err)
	}

	var media Media
	if err := json.Unmarshal(raw, &media); err != nil {
		return "", fmt.Errorf("decode media %d: %w", id, err)
	}
	if media.SourceURL == "" {
		return "", fmt.Errorf("media %d has no source URL: %w", id, models.ErrNotFound)
	}
	return media.SourceURL, nil
}

// DownloadBytes fetches an arbitrary URL and returns the body, used for
// thumbnail base images. Unlike the API methods it accepts any content
// type.
func (c *Client) DownloadBytes(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: download %s: %v", models.ErrUpstreamUnavailable, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", fmt.Errorf("download %s: HTTP %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read download: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
