package curseforge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the default addon API base URL.
	DefaultBaseURL = "https://addons-ecs.forgesvc.net/api/v2/addon"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerMinute bounds the request rate against the API.
	DefaultRequestsPerMinute = 300

	// UserAgent is the user agent string sent with API requests.
	UserAgent = "cdl/dev (https://github.com/steviee/cdl)"

	// maxErrorBody limits how much of an error response is kept.
	maxErrorBody = 512
)

// Client is a CurseForge addon API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	mods       *Cache[int, SearchResult]
	files      *Cache[fileKey, ModInfo]
}

type fileKey struct {
	modID, fileID int
}

// Config holds client configuration.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	UserAgent         string
	RequestsPerMinute int

	// CacheSize and CacheTTL bound the mod and file caches.
	CacheSize int
	CacheTTL  time.Duration
}

// NewClient creates a new API client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	if config.UserAgent == "" {
		config.UserAgent = UserAgent
	}

	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultRequestsPerMinute
	}

	slog.Debug("creating CurseForge API client",
		"base_url", config.BaseURL,
		"timeout", config.Timeout)

	return &Client{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: config.Timeout},
		userAgent:  config.UserAgent,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 10),
		mods:       NewCache[int, SearchResult](config.CacheSize, config.CacheTTL),
		files:      NewCache[fileKey, ModInfo](config.CacheSize, config.CacheTTL),
	}
}

// doRequest performs a GET request with rate limiting.
func (c *Client) doRequest(ctx context.Context, path string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	slog.Debug("curseforge API request", "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError("do request", err)
	}

	return resp, nil
}

// getJSON fetches path and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.doRequest(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := checkResponse(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return decodeError(err)
	}

	return nil
}

// checkResponse checks if the response is successful.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return statusError(ErrModNotFound)
	case http.StatusTooManyRequests:
		return statusError(ErrRateLimitExceeded)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return NewAPIError(resp.StatusCode, resp.Status, strings.TrimSpace(string(body)))
}
