package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/kevinmichaelchen/showcase/internal/models"
)

const (
	DefaultBaseURL = "https://api.github.com"

	mediaType = "application/vnd.github+json"
	perPage   = 100
)

// Client is a thin wrapper around the GitHub REST repository listing.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. an httptest server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient returns a client for the public API. token may be empty.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListRepos issues a single request for up to 100 of the user's repositories,
// most recently pushed first. The request is never retried.
func (c *Client) ListRepos(ctx context.Context, user string) ([]models.Repo, error) {
	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=%d&sort=pushed", c.baseURL, url.PathEscape(user), perPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", mediaType)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Status:      resp.StatusCode,
			RateLimited: resp.Header.Get(headerRateRemaining) == "0",
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	repos, err := c.decodeRepos(user, body)
	if err != nil {
		c.logger.Warn("ignoring unparsable repository listing",
			zap.String("user", user),
			zap.Error(err))
		return []models.Repo{}, nil
	}

	c.logger.Debug("fetched repositories",
		zap.String("user", user),
		zap.Int("count", len(repos)))
	return repos, nil
}

// decodeRepos returns an empty slice when the body is valid JSON but not an
// array, and a *ParseError when the body is not valid JSON at all. Elements
// that are null or fail to decode are logged and skipped.
func (c *Client) decodeRepos(user string, body []byte) ([]models.Repo, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, &ParseError{Reason: "invalid JSON"}
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []models.Repo{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}

	repos := make([]models.Repo, 0, len(raw))
	for i, elem := range raw {
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			continue
		}
		var r models.Repo
		if err := json.Unmarshal(elem, &r); err != nil {
			c.logger.Warn("skipping undecodable repository",
				zap.String("user", user),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		repos = append(repos, r)
	}
	return repos, nil
}
