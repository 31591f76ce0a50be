package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/harito-life/services-mcp/internal/platform/branding"
	"github.com/harito-life/services-mcp/internal/platform/timeouts"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultBaseURL is the production Harito API root.
const DefaultBaseURL = "https://www.harito.life/api/v1"

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 8 << 20

// SearchParams are the query parameters of the full-text service search.
type SearchParams struct {
	Query string
	Page  int
	Limit int
}

// Client issues GET requests against the Harito API with a fixed timeout.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a catalog client rooted at baseURL. An empty baseURL
// selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog base url: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("catalog base url %q must be an absolute http(s) url", baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeouts.Upstream,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchFull runs GET /service/search-full and decodes the page of services.
func (c *Client) SearchFull(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	query := url.Values{}
	query.Set("q", params.Query)
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("limit", strconv.Itoa(params.Limit))

	body, err := c.get(ctx, "/service/search-full", query)
	if err != nil {
		return nil, err
	}
	var resp SearchResponse
	if err := resp.UnmarshalJSON(body); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetService runs GET /service/{id}. It is used purely as an existence check,
// so the body is read and discarded.
func (c *Client) GetService(ctx context.Context, serviceID string) error {
	_, err := c.get(ctx, "/service/"+url.PathEscape(serviceID), nil)
	return err
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", branding.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}
