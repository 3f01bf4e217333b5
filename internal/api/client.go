package api

import (
	"log/slog"
	"net/http"
	"time"
)

// Client fetches option-chain snapshots from the NSE REST API.
type Client struct {
	baseURL    string
	symbol     string
	cookie     string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new NSE client for a single index symbol. The cookie is
// the full session cookie header value provisioned out of band.
func NewClient(baseURL, symbol, cookie string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		symbol:  symbol,
		cookie:  cookie,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent overrides the default browser user agent.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}
