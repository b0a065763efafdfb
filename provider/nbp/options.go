package nbp

import (
	"log/slog"
	"net/http"
	"time"
)

type Option func(c *Client)

// WithLogger specifies the logger for the client
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithBaseURL overrides the NBP API root (https://api.nbp.pl/api)
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTable selects the NBP rate table. Only tables publishing
// mid rates (A, B) are supported
func WithTable(table string) Option {
	return func(c *Client) {
		c.table = table
	}
}

// WithTimeout specifies the request timeout. Defaults to 10s
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient specifies the underlying HTTP client. The client is
// copied, so the request timeout never leaks into the caller's instance
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client == nil {
			return
		}

		cp := *client
		c.client = &cp
	}
}
