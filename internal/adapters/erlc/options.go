package erlc

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithGlobalKey sets the large-app authorization key sent alongside each
// guild's server key.
func WithGlobalKey(k string) Option {
	return func(c *Client) { c.globalKey = k }
}

// WithRateLimit caps outgoing requests across all guilds.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}
