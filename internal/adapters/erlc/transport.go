package erlc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const defaultBase = "https://api.policeroleplay.community/v1"

// KeyStore hands out the per-guild server key.
type KeyStore interface {
	ServerKey(ctx context.Context, guildID string) (string, error)
}

type Client struct {
	keys      KeyStore
	globalKey string
	http      *http.Client
	baseURL   string
	limiter   *rate.Limiter
	log       *slog.Logger
}

func New(keys KeyStore, opts ...Option) *Client {
	c := &Client{
		keys:    keys,
		baseURL: defaultBase,
		limiter: rate.NewLimiter(rate.Limit(30), 10),
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = newRetryingClient(c.log)
	}
	return c
}

// newRetryingClient retries 429 and 5xx answers honouring Retry-After, and
// gives up quickly: a failed guild is simply picked up by the next cycle.
func newRetryingClient(l *slog.Logger) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 3 * time.Second
	rc.Logger = nil
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			l.Debug("erlc retry", "path", req.URL.Path, "attempt", attempt)
		}
	}
	hc := rc.StandardClient()
	hc.Timeout = 10 * time.Second
	return hc
}

// doJSON builds the URL, adds the guild's key, and maps failures to
// ErrNotFound or *ResponseFailure.
func (c *Client) doJSON(ctx context.Context, guildID, method, path string, in, out any) error {
	key, err := c.keys.ServerKey(ctx, guildID)
	if err != nil {
		return fmt.Errorf("erlc key %s: %w", guildID, err)
	}
	if key == "" {
		return ErrNoServerKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Server-Key", key)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.globalKey != "" {
		req.Header.Set("Authorization", c.globalKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erlc http: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &ResponseFailure{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
