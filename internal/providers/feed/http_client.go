package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/akazantsev/surebet/internal/providers"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	backoffBase       = 500 * time.Millisecond
	backoffCap        = 5 * time.Second
)

// Client fetches the line feed over HTTP. 429 and 5xx responses are retried
// with capped exponential backoff before the adapter gives up for the cycle.
type Client struct {
	baseURL    string
	userAgent  string
	maxRetries int
	client     *http.Client
}

func NewClient(baseURL, userAgent string, timeout time.Duration, maxRetries int) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		maxRetries: maxRetries,
		client:     &http.Client{Timeout: timeout},
	}
}

// GetLine fetches and decodes the full prematch line.
// GET <base_url>/line
func (c *Client) GetLine(ctx context.Context) (*LineResponse, error) {
	body, err := c.get(ctx, "/line")
	if err != nil {
		return nil, err
	}

	var out LineResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode line: %w", err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	requestURL := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoffBase << (attempt - 1)
			if wait > backoffCap {
				wait = backoffCap
			}
			slog.Debug("feed: retrying request", "url", requestURL, "attempt", attempt, "wait", wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		body, retryable, err := c.doOnce(ctx, requestURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

// doOnce performs a single request. The second return value reports whether
// the failure is worth retrying (throttling, 5xx, transport errors).
func (c *Client) doOnce(ctx context.Context, requestURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, false, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		slog.Warn("feed: rate limited (429), backing off", "url", requestURL)
		return nil, true, fmt.Errorf("GET %s: %w", requestURL, providers.ErrThrottled)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("GET %s: status %d", requestURL, resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("GET %s: status %d", requestURL, resp.StatusCode)
	}
}
