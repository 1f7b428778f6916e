// Package dataset downloads the raw booking dump over HTTP.
package dataset

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"hotel_recommender/internal/adapters/observability"
	"hotel_recommender/internal/domain"
)

const maxAttempts = 4

var (
	ErrUnauthorized = errors.New("dataset: unauthorized")
	ErrForbidden    = errors.New("dataset: forbidden")
)

type Client struct {
	hc *http.Client
	rl *rate.Limiter
	cb *gobreaker.CircuitBreaker[*http.Response]
}

type Option func(*Client)

// WithHTTPClient replaces the default client (no overall timeout, since
// the body is streamed by the caller).
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

func New(rps int, opts ...Option) *Client {
	if rps <= 0 {
		rps = 2
	}
	c := &Client{
		hc: &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		}},
		rl: rate.NewLimiter(rate.Limit(rps), rps),
	}
	for _, o := range opts {
		o(c)
	}
	c.cb = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "dataset",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// A missing file is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrInputNotFound) || errors.Is(err, context.Canceled)
		},
	})
	return c
}

// Fetch GETs rawURL and returns the response body. The caller closes it.
// 404 maps to domain.ErrInputNotFound; 429 and 5xx are retried with
// backoff, honoring Retry-After.
func (c *Client) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: dataset url %q", domain.ErrInvalidParameter, rawURL)
	}
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.cb.Execute(func() (*http.Response, error) {
		return c.get(ctx, rawURL, u.Host)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("dataset %s: %w", u.Host, err)
	}
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) get(ctx context.Context, rawURL, host string) (*http.Response, error) {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv, */*")
		req.Header.Set("User-Agent", "hotel-recommender/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("dataset", host, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("dataset", host, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			return resp, nil

		case http.StatusNotFound, http.StatusGone:
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s", domain.ErrInputNotFound, rawURL)

		case http.StatusUnauthorized:
			resp.Body.Close()
			return nil, ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return nil, ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("dataset: remote %d", resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("dataset: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

// sleepCtx waits for d or returns false if ctx is done first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date); 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
