// Package fetcher implements the resilient HTTP fetcher used by the scan
// pipeline. Each fetch bounds every attempt with a hard timeout, follows
// redirects, treats non-2xx statuses as failures, and retries transient
// failures with exponential backoff.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fleetlens/carrierscan/internal/metrics"
)

// Config controls fetch behavior.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	MaxAttempts  int
	BackoffBase  time.Duration
	RateLimitRPS float64
}

// Fetcher issues outbound requests through a Colly collector.
type Fetcher struct {
	cfg           Config
	backoff       BackoffPolicy
	limiter       *rate.Limiter
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 250 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.AllowURLRevisit = true
	c.WithTransport(newHTTPTransport())

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}

	return &Fetcher{
		cfg:           cfg,
		backoff:       BackoffPolicy{MaxAttempts: cfg.MaxAttempts, Base: cfg.BackoffBase},
		limiter:       limiter,
		baseCollector: c,
		logger:        logger,
	}
}

// Fetch retrieves the document body at address, retrying transient failures
// up to the configured attempt ceiling. After exhaustion it returns a
// terminal error carrying the last failure.
func (f *Fetcher) Fetch(ctx context.Context, address string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < f.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			metrics.FetchRetries.Inc()
			if err := sleep(ctx, f.backoff.Delay(attempt-1)); err != nil {
				return "", fmt.Errorf("fetch %s: %w", address, err)
			}
		}
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("fetch %s: %w", address, err)
			}
		}

		metrics.FetchAttempts.Inc()
		body, err := f.attempt(ctx, address)
		if err == nil {
			return body, nil
		}
		lastErr = err
		f.logger.Warn("fetch attempt failed",
			zap.String("url", address),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", f.cfg.MaxAttempts),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}
	metrics.FetchFailures.Inc()
	return "", fmt.Errorf("fetch %s: %w", address, lastErr)
}

// attempt performs one bounded request and returns the final resolved body.
func (f *Fetcher) attempt(ctx context.Context, address string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)

	var (
		body     []byte
		respErr  error
		respCode int
	)
	collector.OnResponse(func(r *colly.Response) {
		respCode = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			respCode = r.StatusCode
		}
		respErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(address)
	}()

	select {
	case <-attemptCtx.Done():
		return "", fmt.Errorf("request aborted: %w", attemptCtx.Err())
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("visit: %w", err)
		}
		if respErr != nil {
			return "", fmt.Errorf("response (status %d): %w", respCode, respErr)
		}
		return string(body), nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
