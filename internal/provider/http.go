package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/mapview/internal/model"
	"github.com/sells-group/mapview/internal/resilience"
	"github.com/sells-group/mapview/internal/viewport"
)

// HTTPOptions configures the HTTP record provider.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	Retry     resilience.RetryConfig
	Limiter   *rate.Limiter
}

// HTTPProvider fetches records from a JSON bounding-box endpoint. Requests go
// through a rate limiter, a retry loop, and a circuit breaker so a flapping
// backend does not stall every map pan.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
}

// NewHTTP creates an HTTPProvider for the given base URL. The endpoint is
// expected to accept north/south/east/west query parameters and return a
// JSON array of records.
func NewHTTP(baseURL string, opts HTTPOptions) *HTTPProvider {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "mapview/1.0"
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = resilience.DefaultRetryConfig()
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(5, 5)
	}
	return &HTTPProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: limiter,
		breaker: resilience.NewCircuitBreaker("record-backend", resilience.CircuitBreakerConfig{}),
	}
}

func (p *HTTPProvider) Name() string { return "http" }

// FetchBounds queries the backend for all records inside bounds.
func (p *HTTPProvider) FetchBounds(ctx context.Context, bounds viewport.Bounds) ([]model.Location, error) {
	if err := bounds.Validate(); err != nil {
		return nil, eris.Wrap(err, "provider: invalid bounds")
	}

	cfg := p.opts.Retry
	cfg.OnRetry = resilience.RetryLogger("fetch records")

	records, err := resilience.ExecuteVal(ctx, p.breaker, func(ctx context.Context) ([]model.Location, error) {
		return resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]model.Location, error) {
			return p.fetch(ctx, bounds)
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "provider: fetch bounds")
	}

	zap.L().Debug("fetched records",
		zap.Int("count", len(records)),
		zap.Float64("north", bounds.North),
		zap.Float64("south", bounds.South),
	)
	return records, nil
}

func (p *HTTPProvider) fetch(ctx context.Context, bounds viewport.Bounds) ([]model.Location, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "provider: rate limit wait")
	}

	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "provider: parse base url")
	}
	q := u.Query()
	q.Set("north", fmt.Sprintf("%g", bounds.North))
	q.Set("south", fmt.Sprintf("%g", bounds.South))
	q.Set("east", fmt.Sprintf("%g", bounds.East))
	q.Set("west", fmt.Sprintf("%g", bounds.West))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "provider: build request")
	}
	req.Header.Set("User-Agent", p.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if resilience.IsTransient(err) {
			return nil, resilience.NewTransientError(err, 0)
		}
		return nil, eris.Wrap(err, "provider: execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		err := eris.Errorf("provider: unexpected status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var records []model.Location
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, eris.Wrap(err, "provider: decode response")
	}
	return records, nil
}
