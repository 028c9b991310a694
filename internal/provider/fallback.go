package provider

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mapview/internal/model"
	"github.com/sells-group/mapview/internal/viewport"
)

// FallbackProvider tries each provider in order until one succeeds. The
// usual arrangement is the HTTP backend first with the local SQLite snapshot
// behind it.
type FallbackProvider struct {
	providers []Provider
}

// NewFallback creates a FallbackProvider over the given providers.
func NewFallback(providers ...Provider) *FallbackProvider {
	return &FallbackProvider{providers: providers}
}

func (p *FallbackProvider) Name() string { return "fallback" }

// FetchBounds returns the first successful result. Every provider failing
// returns the last error.
func (p *FallbackProvider) FetchBounds(ctx context.Context, bounds viewport.Bounds) ([]model.Location, error) {
	if len(p.providers) == 0 {
		return nil, eris.New("provider: no providers configured")
	}

	var lastErr error
	for _, prov := range p.providers {
		records, err := prov.FetchBounds(ctx, bounds)
		if err == nil {
			return records, nil
		}
		lastErr = err
		zap.L().Warn("provider failed, trying next",
			zap.String("provider", prov.Name()),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, eris.Wrap(lastErr, "provider: all providers failed")
}
