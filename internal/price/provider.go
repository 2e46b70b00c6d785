package price

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FetchError wraps a provider failure for one symbol. Callers use it to
// tell "no price right now" apart from programming errors.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return "price: fetch " + e.Symbol + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Provider interface {
	Name() string
	SpotPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	HistoricalPrice(ctx context.Context, symbol string, at time.Time) (decimal.Decimal, error)
}

// Chain tries providers in order and returns the first success. All
// failures collapse into one FetchError carrying the last cause.
type Chain struct {
	Providers []Provider
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) SpotPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var lastErr error
	for _, p := range c.Providers {
		if p == nil {
			continue
		}
		val, err := p.SpotPrice(ctx, symbol)
		if err == nil {
			return val, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errNoProviders
	}
	return decimal.Decimal{}, &FetchError{Symbol: symbol, Err: lastErr}
}

func (c *Chain) HistoricalPrice(ctx context.Context, symbol string, at time.Time) (decimal.Decimal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var lastErr error
	for _, p := range c.Providers {
		if p == nil {
			continue
		}
		val, err := p.HistoricalPrice(ctx, symbol, at)
		if err == nil {
			return val, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errNoProviders
	}
	return decimal.Decimal{}, &FetchError{Symbol: symbol, Err: lastErr}
}

var errNoProviders = &noProvidersError{}

type noProvidersError struct{}

func (*noProvidersError) Error() string { return "no providers configured" }
