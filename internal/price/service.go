package price

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Quote is one cached price observation.
type Quote struct {
	Symbol string
	Price  decimal.Decimal
	At     time.Time
}

// Service caches current prices in front of a Provider. Quotes stay valid
// for TTL; concurrent misses for one symbol collapse into a single
// provider call.
type Service struct {
	Provider Provider
	Logger   *zap.Logger
	TTL      time.Duration

	mu    sync.RWMutex
	cache map[string]Quote
	group singleflight.Group
}

func NewService(provider Provider, logger *zap.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		Provider: provider,
		Logger:   logger,
		TTL:      ttl,
		cache:    map[string]Quote{},
	}
}

// CurrentPrice returns a quote no older than TTL, fetching from the
// provider on a miss. Failures surface as FetchError; a stale cached value
// is never returned past its window.
func (s *Service) CurrentPrice(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	now := time.Now().UTC()
	if q, ok := s.lookup(symbol, now); ok {
		return q, nil
	}

	val, err, _ := s.group.Do(symbol, func() (any, error) {
		// Another flight may have filled the cache while we queued.
		if q, ok := s.lookup(symbol, time.Now().UTC()); ok {
			return q, nil
		}
		price, err := s.Provider.SpotPrice(ctx, symbol)
		if err != nil {
			return Quote{}, err
		}
		q := Quote{Symbol: symbol, Price: price, At: time.Now().UTC()}
		s.store(q)
		return q, nil
	})
	if err != nil {
		if _, ok := err.(*FetchError); ok {
			return Quote{}, err
		}
		return Quote{}, &FetchError{Symbol: symbol, Err: err}
	}
	return val.(Quote), nil
}

// HistoricalPrice passes through to the provider; history is not cached.
func (s *Service) HistoricalPrice(ctx context.Context, symbol string, at time.Time) (decimal.Decimal, error) {
	return s.Provider.HistoricalPrice(ctx, strings.ToUpper(strings.TrimSpace(symbol)), at)
}

// Warm seeds the cache from an external feed (the websocket stream).
func (s *Service) Warm(symbol string, price decimal.Decimal, at time.Time) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || price.LessThanOrEqual(decimal.Zero) {
		return
	}
	s.store(Quote{Symbol: symbol, Price: price, At: at.UTC()})
}

// Prune drops quotes past their freshness window.
func (s *Service) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for sym, q := range s.cache {
		if now.Sub(q.At) >= s.TTL {
			delete(s.cache, sym)
			dropped++
		}
	}
	return dropped
}

func (s *Service) lookup(symbol string, now time.Time) (Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.cache[symbol]
	if !ok || now.Sub(q.At) >= s.TTL {
		return Quote{}, false
	}
	return q, true
}

func (s *Service) store(q Quote) {
	s.mu.Lock()
	s.cache[q.Symbol] = q
	s.mu.Unlock()
}
