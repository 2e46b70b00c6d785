package price

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type stubProvider struct {
	calls int64
	price decimal.Decimal
	err   error
	delay time.Duration
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) SpotPrice(_ context.Context, _ string) (decimal.Decimal, error) {
	atomic.AddInt64(&p.calls, 1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return decimal.Decimal{}, p.err
	}
	return p.price, nil
}

func (p *stubProvider) HistoricalPrice(_ context.Context, _ string, _ time.Time) (decimal.Decimal, error) {
	return p.price, p.err
}

func TestCurrentPriceServesFromCache(t *testing.T) {
	provider := &stubProvider{price: decimal.NewFromInt(50000)}
	svc := NewService(provider, nil, 5*time.Minute)

	first, err := svc.CurrentPrice(context.Background(), "btc")
	if err != nil {
		t.Fatalf("first call err=%v", err)
	}
	second, err := svc.CurrentPrice(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("second call err=%v", err)
	}
	if !first.Price.Equal(second.Price) || !first.At.Equal(second.At) {
		t.Fatalf("cache miss: first=%+v second=%+v", first, second)
	}
	if got := atomic.LoadInt64(&provider.calls); got != 1 {
		t.Fatalf("provider calls=%d want=1", got)
	}
}

func TestCurrentPriceConcurrentCallsCollapse(t *testing.T) {
	provider := &stubProvider{price: decimal.NewFromInt(50000), delay: 20 * time.Millisecond}
	svc := NewService(provider, nil, 5*time.Minute)

	const workers = 8
	var wg sync.WaitGroup
	quotes := make([]Quote, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			quotes[i], errs[i] = svc.CurrentPrice(context.Background(), "BTC")
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d err=%v", i, errs[i])
		}
		if !quotes[i].Price.Equal(quotes[0].Price) {
			t.Fatalf("worker %d saw different price", i)
		}
	}
	if got := atomic.LoadInt64(&provider.calls); got != 1 {
		t.Fatalf("provider calls=%d want=1", got)
	}
}

func TestCurrentPriceFailureIsFetchError(t *testing.T) {
	provider := &stubProvider{err: errors.New("rate limited")}
	svc := NewService(&Chain{Providers: []Provider{provider}}, nil, time.Minute)

	_, err := svc.CurrentPrice(context.Background(), "BTC")
	if err == nil {
		t.Fatalf("expected error")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err=%T want FetchError", err)
	}
	if fetchErr.Symbol != "BTC" {
		t.Fatalf("symbol=%q want BTC", fetchErr.Symbol)
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	provider := &stubProvider{price: decimal.NewFromInt(100)}
	svc := NewService(provider, nil, 10*time.Millisecond)

	if _, err := svc.CurrentPrice(context.Background(), "ETH"); err != nil {
		t.Fatalf("first call err=%v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := svc.CurrentPrice(context.Background(), "ETH"); err != nil {
		t.Fatalf("second call err=%v", err)
	}
	if got := atomic.LoadInt64(&provider.calls); got != 2 {
		t.Fatalf("provider calls=%d want=2", got)
	}
}

func TestWarmAndPrune(t *testing.T) {
	provider := &stubProvider{price: decimal.NewFromInt(100)}
	svc := NewService(provider, nil, time.Minute)

	svc.Warm("SOL", decimal.NewFromInt(150), time.Now().UTC())
	quote, err := svc.CurrentPrice(context.Background(), "SOL")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !quote.Price.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("price=%s want=150", quote.Price)
	}
	if got := atomic.LoadInt64(&provider.calls); got != 0 {
		t.Fatalf("provider calls=%d want=0", got)
	}

	dropped := svc.Prune(time.Now().UTC().Add(2 * time.Minute))
	if dropped != 1 {
		t.Fatalf("pruned=%d want=1", dropped)
	}
}

func TestChainFallsBackInOrder(t *testing.T) {
	failing := &stubProvider{err: errors.New("down")}
	healthy := &stubProvider{price: decimal.NewFromInt(42)}
	chain := &Chain{Providers: []Provider{failing, healthy}}

	val, err := chain.SpotPrice(context.Background(), "btc")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !val.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("price=%s want=42", val)
	}
	if atomic.LoadInt64(&failing.calls) != 1 || atomic.LoadInt64(&healthy.calls) != 1 {
		t.Fatalf("call order wrong: failing=%d healthy=%d", failing.calls, healthy.calls)
	}
}
