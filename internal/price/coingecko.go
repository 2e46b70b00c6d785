package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"signaltracker/internal/config"
)

// CoinGecko fetches spot and historical prices from the public API.
// Symbols resolve to CoinGecko ids through a table seeded from the coins
// catalog plus config overrides.
type CoinGecko struct {
	HTTP    *http.Client
	BaseURL string

	mu        sync.RWMutex
	ids       map[string]string
	overrides map[string]string
}

func NewCoinGecko(cfg config.CoinGeckoConfig) *CoinGecko {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	overrides := map[string]string{}
	for sym, id := range cfg.IDOverrides {
		overrides[strings.ToUpper(strings.TrimSpace(sym))] = strings.TrimSpace(id)
	}
	return &CoinGecko{
		HTTP:      &http.Client{Timeout: timeout},
		BaseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		ids:       map[string]string{},
		overrides: overrides,
	}
}

func (g *CoinGecko) Name() string { return "coingecko" }

// SetIDs replaces the symbol→id table. Config overrides always win.
func (g *CoinGecko) SetIDs(ids map[string]string) {
	clean := make(map[string]string, len(ids))
	for sym, id := range ids {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		id = strings.TrimSpace(id)
		if sym == "" || id == "" {
			continue
		}
		clean[sym] = id
	}
	g.mu.Lock()
	g.ids = clean
	g.mu.Unlock()
}

func (g *CoinGecko) idFor(symbol string) (string, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	g.mu.RLock()
	defer g.mu.RUnlock()
	if id, ok := g.overrides[symbol]; ok && id != "" {
		return id, true
	}
	id, ok := g.ids[symbol]
	return id, ok && id != ""
}

func (g *CoinGecko) SpotPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	id, ok := g.idFor(symbol)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("unknown symbol %q", symbol)
	}
	endpoint := g.BaseURL + "/api/v3/simple/price?ids=" + url.QueryEscape(id) + "&vs_currencies=usd"
	var parsed map[string]struct {
		USD *float64 `json:"usd"`
	}
	if err := g.getJSON(ctx, endpoint, &parsed); err != nil {
		return decimal.Decimal{}, err
	}
	entry, ok := parsed[id]
	if !ok || entry.USD == nil || *entry.USD <= 0 {
		return decimal.Decimal{}, fmt.Errorf("no usd price for %q", id)
	}
	return decimal.NewFromFloat(*entry.USD), nil
}

func (g *CoinGecko) HistoricalPrice(ctx context.Context, symbol string, at time.Time) (decimal.Decimal, error) {
	id, ok := g.idFor(symbol)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("unknown symbol %q", symbol)
	}
	// History endpoint wants dd-mm-yyyy.
	endpoint := g.BaseURL + "/api/v3/coins/" + url.PathEscape(id) + "/history?date=" + at.UTC().Format("02-01-2006")
	var parsed struct {
		MarketData struct {
			CurrentPrice map[string]float64 `json:"current_price"`
		} `json:"market_data"`
	}
	if err := g.getJSON(ctx, endpoint, &parsed); err != nil {
		return decimal.Decimal{}, err
	}
	usd, ok := parsed.MarketData.CurrentPrice["usd"]
	if !ok || usd <= 0 {
		return decimal.Decimal{}, fmt.Errorf("no usd history for %q", id)
	}
	return decimal.NewFromFloat(usd), nil
}

func (g *CoinGecko) getJSON(ctx context.Context, endpoint string, out any) error {
	client := g.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
