package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"signaltracker/internal/config"
)

// Binance fetches spot prices from the public REST API. Symbols are paired
// with the configured quote asset (SYMBOL + USDT by default). Historical
// prices come from 1m klines.
type Binance struct {
	HTTP    *http.Client
	BaseURL string
	Quote   string
}

func NewBinance(cfg config.BinanceConfig) *Binance {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Binance{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Quote:   strings.ToUpper(strings.TrimSpace(cfg.Quote)),
	}
}

func (b *Binance) Name() string { return "binance" }

func (b *Binance) pair(symbol string) string {
	quote := b.Quote
	if quote == "" {
		quote = "USDT"
	}
	return strings.ToUpper(strings.TrimSpace(symbol)) + quote
}

func (b *Binance) SpotPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	endpoint := b.BaseURL + "/api/v3/ticker/price?symbol=" + url.QueryEscape(b.pair(symbol))
	var parsed struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := b.getJSON(ctx, endpoint, &parsed); err != nil {
		return decimal.Decimal{}, err
	}
	val, err := decimal.NewFromString(strings.TrimSpace(parsed.Price))
	if err != nil || val.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q", parsed.Price)
	}
	return val, nil
}

func (b *Binance) HistoricalPrice(ctx context.Context, symbol string, at time.Time) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("symbol", b.pair(symbol))
	q.Set("interval", "1m")
	q.Set("startTime", strconv.FormatInt(at.UTC().UnixMilli(), 10))
	q.Set("limit", "1")
	endpoint := b.BaseURL + "/api/v3/klines?" + q.Encode()

	// Each kline row is a mixed array; index 4 is the close price.
	var rows []json.RawMessage
	if err := b.getJSON(ctx, endpoint, &rows); err != nil {
		return decimal.Decimal{}, err
	}
	if len(rows) == 0 {
		return decimal.Decimal{}, fmt.Errorf("no kline at %s", at.UTC().Format(time.RFC3339))
	}
	var fields []any
	if err := json.Unmarshal(rows[0], &fields); err != nil {
		return decimal.Decimal{}, err
	}
	if len(fields) < 5 {
		return decimal.Decimal{}, fmt.Errorf("short kline row")
	}
	closeStr, ok := fields[4].(string)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("unexpected kline close type")
	}
	val, err := decimal.NewFromString(strings.TrimSpace(closeStr))
	if err != nil || val.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("invalid close %q", closeStr)
	}
	return val, nil
}

func (b *Binance) getJSON(ctx context.Context, endpoint string, out any) error {
	client := b.HTTP
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
