package price

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// BinanceStream subscribes to the combined miniTicker stream and warms
// the quote cache for the configured symbols. Purely an optimization; the
// REST chain remains the source of truth on stream gaps.
type BinanceStream struct {
	Logger *zap.Logger
	Cache  *Service

	URL     string
	Quote   string
	Symbols []string
}

func (s *BinanceStream) Run(ctx context.Context) error {
	if s == nil || s.Cache == nil {
		return nil
	}
	endpoint := s.endpoint()
	if endpoint == "" {
		return nil
	}
	for {
		err := s.runOnce(ctx, endpoint)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && s.Logger != nil {
			s.Logger.Warn("price stream disconnected", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func (s *BinanceStream) runOnce(ctx context.Context, endpoint string) error {
	conn, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "shutdown")
	}()
	if s.Logger != nil {
		s.Logger.Info("price stream connected", zap.String("url", endpoint))
	}

	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		sym, price, ok := parseMiniTicker(msg, s.quote())
		if !ok {
			continue
		}
		s.Cache.Warm(sym, price, time.Now().UTC())
	}
}

func (s *BinanceStream) quote() string {
	quote := strings.ToUpper(strings.TrimSpace(s.Quote))
	if quote == "" {
		quote = "USDT"
	}
	return quote
}

func (s *BinanceStream) endpoint() string {
	base := strings.TrimSpace(s.URL)
	if base == "" || len(s.Symbols) == 0 {
		return ""
	}
	streams := make([]string, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		sym = strings.ToLower(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		streams = append(streams, sym+strings.ToLower(s.quote())+"@miniTicker")
	}
	if len(streams) == 0 {
		return ""
	}
	return base + "?streams=" + url.QueryEscape(strings.Join(streams, "/"))
}

type miniTickerEnvelope struct {
	Stream string `json:"stream"`
	Data   *struct {
		Symbol string `json:"s"`
		Close  string `json:"c"`
	} `json:"data"`
}

func parseMiniTicker(msg []byte, quote string) (string, decimal.Decimal, bool) {
	if len(msg) == 0 {
		return "", decimal.Decimal{}, false
	}
	var env miniTickerEnvelope
	if err := json.Unmarshal(msg, &env); err != nil || env.Data == nil {
		return "", decimal.Decimal{}, false
	}
	pair := strings.ToUpper(strings.TrimSpace(env.Data.Symbol))
	if !strings.HasSuffix(pair, quote) || len(pair) <= len(quote) {
		return "", decimal.Decimal{}, false
	}
	price, err := decimal.NewFromString(strings.TrimSpace(env.Data.Close))
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		return "", decimal.Decimal{}, false
	}
	return strings.TrimSuffix(pair, quote), price, true
}
