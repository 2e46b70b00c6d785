package extract

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"signaltracker/internal/models"
	"signaltracker/internal/price"
)

// Draft is the partial result of one extraction. Fields the rules could
// not resolve stay nil or empty; extraction itself never fails.
type Draft struct {
	Symbol    *string
	Direction *string
	Entry     *decimal.Decimal
	Targets   map[int]decimal.Decimal
	StopLoss  *decimal.Decimal
	RiskLevel *string
	Timeframe *string
}

// Extractor runs the ordered rule cascade over raw signal text. The
// known-symbol table feeds the bare-ticker fallback and is refreshed from
// the coins catalog.
type Extractor struct {
	Logger *zap.Logger

	mu    sync.RWMutex
	known map[string]struct{}
}

type step struct {
	Name  string
	Apply func(x *Extractor, text string, d *Draft)
}

// Cascade order matters: each step only fills fields that are still
// unset, so earlier rules win.
func steps() []step {
	return []step{
		{Name: "symbol_dollar", Apply: (*Extractor).symbolDollar},
		{Name: "symbol_known", Apply: (*Extractor).symbolKnown},
		{Name: "symbol_adjacent", Apply: (*Extractor).symbolAdjacent},
		{Name: "direction_keyword", Apply: (*Extractor).direction},
		{Name: "entry_keyword", Apply: (*Extractor).entry},
		{Name: "targets_numbered", Apply: (*Extractor).targetsNumbered},
		{Name: "targets_single", Apply: (*Extractor).targetsSingle},
		{Name: "stop_keyword", Apply: (*Extractor).stopLoss},
		{Name: "risk_keywords", Apply: (*Extractor).risk},
		{Name: "timeframe_keywords", Apply: (*Extractor).timeframe},
	}
}

func (x *Extractor) SetKnownSymbols(symbols []string) {
	known := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym != "" {
			known[sym] = struct{}{}
		}
	}
	x.mu.Lock()
	x.known = known
	x.mu.Unlock()
}

func (x *Extractor) isKnown(symbol string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.known[strings.ToUpper(symbol)]
	return ok
}

func (x *Extractor) Extract(raw string) Draft {
	d := Draft{Targets: map[int]decimal.Decimal{}}
	text := strings.TrimSpace(raw)
	if text == "" {
		return d
	}
	for _, s := range steps() {
		s.Apply(x, text, &d)
	}
	return d
}

func (x *Extractor) symbolDollar(text string, d *Draft) {
	if d.Symbol != nil {
		return
	}
	if m := symbolDollarRe.FindStringSubmatch(text); len(m) >= 2 {
		sym := strings.ToUpper(m[1])
		d.Symbol = &sym
	}
}

func (x *Extractor) symbolKnown(text string, d *Draft) {
	if d.Symbol != nil {
		return
	}
	for _, tok := range tokenRe.FindAllString(text, -1) {
		if x.isKnown(tok) {
			sym := strings.ToUpper(tok)
			d.Symbol = &sym
			return
		}
	}
}

func (x *Extractor) symbolAdjacent(text string, d *Draft) {
	if d.Symbol != nil {
		return
	}
	for _, re := range []*regexp.Regexp{symbolAfterDirRe, symbolBeforePriceRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := strings.ToUpper(m[1])
			if _, skip := stopwords[candidate]; skip {
				continue
			}
			d.Symbol = &candidate
			return
		}
	}
}

func (x *Extractor) direction(text string, d *Draft) {
	if d.Direction != nil {
		return
	}
	for _, loc := range directionRe.FindAllStringSubmatchIndex(text, -1) {
		word := strings.ToLower(text[loc[2]:loc[3]])
		// "long term", "short frame" etc. are timeframe phrases, not a
		// position direction.
		if timeframeTailRe.MatchString(text[loc[3]:]) {
			continue
		}
		dir := models.DirectionLong
		if word == "short" || word == "sell" {
			dir = models.DirectionShort
		}
		d.Direction = &dir
		return
	}
}

func (x *Extractor) entry(text string, d *Draft) {
	if d.Entry != nil {
		return
	}
	if m := entryRe.FindStringSubmatch(text); len(m) >= 2 {
		if val, err := price.Normalize(m[1]); err == nil {
			d.Entry = &val
		}
	}
}

func (x *Extractor) targetsNumbered(text string, d *Draft) {
	for _, m := range targetNumberedRe.FindAllStringSubmatch(text, -1) {
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx <= 0 {
			continue
		}
		val, err := price.Normalize(m[2])
		if err != nil {
			continue
		}
		// Last occurrence of a repeated index wins.
		d.Targets[idx] = val
	}
}

func (x *Extractor) targetsSingle(text string, d *Draft) {
	if len(d.Targets) > 0 {
		return
	}
	if m := targetSingleRe.FindStringSubmatch(text); len(m) >= 2 {
		if val, err := price.Normalize(m[1]); err == nil {
			d.Targets[1] = val
		}
	}
}

func (x *Extractor) stopLoss(text string, d *Draft) {
	if d.StopLoss != nil {
		return
	}
	if m := stopRe.FindStringSubmatch(text); len(m) >= 2 {
		if val, err := price.Normalize(m[1]); err == nil {
			d.StopLoss = &val
		}
	}
}

func (x *Extractor) risk(text string, d *Draft) {
	if d.RiskLevel != nil {
		return
	}
	for _, re := range []*regexp.Regexp{riskBeforeRe, riskAfterRe} {
		if m := re.FindStringSubmatch(text); len(m) >= 2 {
			level := strings.ToUpper(m[1])
			d.RiskLevel = &level
			return
		}
	}
	if riskLowSynRe.MatchString(text) {
		level := models.RiskLow
		d.RiskLevel = &level
		return
	}
	if riskHighSynRe.MatchString(text) {
		level := models.RiskHigh
		d.RiskLevel = &level
	}
}

func (x *Extractor) timeframe(text string, d *Draft) {
	if d.Timeframe != nil {
		return
	}
	for _, re := range []*regexp.Regexp{timeframeBeforeRe, timeframeAfterRe} {
		if m := re.FindStringSubmatch(text); len(m) >= 2 {
			tf := strings.ToUpper(m[1])
			if tf == "MEDIUM" {
				tf = models.TimeframeMid
			}
			d.Timeframe = &tf
			return
		}
	}
	if timeframeShortSynRe.MatchString(text) {
		tf := models.TimeframeShort
		d.Timeframe = &tf
		return
	}
	if timeframeMidSynRe.MatchString(text) {
		tf := models.TimeframeMid
		d.Timeframe = &tf
		return
	}
	if timeframeLongSynRe.MatchString(text) {
		tf := models.TimeframeLong
		d.Timeframe = &tf
	}
}
