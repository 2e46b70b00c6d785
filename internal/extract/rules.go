package extract

import "regexp"

// num matches one price token: optional $, thousands commas, optional
// decimal part, optional k-shorthand.
const num = `\$?\d[\d,]*(?:\.\d+)?\s?[kK]?`

var (
	symbolDollarRe      = regexp.MustCompile(`\$([A-Za-z]{2,6})\b`)
	symbolAfterDirRe    = regexp.MustCompile(`(?i)\b(?:long|short|buy|sell)\s+\$?([A-Za-z]{2,6})\b`)
	symbolBeforePriceRe = regexp.MustCompile(`(?i)\b([A-Za-z]{2,6})\s+(?:at|price|entry)\b`)
	tokenRe             = regexp.MustCompile(`\b[A-Za-z]{2,6}\b`)

	directionRe = regexp.MustCompile(`(?i)\b(long|buy|short|sell)\b`)
	// Trailing context that turns a direction word into a timeframe phrase.
	timeframeTailRe = regexp.MustCompile(`^[\s-]*(?:term|frame|timeframe)\b`)

	entryRe = regexp.MustCompile(`(?i)\b(?:entry|enter|limit|at)\b[^0-9]{0,12}?(` + num + `)`)

	// Pass A: explicitly numbered targets. The \b after the index digit
	// keeps "tp 2500" from being read as target #2.
	targetNumberedRe = regexp.MustCompile(`(?i)\b(?:t\.?\s?p\.?|target)\s*\.?\s*([1-9])\b[^0-9]{0,12}?(` + num + `)`)
	// Pass B: one unnumbered target, first mention only.
	targetSingleRe = regexp.MustCompile(`(?i)\b(?:take\s?[- ]?profits?|t\.?\s?p\.?|targets?)\b[^0-9]{0,20}?(` + num + `)`)

	stopRe = regexp.MustCompile(`(?i)\b(?:stop\s?[- ]?loss|stoploss|sl|stop)\b[^0-9]{0,12}?(` + num + `)`)

	riskBeforeRe  = regexp.MustCompile(`(?i)\b(low|medium|high)[\s-]*risk\b`)
	riskAfterRe   = regexp.MustCompile(`(?i)\brisk\b[\s:]*(?:is\s+)?(low|medium|high)\b`)
	riskLowSynRe  = regexp.MustCompile(`(?i)\b(safe|conservative)\b`)
	riskHighSynRe = regexp.MustCompile(`(?i)\b(risky|aggressive)\b`)

	timeframeBeforeRe   = regexp.MustCompile(`(?i)\b(short|mid|medium|long)[\s-]*(?:term|frame|timeframe)\b`)
	timeframeAfterRe    = regexp.MustCompile(`(?i)\b(?:timeframe|time\s?frame)\b[\s:]*(short|mid|medium|long)\b`)
	timeframeShortSynRe = regexp.MustCompile(`(?i)\b(intraday|daily)\b`)
	timeframeMidSynRe   = regexp.MustCompile(`(?i)\b(weekly)\b`)
	timeframeLongSynRe  = regexp.MustCompile(`(?i)\b(monthly)\b`)
)

// stopwords rejects common words that the bare-symbol fallbacks would
// otherwise pick up as tickers.
var stopwords = map[string]struct{}{
	"THE": {}, "THIS": {}, "THAT": {}, "AND": {}, "FOR": {}, "WITH": {},
	"FROM": {}, "INTO": {}, "NOW": {}, "HERE": {}, "SOON": {}, "NEXT": {},
	"AT": {}, "IS": {}, "AN": {}, "TO": {}, "ON": {}, "OF": {}, "IN": {},
	"LONG": {}, "SHORT": {}, "BUY": {}, "SELL": {}, "ENTRY": {}, "LIMIT": {},
	"TP": {}, "SL": {}, "STOP": {}, "LOSS": {}, "TARGET": {}, "TAKE": {},
	"PROFIT": {}, "RISK": {}, "LOW": {}, "MEDIUM": {}, "HIGH": {},
	"MID": {}, "TERM": {}, "FRAME": {}, "PRICE": {}, "SAFE": {},
	"RISKY": {}, "DAILY": {}, "WEEKLY": {},
}
