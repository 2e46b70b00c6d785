package extract

import (
	"testing"

	"signaltracker/internal/models"
)

func newTestExtractor() *Extractor {
	x := &Extractor{}
	x.SetKnownSymbols([]string{"BTC", "ETH", "SOL"})
	return x
}

func TestExtractFallbackText(t *testing.T) {
	x := newTestExtractor()
	d := x.Extract("long eth at 2210, tp is 2500, high risk, long frame")

	if d.Symbol == nil || *d.Symbol != "ETH" {
		t.Fatalf("symbol=%v want ETH", d.Symbol)
	}
	if d.Direction == nil || *d.Direction != models.DirectionLong {
		t.Fatalf("direction=%v want LONG", d.Direction)
	}
	if d.Entry == nil || d.Entry.String() != "2210" {
		t.Fatalf("entry=%v want 2210", d.Entry)
	}
	if len(d.Targets) != 1 || d.Targets[1].String() != "2500" {
		t.Fatalf("targets=%v want {1:2500}", d.Targets)
	}
	if d.RiskLevel == nil || *d.RiskLevel != models.RiskHigh {
		t.Fatalf("risk=%v want HIGH", d.RiskLevel)
	}
	if d.Timeframe == nil || *d.Timeframe != models.TimeframeLong {
		t.Fatalf("timeframe=%v want LONG", d.Timeframe)
	}
}

func TestExtractDollarSymbolWins(t *testing.T) {
	x := newTestExtractor()
	d := x.Extract("short $SOL entry 150 sl 160")
	if d.Symbol == nil || *d.Symbol != "SOL" {
		t.Fatalf("symbol=%v want SOL", d.Symbol)
	}
	if d.Direction == nil || *d.Direction != models.DirectionShort {
		t.Fatalf("direction=%v want SHORT", d.Direction)
	}
	if d.StopLoss == nil || d.StopLoss.String() != "160" {
		t.Fatalf("stop=%v want 160", d.StopLoss)
	}
}

func TestExtractNumberedTargets(t *testing.T) {
	x := newTestExtractor()
	d := x.Extract("long btc at 80k tp1 84k tp2 86,000 target3: 88000 sl 79k")

	if len(d.Targets) != 3 {
		t.Fatalf("targets=%v want 3 entries", d.Targets)
	}
	if d.Targets[1].String() != "84000" || d.Targets[2].String() != "86000" || d.Targets[3].String() != "88000" {
		t.Fatalf("targets=%v", d.Targets)
	}
	if d.Entry == nil || d.Entry.String() != "80000" {
		t.Fatalf("entry=%v want 80000", d.Entry)
	}
	if d.StopLoss == nil || d.StopLoss.String() != "79000" {
		t.Fatalf("stop=%v want 79000", d.StopLoss)
	}
}

func TestExtractDuplicateIndexLastWins(t *testing.T) {
	x := newTestExtractor()
	d := x.Extract("long btc tp1 84000 tp1 85000")
	if len(d.Targets) != 1 || d.Targets[1].String() != "85000" {
		t.Fatalf("targets=%v want {1:85000}", d.Targets)
	}
}

func TestExtractSingleTargetSkippedAfterNumbered(t *testing.T) {
	x := newTestExtractor()
	d := x.Extract("long btc tp1 84000, final target 90000")
	// The unnumbered pass must not run once a numbered target matched.
	if len(d.Targets) != 1 || d.Targets[1].String() != "84000" {
		t.Fatalf("targets=%v want {1:84000}", d.Targets)
	}
}

func TestExtractUnnumberedTargetGetsIndexOne(t *testing.T) {
	x := newTestExtractor()
	d := x.Extract("buy btc, take profit 92k, then take profit 95k")
	// Only the first unnumbered mention is kept.
	if len(d.Targets) != 1 || d.Targets[1].String() != "92000" {
		t.Fatalf("targets=%v want {1:92000}", d.Targets)
	}
}

func TestDirectionIgnoresTimeframePhrases(t *testing.T) {
	x := newTestExtractor()
	d := x.Extract("btc looks good for the long term")
	if d.Direction != nil {
		t.Fatalf("direction=%v want unset", *d.Direction)
	}
	if d.Timeframe == nil || *d.Timeframe != models.TimeframeLong {
		t.Fatalf("timeframe=%v want LONG", d.Timeframe)
	}

	d = x.Extract("short btc at 80000, long frame")
	if d.Direction == nil || *d.Direction != models.DirectionShort {
		t.Fatalf("direction=%v want SHORT", d.Direction)
	}
	if d.Timeframe == nil || *d.Timeframe != models.TimeframeLong {
		t.Fatalf("timeframe=%v want LONG", d.Timeframe)
	}
}

func TestExtractRiskSynonyms(t *testing.T) {
	x := newTestExtractor()
	if d := x.Extract("long btc, safe play"); d.RiskLevel == nil || *d.RiskLevel != models.RiskLow {
		t.Fatalf("risk=%v want LOW", d.RiskLevel)
	}
	if d := x.Extract("long btc, risky entry"); d.RiskLevel == nil || *d.RiskLevel != models.RiskHigh {
		t.Fatalf("risk=%v want HIGH", d.RiskLevel)
	}
	if d := x.Extract("long btc at 50000"); d.RiskLevel != nil {
		t.Fatalf("risk=%v want unset", *d.RiskLevel)
	}
}

func TestExtractBadNumberLeavesFieldUnset(t *testing.T) {
	x := newTestExtractor()
	d := x.Extract("long eth at 2210 sl nowhere")
	if d.Entry == nil || d.Entry.String() != "2210" {
		t.Fatalf("entry=%v want 2210", d.Entry)
	}
	if d.StopLoss != nil {
		t.Fatalf("stop=%v want unset", d.StopLoss)
	}
}

func TestExtractEmptyText(t *testing.T) {
	x := newTestExtractor()
	d := x.Extract("   ")
	if d.Symbol != nil || d.Direction != nil || d.Entry != nil || len(d.Targets) != 0 {
		t.Fatalf("draft=%+v want empty", d)
	}
}

func TestExtractUnknownSymbolStaysUnset(t *testing.T) {
	x := newTestExtractor()
	d := x.Extract("market looks choppy today, risk is high")
	if d.Symbol != nil {
		t.Fatalf("symbol=%v want unset", *d.Symbol)
	}
	if d.RiskLevel == nil || *d.RiskLevel != models.RiskHigh {
		t.Fatalf("risk=%v want HIGH", d.RiskLevel)
	}
}
