package evaluate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"signaltracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Evaluate applies one price observation to a signal and returns the
// updated copy. Terminal signals are returned unchanged. Stop-loss is
// checked before targets and can never be overridden by a target crossed
// in the same tick.
func Evaluate(sig models.Signal, current decimal.Decimal, now time.Time) models.Signal {
	if sig.Terminal() {
		return sig
	}
	now = now.UTC()
	sig.EvaluatedAt = &now

	// Comparisons need a direction and an entry; without both the signal
	// can only lapse.
	if sig.Direction != nil && sig.Entry != nil {
		if sig.StopLoss != nil && stopFired(*sig.Direction, current, *sig.StopLoss) {
			return closeOut(sig, models.StatusHitStopLoss, nil, *sig.StopLoss, now)
		}
		if idx, target, ok := firstCrossedTarget(&sig, current); ok {
			return closeOut(sig, models.StatusHitTarget, &idx, target, now)
		}
	}

	if now.After(sig.ExpiresAt) {
		// Natural lapse: no exit price, no performance figure.
		sig.Status = models.StatusExpired
		sig.ClosedAt = &now
	}
	return sig
}

// ExpireOnly applies just the lapse check, for signals that cannot be
// priced (no symbol was extracted).
func ExpireOnly(sig models.Signal, now time.Time) models.Signal {
	if sig.Terminal() {
		return sig
	}
	now = now.UTC()
	sig.EvaluatedAt = &now
	if now.After(sig.ExpiresAt) {
		sig.Status = models.StatusExpired
		sig.ClosedAt = &now
	}
	return sig
}

func stopFired(direction string, current, stop decimal.Decimal) bool {
	if direction == models.DirectionShort {
		return current.GreaterThanOrEqual(stop)
	}
	return current.LessThanOrEqual(stop)
}

// firstCrossedTarget scans targets nearest-first: ascending price for
// LONG, descending for SHORT, ties broken by lower index.
func firstCrossedTarget(sig *models.Signal, current decimal.Decimal) (int, decimal.Decimal, bool) {
	targets := sig.TargetMap()
	if len(targets) == 0 {
		return 0, decimal.Decimal{}, false
	}
	short := *sig.Direction == models.DirectionShort

	type level struct {
		idx   int
		price decimal.Decimal
	}
	levels := make([]level, 0, len(targets))
	for idx, price := range targets {
		levels = append(levels, level{idx: idx, price: price})
	}
	sort.Slice(levels, func(i, j int) bool {
		cmp := levels[i].price.Cmp(levels[j].price)
		if cmp == 0 {
			return levels[i].idx < levels[j].idx
		}
		if short {
			return cmp > 0
		}
		return cmp < 0
	})

	for _, lvl := range levels {
		crossed := current.GreaterThanOrEqual(lvl.price)
		if short {
			crossed = current.LessThanOrEqual(lvl.price)
		}
		if crossed {
			return lvl.idx, lvl.price, true
		}
	}
	return 0, decimal.Decimal{}, false
}

func closeOut(sig models.Signal, status string, hitIdx *int, exit decimal.Decimal, now time.Time) models.Signal {
	sig.Status = status
	sig.HitTPIndex = hitIdx
	sig.ExitPrice = &exit
	sig.ClosedAt = &now
	if perf, ok := performance(*sig.Direction, *sig.Entry, exit); ok {
		sig.PerformancePct = &perf
	}
	return sig
}

// performance is the signed move from entry to exit, in percent of entry.
func performance(direction string, entry, exit decimal.Decimal) (decimal.Decimal, bool) {
	if entry.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, false
	}
	diff := exit.Sub(entry)
	if direction == models.DirectionShort {
		diff = entry.Sub(exit)
	}
	return diff.Div(entry).Mul(hundred), true
}
