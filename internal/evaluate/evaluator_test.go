package evaluate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"signaltracker/internal/models"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func strPtr(s string) *string { return &s }

func mkSignal(t *testing.T, direction string, entry string, targets map[int]decimal.Decimal, stop *decimal.Decimal) models.Signal {
	t.Helper()
	sig := models.Signal{
		Source:    "test",
		RawText:   "test",
		Symbol:    strPtr("BTC"),
		Direction: strPtr(direction),
		Entry:     decPtr(entry),
		StopLoss:  stop,
		RiskLevel: models.RiskMedium,
		Timeframe: models.TimeframeMid,
		Status:    models.StatusPending,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}
	if err := sig.SetTargets(targets); err != nil {
		t.Fatalf("set targets: %v", err)
	}
	return sig
}

func TestEvaluateTerminalIsNoOp(t *testing.T) {
	sig := mkSignal(t, models.DirectionLong, "80000", map[int]decimal.Decimal{1: dec("84000")}, nil)
	sig.Status = models.StatusHitTarget

	got := Evaluate(sig, dec("1"), time.Now().UTC())
	if got.Status != models.StatusHitTarget || got.EvaluatedAt != nil || got.ExitPrice != nil {
		t.Fatalf("terminal signal mutated: %+v", got)
	}
	again := Evaluate(got, dec("999999"), time.Now().UTC())
	if again.Status != got.Status {
		t.Fatalf("second evaluation changed status")
	}
}

func TestEvaluateLongNearestTargetWins(t *testing.T) {
	targets := map[int]decimal.Decimal{1: dec("84000"), 2: dec("86000"), 3: dec("88000")}
	sig := mkSignal(t, models.DirectionLong, "80000", targets, nil)

	got := Evaluate(sig, dec("85000"), time.Now().UTC())
	if got.Status != models.StatusHitTarget {
		t.Fatalf("status=%s want HIT_TARGET", got.Status)
	}
	if got.HitTPIndex == nil || *got.HitTPIndex != 1 {
		t.Fatalf("hit_tp_index=%v want 1", got.HitTPIndex)
	}
	if got.ExitPrice == nil || !got.ExitPrice.Equal(dec("84000")) {
		t.Fatalf("exit=%v want 84000", got.ExitPrice)
	}
	if got.PerformancePct == nil || !got.PerformancePct.Equal(dec("5")) {
		t.Fatalf("performance=%v want 5", got.PerformancePct)
	}
}

func TestEvaluateShortNearestTargetWins(t *testing.T) {
	targets := map[int]decimal.Decimal{1: dec("78000"), 2: dec("76000")}
	sig := mkSignal(t, models.DirectionShort, "80000", targets, nil)

	got := Evaluate(sig, dec("77000"), time.Now().UTC())
	if got.Status != models.StatusHitTarget {
		t.Fatalf("status=%s want HIT_TARGET", got.Status)
	}
	if got.HitTPIndex == nil || *got.HitTPIndex != 1 {
		t.Fatalf("hit_tp_index=%v want 1", got.HitTPIndex)
	}
	if got.ExitPrice == nil || !got.ExitPrice.Equal(dec("78000")) {
		t.Fatalf("exit=%v want 78000", got.ExitPrice)
	}
	if got.PerformancePct == nil || !got.PerformancePct.Equal(dec("2.5")) {
		t.Fatalf("performance=%v want 2.5", got.PerformancePct)
	}
}

func TestEvaluateStopPrecedesTargets(t *testing.T) {
	targets := map[int]decimal.Decimal{1: dec("84000")}
	sig := mkSignal(t, models.DirectionLong, "80000", targets, decPtr("79000"))

	got := Evaluate(sig, dec("78000"), time.Now().UTC())
	if got.Status != models.StatusHitStopLoss {
		t.Fatalf("status=%s want HIT_STOPLOSS", got.Status)
	}
	if got.HitTPIndex != nil {
		t.Fatalf("hit_tp_index=%v want nil", got.HitTPIndex)
	}
	if got.ExitPrice == nil || !got.ExitPrice.Equal(dec("79000")) {
		t.Fatalf("exit=%v want 79000", got.ExitPrice)
	}
	if got.PerformancePct == nil || !got.PerformancePct.IsNegative() {
		t.Fatalf("performance=%v want negative", got.PerformancePct)
	}
}

func TestEvaluateShortStop(t *testing.T) {
	sig := mkSignal(t, models.DirectionShort, "80000", nil, decPtr("81000"))

	got := Evaluate(sig, dec("81500"), time.Now().UTC())
	if got.Status != models.StatusHitStopLoss {
		t.Fatalf("status=%s want HIT_STOPLOSS", got.Status)
	}
	if got.PerformancePct == nil || !got.PerformancePct.IsNegative() {
		t.Fatalf("performance=%v want negative", got.PerformancePct)
	}
}

func TestEvaluateExpiration(t *testing.T) {
	sig := mkSignal(t, models.DirectionLong, "80000", map[int]decimal.Decimal{1: dec("84000")}, nil)
	sig.ExpiresAt = time.Now().UTC().Add(-time.Hour)

	got := Evaluate(sig, dec("81000"), time.Now().UTC())
	if got.Status != models.StatusExpired {
		t.Fatalf("status=%s want EXPIRED", got.Status)
	}
	if got.ExitPrice != nil || got.PerformancePct != nil {
		t.Fatalf("expiry must not carry exit price or performance: %+v", got)
	}
	if got.ClosedAt == nil {
		t.Fatalf("closed_at not set")
	}
}

func TestEvaluateTargetBeatsExpiry(t *testing.T) {
	// A target crossed on the same tick the signal lapses still counts.
	sig := mkSignal(t, models.DirectionLong, "80000", map[int]decimal.Decimal{1: dec("84000")}, nil)
	sig.ExpiresAt = time.Now().UTC().Add(-time.Hour)

	got := Evaluate(sig, dec("85000"), time.Now().UTC())
	if got.Status != models.StatusHitTarget {
		t.Fatalf("status=%s want HIT_TARGET", got.Status)
	}
}

func TestEvaluateUnsetDirectionOnlyExpires(t *testing.T) {
	sig := mkSignal(t, models.DirectionLong, "80000", map[int]decimal.Decimal{1: dec("84000")}, nil)
	sig.Direction = nil

	got := Evaluate(sig, dec("90000"), time.Now().UTC())
	if got.Status != models.StatusPending {
		t.Fatalf("status=%s want PENDING", got.Status)
	}

	sig.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	got = Evaluate(sig, dec("90000"), time.Now().UTC())
	if got.Status != models.StatusExpired {
		t.Fatalf("status=%s want EXPIRED", got.Status)
	}
}

func TestEvaluateTieBrokenByLowerIndex(t *testing.T) {
	targets := map[int]decimal.Decimal{2: dec("84000"), 1: dec("84000")}
	sig := mkSignal(t, models.DirectionLong, "80000", targets, nil)

	got := Evaluate(sig, dec("84000"), time.Now().UTC())
	if got.HitTPIndex == nil || *got.HitTPIndex != 1 {
		t.Fatalf("hit_tp_index=%v want 1", got.HitTPIndex)
	}
}

func TestExpireOnly(t *testing.T) {
	sig := mkSignal(t, models.DirectionLong, "80000", nil, decPtr("79000"))
	sig.Symbol = nil

	got := ExpireOnly(sig, time.Now().UTC())
	if got.Status != models.StatusPending {
		t.Fatalf("status=%s want PENDING", got.Status)
	}

	sig.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	got = ExpireOnly(sig, time.Now().UTC())
	if got.Status != models.StatusExpired {
		t.Fatalf("status=%s want EXPIRED", got.Status)
	}
}
