package exitsim

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/repository"
)

func pct(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func twoFounders() []domain.Founder {
	return []domain.Founder{
		{ID: "f-1", Name: "Ada", EquityPercentage: pct(60), Color: "#4F46E5"},
		{ID: "f-2", Name: "Grace", EquityPercentage: pct(40), Color: "#10B981"},
	}
}

func TestSimulateDistributesByEquity(t *testing.T) {
	payouts, err := Simulate(decimal.NewFromInt(1_000_000), twoFounders())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payouts) != 2 {
		t.Fatalf("expected two payouts, got %d", len(payouts))
	}
	if !payouts[0].Payout.Equal(decimal.NewFromInt(600_000)) {
		t.Fatalf("expected 600000 for 60%%, got %s", payouts[0].Payout)
	}
	if !payouts[1].Payout.Equal(decimal.NewFromInt(400_000)) {
		t.Fatalf("expected 400000 for 40%%, got %s", payouts[1].Payout)
	}

	sum := payouts[0].Payout.Add(payouts[1].Payout)
	if !sum.Equal(decimal.NewFromInt(1_000_000)) {
		t.Fatalf("balanced cap table payouts must sum to exit amount, got %s", sum)
	}
}

func TestSimulateZeroExit(t *testing.T) {
	payouts, err := Simulate(decimal.Zero, twoFounders())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range payouts {
		if !p.Payout.IsZero() {
			t.Fatalf("expected zero payout, got %s", p.Payout)
		}
	}
}

func TestSimulateNegativeExit(t *testing.T) {
	_, err := Simulate(decimal.NewFromInt(-1), twoFounders())
	if !errors.Is(err, ErrNegativeExit) {
		t.Fatalf("expected ErrNegativeExit, got %v", err)
	}
	if !errors.Is(err, repository.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument wrapping, got %v", err)
	}
}

func TestSimulateEmptyFounders(t *testing.T) {
	payouts, err := Simulate(decimal.NewFromInt(500), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payouts) != 0 {
		t.Fatalf("expected empty result, got %d", len(payouts))
	}
}

func TestSimulateIsLinear(t *testing.T) {
	founders := twoFounders()
	base, err := Simulate(decimal.NewFromInt(1_000_000), founders)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doubled, err := Simulate(decimal.NewFromInt(2_000_000), founders)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range base {
		if !doubled[i].Payout.Equal(base[i].Payout.Mul(decimal.NewFromInt(2))) {
			t.Fatalf("payout not linear for founder %s", base[i].FounderID)
		}
	}
}

func TestSimulateUnbalancedCapTable(t *testing.T) {
	// 70% allocated: payouts follow the stored percentages as-is.
	founders := []domain.Founder{
		{ID: "f-1", EquityPercentage: pct(70)},
	}
	payouts, err := Simulate(decimal.NewFromInt(1000), founders)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payouts[0].Payout.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected 700, got %s", payouts[0].Payout)
	}
}

func TestCompareScenariosMatrix(t *testing.T) {
	amounts := []decimal.Decimal{decimal.NewFromInt(1_000_000), decimal.NewFromInt(10_000_000)}
	rows, err := CompareScenarios(amounts, twoFounders())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(rows))
	}
	expected := [][]int64{
		{600_000, 6_000_000},
		{400_000, 4_000_000},
	}
	for i, row := range rows {
		if len(row.Payouts) != len(amounts) {
			t.Fatalf("row %d: expected %d payouts, got %d", i, len(amounts), len(row.Payouts))
		}
		for j, want := range expected[i] {
			if !row.Payouts[j].Equal(decimal.NewFromInt(want)) {
				t.Fatalf("row %d scenario %d: expected %d, got %s", i, j, want, row.Payouts[j])
			}
		}
	}
}

func TestCompareScenariosRejectsNegativeAmount(t *testing.T) {
	amounts := []decimal.Decimal{decimal.NewFromInt(100), decimal.NewFromInt(-5)}
	if _, err := CompareScenarios(amounts, twoFounders()); !errors.Is(err, ErrNegativeExit) {
		t.Fatalf("expected ErrNegativeExit, got %v", err)
	}
}

func TestCompareScenariosEmptyFounders(t *testing.T) {
	rows, err := CompareScenarios([]decimal.Decimal{decimal.NewFromInt(100)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty matrix, got %d rows", len(rows))
	}
}
