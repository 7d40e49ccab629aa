// Package exitsim computes hypothetical per-founder payouts for exit
// valuations. It is pure: it reads the founder snapshot it is given, persists
// nothing, and uses equity percentages as-is even when they do not sum to 100
// (imbalance is the equity service's concern).
package exitsim

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/repository"
)

// ErrNegativeExit reports a negative exit valuation.
var ErrNegativeExit = fmt.Errorf("%w: exit amount must not be negative", repository.ErrInvalidArgument)

var hundred = decimal.NewFromInt(100)

// Payout is one founder's share of an exit valuation.
type Payout struct {
	FounderID        string
	Name             string
	EquityPercentage decimal.Decimal
	Payout           decimal.Decimal
	Color            string
}

// Simulate distributes exitAmount across founders by equity percentage,
// preserving input order. A zero exit yields zero payouts; an empty founder
// list yields an empty result.
func Simulate(exitAmount decimal.Decimal, founders []domain.Founder) ([]Payout, error) {
	if exitAmount.IsNegative() {
		return nil, ErrNegativeExit
	}
	payouts := make([]Payout, 0, len(founders))
	for _, f := range founders {
		payouts = append(payouts, Payout{
			FounderID:        f.ID,
			Name:             f.Name,
			EquityPercentage: f.EquityPercentage,
			Payout:           exitAmount.Mul(f.EquityPercentage).Div(hundred),
			Color:            f.Color,
		})
	}
	return payouts, nil
}

// ScenarioRow is one founder's payout at each requested exit amount, in the
// order the amounts were given.
type ScenarioRow struct {
	FounderID        string
	Name             string
	EquityPercentage decimal.Decimal
	Color            string
	Payouts          []decimal.Decimal
}

// CompareScenarios builds a founders-by-scenarios payout matrix.
func CompareScenarios(exitAmounts []decimal.Decimal, founders []domain.Founder) ([]ScenarioRow, error) {
	for _, amount := range exitAmounts {
		if amount.IsNegative() {
			return nil, ErrNegativeExit
		}
	}
	rows := make([]ScenarioRow, 0, len(founders))
	for _, f := range founders {
		row := ScenarioRow{
			FounderID:        f.ID,
			Name:             f.Name,
			EquityPercentage: f.EquityPercentage,
			Color:            f.Color,
			Payouts:          make([]decimal.Decimal, 0, len(exitAmounts)),
		}
		for _, amount := range exitAmounts {
			row.Payouts = append(row.Payouts, amount.Mul(f.EquityPercentage).Div(hundred))
		}
		rows = append(rows, row)
	}
	return rows, nil
}
