// Package report derives dashboard figures from ledger snapshots. All
// functions are pure: they never mutate their inputs and the time anchor for
// windowed series is passed in by the caller.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
)

// DefaultMonthsBack is the trailing window used by the dashboard cash-flow chart.
const DefaultMonthsBack = 6

// CashFlowPoint is one calendar-month bucket of inflow and outflow.
type CashFlowPoint struct {
	Month   time.Time
	Label   string
	Inflow  decimal.Decimal
	Outflow decimal.Decimal
}

// MonthlyCashFlow buckets ledger events by calendar month over a trailing
// window of monthsBack months ending at now, earliest first. Inflow is capital
// plus revenue, outflow is expenses. Months without events are zero-filled.
// Buckets are formed in now's location; event timestamps are converted into it
// before truncation.
func MonthlyCashFlow(capital []domain.CapitalContribution, revenue []domain.Revenue, expenses []domain.Expense, monthsBack int, now time.Time) []CashFlowPoint {
	if monthsBack <= 0 {
		monthsBack = DefaultMonthsBack
	}
	loc := now.Location()
	points := make([]CashFlowPoint, monthsBack)
	index := make(map[string]int, monthsBack)
	for i := 0; i < monthsBack; i++ {
		month := monthStart(now, loc).AddDate(0, i-(monthsBack-1), 0)
		points[i] = CashFlowPoint{
			Month:   month,
			Label:   month.Format("Jan"),
			Inflow:  decimal.Zero,
			Outflow: decimal.Zero,
		}
		index[monthKey(month)] = i
	}
	for _, c := range capital {
		if i, ok := index[monthKey(monthStart(c.CreatedAt, loc))]; ok {
			points[i].Inflow = points[i].Inflow.Add(c.Amount)
		}
	}
	for _, r := range revenue {
		if i, ok := index[monthKey(monthStart(r.CreatedAt, loc))]; ok {
			points[i].Inflow = points[i].Inflow.Add(r.Amount)
		}
	}
	for _, e := range expenses {
		if i, ok := index[monthKey(monthStart(e.CreatedAt, loc))]; ok {
			points[i].Outflow = points[i].Outflow.Add(e.Amount)
		}
	}
	return points
}

func monthStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

func monthKey(month time.Time) string {
	return month.Format("2006-01")
}

// FounderTotal is one founder's summed capital contributions with display
// metadata attached.
type FounderTotal struct {
	FounderID string
	Name      string
	Color     string
	Total     decimal.Decimal
}

// PerFounderTotals sums capital contributions per founder, preserving the
// founder table's order. Founders with no contributions are omitted.
func PerFounderTotals(contributions []domain.CapitalContribution, founders []domain.Founder) []FounderTotal {
	sums := make(map[string]decimal.Decimal, len(founders))
	for _, c := range contributions {
		sums[c.FounderID] = sums[c.FounderID].Add(c.Amount)
	}
	totals := make([]FounderTotal, 0, len(founders))
	for _, f := range founders {
		total, ok := sums[f.ID]
		if !ok || total.IsZero() {
			continue
		}
		totals = append(totals, FounderTotal{
			FounderID: f.ID,
			Name:      f.Name,
			Color:     f.Color,
			Total:     total,
		})
	}
	return totals
}

// Summary bundles the dashboard headline figures.
type Summary struct {
	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	TotalCapital  decimal.Decimal
	Balance       decimal.Decimal
}

// DashboardSummary computes balance = revenue + capital - expenses along with
// the raw totals. No rounding is applied beyond the amounts' own precision.
func DashboardSummary(revenue []domain.Revenue, expenses []domain.Expense, capital []domain.CapitalContribution) Summary {
	var s Summary
	s.TotalRevenue = decimal.Zero
	s.TotalExpenses = decimal.Zero
	s.TotalCapital = decimal.Zero
	for _, r := range revenue {
		s.TotalRevenue = s.TotalRevenue.Add(r.Amount)
	}
	for _, e := range expenses {
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
	}
	for _, c := range capital {
		s.TotalCapital = s.TotalCapital.Add(c.Amount)
	}
	s.Balance = s.TotalRevenue.Add(s.TotalCapital).Sub(s.TotalExpenses)
	return s
}
