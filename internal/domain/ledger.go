package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger entry statuses.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
)

// CapitalContribution records money a founder put into the company.
type CapitalContribution struct {
	ID               string
	WorkspaceID      string
	FounderID        string
	Amount           decimal.Decimal
	ContributionType string
	Status           string
	EquityImpact     bool
	Notes            string
	CreatedAt        time.Time
}

// Expense records money leaving the company.
type Expense struct {
	ID          string
	WorkspaceID string
	OwnerID     *string
	Amount      decimal.Decimal
	Category    string
	ExpenseType string
	Description string
	Status      string
	ReceiptURL  string
	CreatedAt   time.Time
}

// Revenue records money earned by the company.
type Revenue struct {
	ID          string
	WorkspaceID string
	Amount      decimal.Decimal
	Source      string
	RevenueType string
	Status      string
	Notes       string
	CreatedAt   time.Time
}
