package httpx

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/service/equity"
	"github.com/prince-ramoliya/founder-harmony/internal/service/exitsim"
	"github.com/prince-ramoliya/founder-harmony/internal/service/report"
)

// JSON views keep wire shapes independent of the domain structs.

type workspaceView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func viewWorkspace(w *domain.Workspace) workspaceView {
	return workspaceView{ID: w.ID, Name: w.Name, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt}
}

type founderView struct {
	ID               string          `json:"id"`
	WorkspaceID      string          `json:"workspace_id"`
	Name             string          `json:"name"`
	Email            *string         `json:"email,omitempty"`
	RoleTitle        string          `json:"role_title,omitempty"`
	EquityPercentage decimal.Decimal `json:"equity_percentage"`
	UserID           *string         `json:"user_id,omitempty"`
	Color            string          `json:"color"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func viewFounder(f *domain.Founder) founderView {
	return founderView{
		ID:               f.ID,
		WorkspaceID:      f.WorkspaceID,
		Name:             f.Name,
		Email:            f.Email,
		RoleTitle:        f.RoleTitle,
		EquityPercentage: f.EquityPercentage,
		UserID:           f.UserID,
		Color:            f.Color,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

func viewFounders(founders []domain.Founder) []founderView {
	views := make([]founderView, 0, len(founders))
	for i := range founders {
		views = append(views, viewFounder(&founders[i]))
	}
	return views
}

type inviteView struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspace_id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	InvitedBy   *string    `json:"invited_by,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func viewInvite(inv *domain.Invite) inviteView {
	return inviteView{
		ID:          inv.ID,
		WorkspaceID: inv.WorkspaceID,
		Email:       inv.Email,
		Role:        inv.Role,
		InvitedBy:   inv.InvitedBy,
		ExpiresAt:   inv.ExpiresAt,
		AcceptedAt:  inv.AcceptedAt,
		CreatedAt:   inv.CreatedAt,
	}
}

func viewInvites(invites []domain.Invite) []inviteView {
	views := make([]inviteView, 0, len(invites))
	for i := range invites {
		views = append(views, viewInvite(&invites[i]))
	}
	return views
}

type capitalView struct {
	ID               string          `json:"id"`
	WorkspaceID      string          `json:"workspace_id"`
	FounderID        string          `json:"founder_id"`
	Amount           decimal.Decimal `json:"amount"`
	ContributionType string          `json:"contribution_type"`
	Status           string          `json:"status"`
	EquityImpact     bool            `json:"equity_impact"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

func viewCapital(c *domain.CapitalContribution) capitalView {
	return capitalView{
		ID:               c.ID,
		WorkspaceID:      c.WorkspaceID,
		FounderID:        c.FounderID,
		Amount:           c.Amount,
		ContributionType: c.ContributionType,
		Status:           c.Status,
		EquityImpact:     c.EquityImpact,
		Notes:            c.Notes,
		CreatedAt:        c.CreatedAt,
	}
}

func viewCapitalList(contributions []domain.CapitalContribution) []capitalView {
	views := make([]capitalView, 0, len(contributions))
	for i := range contributions {
		views = append(views, viewCapital(&contributions[i]))
	}
	return views
}

type expenseView struct {
	ID          string          `json:"id"`
	WorkspaceID string          `json:"workspace_id"`
	OwnerID     *string         `json:"owner_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	ExpenseType string          `json:"expense_type"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	ReceiptURL  string          `json:"receipt_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func viewExpense(e *domain.Expense) expenseView {
	return expenseView{
		ID:          e.ID,
		WorkspaceID: e.WorkspaceID,
		OwnerID:     e.OwnerID,
		Amount:      e.Amount,
		Category:    e.Category,
		ExpenseType: e.ExpenseType,
		Description: e.Description,
		Status:      e.Status,
		ReceiptURL:  e.ReceiptURL,
		CreatedAt:   e.CreatedAt,
	}
}

func viewExpenseList(expenses []domain.Expense) []expenseView {
	views := make([]expenseView, 0, len(expenses))
	for i := range expenses {
		views = append(views, viewExpense(&expenses[i]))
	}
	return views
}

type revenueView struct {
	ID          string          `json:"id"`
	WorkspaceID string          `json:"workspace_id"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	RevenueType string          `json:"revenue_type"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func viewRevenue(r *domain.Revenue) revenueView {
	return revenueView{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		Amount:      r.Amount,
		Source:      r.Source,
		RevenueType: r.RevenueType,
		Status:      r.Status,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
	}
}

func viewRevenueList(revenues []domain.Revenue) []revenueView {
	views := make([]revenueView, 0, len(revenues))
	for i := range revenues {
		views = append(views, viewRevenue(&revenues[i]))
	}
	return views
}

type auditView struct {
	ID          string          `json:"id"`
	WorkspaceID string          `json:"workspace_id"`
	UserID      *string         `json:"user_id,omitempty"`
	Action      string          `json:"action"`
	EntityType  string          `json:"entity_type"`
	EntityID    *string         `json:"entity_id,omitempty"`
	OldData     json.RawMessage `json:"old_data,omitempty"`
	NewData     json.RawMessage `json:"new_data,omitempty"`
	Reason      *string         `json:"reason,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func viewAuditEntries(entries []domain.AuditEntry) []auditView {
	views := make([]auditView, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		views = append(views, auditView{
			ID:          e.ID,
			WorkspaceID: e.WorkspaceID,
			UserID:      e.UserID,
			Action:      string(e.Action),
			EntityType:  e.EntityType,
			EntityID:    e.EntityID,
			OldData:     json.RawMessage(e.OldData),
			NewData:     json.RawMessage(e.NewData),
			Reason:      e.Reason,
			CreatedAt:   e.CreatedAt,
		})
	}
	return views
}

type imbalanceView struct {
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	Delta          decimal.Decimal `json:"delta"`
	Balanced       bool            `json:"balanced"`
}

func viewImbalance(im equity.Imbalance) imbalanceView {
	return imbalanceView{TotalAllocated: im.TotalAllocated, Delta: im.Delta, Balanced: im.Balanced}
}

type cashFlowView struct {
	Month   string          `json:"month"`
	Label   string          `json:"label"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
}

func viewCashFlow(points []report.CashFlowPoint) []cashFlowView {
	views := make([]cashFlowView, 0, len(points))
	for _, p := range points {
		views = append(views, cashFlowView{
			Month:   p.Month.Format("2006-01"),
			Label:   p.Label,
			Inflow:  p.Inflow,
			Outflow: p.Outflow,
		})
	}
	return views
}

type founderTotalView struct {
	FounderID string          `json:"founder_id"`
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Total     decimal.Decimal `json:"total"`
}

func viewFounderTotals(totals []report.FounderTotal) []founderTotalView {
	views := make([]founderTotalView, 0, len(totals))
	for _, t := range totals {
		views = append(views, founderTotalView{FounderID: t.FounderID, Name: t.Name, Color: t.Color, Total: t.Total})
	}
	return views
}

type summaryView struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	TotalCapital  decimal.Decimal `json:"total_capital"`
	Balance       decimal.Decimal `json:"balance"`
}

func viewSummary(s report.Summary) summaryView {
	return summaryView{
		TotalRevenue:  s.TotalRevenue,
		TotalExpenses: s.TotalExpenses,
		TotalCapital:  s.TotalCapital,
		Balance:       s.Balance,
	}
}

type payoutView struct {
	FounderID        string          `json:"founder_id"`
	Name             string          `json:"name"`
	EquityPercentage decimal.Decimal `json:"equity_percentage"`
	Payout           decimal.Decimal `json:"payout"`
	Color            string          `json:"color"`
}

func viewPayouts(payouts []exitsim.Payout) []payoutView {
	views := make([]payoutView, 0, len(payouts))
	for _, p := range payouts {
		views = append(views, payoutView{
			FounderID:        p.FounderID,
			Name:             p.Name,
			EquityPercentage: p.EquityPercentage,
			Payout:           p.Payout,
			Color:            p.Color,
		})
	}
	return views
}

type scenarioRowView struct {
	FounderID        string            `json:"founder_id"`
	Name             string            `json:"name"`
	EquityPercentage decimal.Decimal   `json:"equity_percentage"`
	Color            string            `json:"color"`
	Payouts          []decimal.Decimal `json:"payouts"`
}

func viewScenarioRows(rows []exitsim.ScenarioRow) []scenarioRowView {
	views := make([]scenarioRowView, 0, len(rows))
	for _, row := range rows {
		views = append(views, scenarioRowView{
			FounderID:        row.FounderID,
			Name:             row.Name,
			EquityPercentage: row.EquityPercentage,
			Color:            row.Color,
			Payouts:          row.Payouts,
		})
	}
	return views
}
