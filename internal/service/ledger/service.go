package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/events"
	"github.com/prince-ramoliya/founder-harmony/internal/repository"
	"github.com/prince-ramoliya/founder-harmony/internal/service/audit"
)

// Service exposes append and read access to the three monetary ledgers.
// Entries are append-only: there is no update or delete path outside of
// workspace teardown. Every append is committed together with its audit entry.
type Service struct {
	repo      repository.LedgerRepository
	publisher events.Publisher
	logger    *slog.Logger
}

// New constructs a ledger service.
func New(repo repository.LedgerRepository, publisher events.Publisher, logger *slog.Logger) Service {
	return Service{repo: repo, publisher: publisher, logger: logger}
}

var (
	errWorkspaceIDRequired = fmt.Errorf("%w: workspace id required", repository.ErrInvalidArgument)
	errFounderIDRequired   = fmt.Errorf("%w: founder id required", repository.ErrInvalidArgument)
	errAmountNotPositive   = fmt.Errorf("%w: amount must be positive", repository.ErrInvalidArgument)
	errCategoryRequired    = fmt.Errorf("%w: category required", repository.ErrInvalidArgument)
	errDescriptionRequired = fmt.Errorf("%w: description required", repository.ErrInvalidArgument)
	errSourceRequired      = fmt.Errorf("%w: source required", repository.ErrInvalidArgument)
	errUnknownStatus       = fmt.Errorf("%w: status must be confirmed or pending", repository.ErrInvalidArgument)
)

func normalizeStatus(status string) (string, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "":
		return domain.StatusConfirmed, nil
	case domain.StatusConfirmed, domain.StatusPending:
		return status, nil
	default:
		return "", errUnknownStatus
	}
}

func validateAmount(amount decimal.Decimal) error {
	if amount.Cmp(decimal.Zero) <= 0 {
		return errAmountNotPositive
	}
	return nil
}

// CapitalInput captures a capital contribution to append.
type CapitalInput struct {
	WorkspaceID      string
	FounderID        string
	Amount           decimal.Decimal
	ContributionType string
	Status           string
	EquityImpact     bool
	Notes            string
	ActorID          *string
}

// AppendCapital validates and stores a capital contribution.
func (s Service) AppendCapital(ctx context.Context, input CapitalInput) (*domain.CapitalContribution, error) {
	if strings.TrimSpace(input.WorkspaceID) == "" {
		return nil, errWorkspaceIDRequired
	}
	if strings.TrimSpace(input.FounderID) == "" {
		return nil, errFounderIDRequired
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return nil, err
	}
	contributionType := strings.ToLower(strings.TrimSpace(input.ContributionType))
	if contributionType == "" {
		contributionType = "cash"
	}
	now := time.Now().UTC()
	contribution := &domain.CapitalContribution{
		ID:               uuid.NewString(),
		WorkspaceID:      input.WorkspaceID,
		FounderID:        input.FounderID,
		Amount:           input.Amount,
		ContributionType: contributionType,
		Status:           status,
		EquityImpact:     input.EquityImpact,
		Notes:            strings.TrimSpace(input.Notes),
		CreatedAt:        now,
	}
	entry, err := audit.BuildEntry(audit.Event{
		WorkspaceID: input.WorkspaceID,
		ActorID:     input.ActorID,
		Action:      domain.AuditActionCreate,
		EntityType:  "capital_contribution",
		EntityID:    &contribution.ID,
		NewData: map[string]any{
			"amount":            contribution.Amount,
			"contribution_type": contribution.ContributionType,
			"founder_id":        contribution.FounderID,
			"status":            contribution.Status,
		},
	}, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateCapitalContribution(ctx, contribution, entry); err != nil {
		return nil, err
	}
	s.logger.Info("capital contribution appended", "workspace_id", contribution.WorkspaceID, "founder_id", contribution.FounderID)
	s.notify(ctx, contribution.WorkspaceID, "capital_contribution", contribution.ID, now)
	return contribution, nil
}

// ExpenseInput captures an expense to append.
type ExpenseInput struct {
	WorkspaceID string
	OwnerID     *string
	Amount      decimal.Decimal
	Category    string
	ExpenseType string
	Description string
	Status      string
	ReceiptURL  string
	ActorID     *string
}

// AppendExpense validates and stores an expense.
func (s Service) AppendExpense(ctx context.Context, input ExpenseInput) (*domain.Expense, error) {
	if strings.TrimSpace(input.WorkspaceID) == "" {
		return nil, errWorkspaceIDRequired
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, errCategoryRequired
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, errDescriptionRequired
	}
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return nil, err
	}
	expenseType := strings.ToLower(strings.TrimSpace(input.ExpenseType))
	if expenseType == "" {
		expenseType = "one_time"
	}
	now := time.Now().UTC()
	expense := &domain.Expense{
		ID:          uuid.NewString(),
		WorkspaceID: input.WorkspaceID,
		OwnerID:     input.OwnerID,
		Amount:      input.Amount,
		Category:    strings.TrimSpace(input.Category),
		ExpenseType: expenseType,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		ReceiptURL:  strings.TrimSpace(input.ReceiptURL),
		CreatedAt:   now,
	}
	entry, err := audit.BuildEntry(audit.Event{
		WorkspaceID: input.WorkspaceID,
		ActorID:     input.ActorID,
		Action:      domain.AuditActionCreate,
		EntityType:  "expense",
		EntityID:    &expense.ID,
		NewData: map[string]any{
			"amount":      expense.Amount,
			"category":    expense.Category,
			"description": expense.Description,
			"status":      expense.Status,
		},
	}, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateExpense(ctx, expense, entry); err != nil {
		return nil, err
	}
	s.logger.Info("expense appended", "workspace_id", expense.WorkspaceID, "category", expense.Category)
	s.notify(ctx, expense.WorkspaceID, "expense", expense.ID, now)
	return expense, nil
}

// RevenueInput captures a revenue event to append.
type RevenueInput struct {
	WorkspaceID string
	Amount      decimal.Decimal
	Source      string
	RevenueType string
	Status      string
	Notes       string
	ActorID     *string
}

// AppendRevenue validates and stores a revenue event.
func (s Service) AppendRevenue(ctx context.Context, input RevenueInput) (*domain.Revenue, error) {
	if strings.TrimSpace(input.WorkspaceID) == "" {
		return nil, errWorkspaceIDRequired
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Source) == "" {
		return nil, errSourceRequired
	}
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return nil, err
	}
	revenueType := strings.ToLower(strings.TrimSpace(input.RevenueType))
	if revenueType == "" {
		revenueType = "one_time"
	}
	now := time.Now().UTC()
	revenue := &domain.Revenue{
		ID:          uuid.NewString(),
		WorkspaceID: input.WorkspaceID,
		Amount:      input.Amount,
		Source:      strings.TrimSpace(input.Source),
		RevenueType: revenueType,
		Status:      status,
		Notes:       strings.TrimSpace(input.Notes),
		CreatedAt:   now,
	}
	entry, err := audit.BuildEntry(audit.Event{
		WorkspaceID: input.WorkspaceID,
		ActorID:     input.ActorID,
		Action:      domain.AuditActionCreate,
		EntityType:  "revenue",
		EntityID:    &revenue.ID,
		NewData: map[string]any{
			"amount":       revenue.Amount,
			"source":       revenue.Source,
			"revenue_type": revenue.RevenueType,
			"status":       revenue.Status,
		},
	}, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateRevenue(ctx, revenue, entry); err != nil {
		return nil, err
	}
	s.logger.Info("revenue appended", "workspace_id", revenue.WorkspaceID, "source", revenue.Source)
	s.notify(ctx, revenue.WorkspaceID, "revenue", revenue.ID, now)
	return revenue, nil
}

// ListCapital returns the capital ledger for a workspace.
func (s Service) ListCapital(ctx context.Context, workspaceID string) ([]domain.CapitalContribution, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return nil, errWorkspaceIDRequired
	}
	return s.repo.ListCapitalContributions(ctx, workspaceID)
}

// ListExpenses returns the expense ledger for a workspace.
func (s Service) ListExpenses(ctx context.Context, workspaceID string) ([]domain.Expense, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return nil, errWorkspaceIDRequired
	}
	return s.repo.ListExpenses(ctx, workspaceID)
}

// ListRevenues returns the revenue ledger for a workspace.
func (s Service) ListRevenues(ctx context.Context, workspaceID string) ([]domain.Revenue, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return nil, errWorkspaceIDRequired
	}
	return s.repo.ListRevenues(ctx, workspaceID)
}

func (s Service) notify(ctx context.Context, workspaceID, entityType, entityID string, occurredAt time.Time) {
	if s.publisher == nil {
		return
	}
	mutation := events.Mutation{
		WorkspaceID: workspaceID,
		EntityType:  entityType,
		Action:      string(domain.AuditActionCreate),
		EntityID:    entityID,
		OccurredAt:  occurredAt,
	}
	if err := s.publisher.Publish(ctx, mutation); err != nil {
		s.logger.Warn("mutation publish failed", "workspace_id", workspaceID, "entity_type", entityType, "error", err)
	}
}
