package repository

import (
	"context"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
)

// Mutating methods that accept an *domain.AuditEntry must commit the entity
// mutation and its audit entry as one unit: either both are stored or neither
// is. An equity change with no audit trail is never acceptable.

// WorkspaceRepository persists workspaces.
type WorkspaceRepository interface {
	CreateWorkspace(ctx context.Context, workspace *domain.Workspace, audit *domain.AuditEntry) error
	GetWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error)
	UpdateWorkspace(ctx context.Context, workspace *domain.Workspace, audit *domain.AuditEntry) error
	// TeardownWorkspace removes the workspace and every row scoped to it,
	// including the audit trail. This is the only bulk delete path.
	TeardownWorkspace(ctx context.Context, workspaceID string) error
}

// FounderRepository persists founders and their equity percentages.
type FounderRepository interface {
	CreateFounder(ctx context.Context, founder *domain.Founder, audit *domain.AuditEntry) error
	CreateFounderWithInvite(ctx context.Context, founder *domain.Founder, invite *domain.Invite, audit *domain.AuditEntry) error
	GetFounderByID(ctx context.Context, founderID string) (*domain.Founder, error)
	ListFoundersByWorkspace(ctx context.Context, workspaceID string) ([]domain.Founder, error)
	UpdateFounderEquity(ctx context.Context, founder *domain.Founder, audit *domain.AuditEntry) error
	ListInvitesByWorkspace(ctx context.Context, workspaceID string) ([]domain.Invite, error)
}

// LedgerRepository appends and reads the three monetary ledgers. Individual
// entries are never updated or deleted once stored.
type LedgerRepository interface {
	CreateCapitalContribution(ctx context.Context, contribution *domain.CapitalContribution, audit *domain.AuditEntry) error
	ListCapitalContributions(ctx context.Context, workspaceID string) ([]domain.CapitalContribution, error)
	CreateExpense(ctx context.Context, expense *domain.Expense, audit *domain.AuditEntry) error
	ListExpenses(ctx context.Context, workspaceID string) ([]domain.Expense, error)
	CreateRevenue(ctx context.Context, revenue *domain.Revenue, audit *domain.AuditEntry) error
	ListRevenues(ctx context.Context, workspaceID string) ([]domain.Revenue, error)
}

// AuditFilter narrows audit listings.
type AuditFilter struct {
	EntityType string
	Actions    []domain.AuditAction
	Limit      int
	Offset     int
}

// AuditRepository stores the immutable audit trail.
type AuditRepository interface {
	InsertAuditEntry(ctx context.Context, entry *domain.AuditEntry) error
	ListAuditEntries(ctx context.Context, workspaceID string, filter AuditFilter) ([]domain.AuditEntry, error)
}
