package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/repository"
)

// Repository is an in-memory implementation of the persistence interfaces,
// used by tests and local runs without a database. Audit entries are stored
// and returned as deep copies so callers can never mutate recorded history.
type Repository struct {
	mu         sync.Mutex
	workspaces map[string]domain.Workspace
	founders   map[string]domain.Founder
	invites    map[string][]domain.Invite
	capital    map[string][]domain.CapitalContribution
	expenses   map[string][]domain.Expense
	revenues   map[string][]domain.Revenue
	audits     map[string][]domain.AuditEntry
}

// New returns an empty Repository.
func New() *Repository {
	return &Repository{
		workspaces: make(map[string]domain.Workspace),
		founders:   make(map[string]domain.Founder),
		invites:    make(map[string][]domain.Invite),
		capital:    make(map[string][]domain.CapitalContribution),
		expenses:   make(map[string][]domain.Expense),
		revenues:   make(map[string][]domain.Revenue),
		audits:     make(map[string][]domain.AuditEntry),
	}
}

var (
	_ repository.WorkspaceRepository = (*Repository)(nil)
	_ repository.FounderRepository   = (*Repository)(nil)
	_ repository.LedgerRepository    = (*Repository)(nil)
	_ repository.AuditRepository     = (*Repository)(nil)
)

func copyAudit(entry domain.AuditEntry) domain.AuditEntry {
	copied := entry
	copied.OldData = append([]byte(nil), entry.OldData...)
	copied.NewData = append([]byte(nil), entry.NewData...)
	if entry.OldData == nil {
		copied.OldData = nil
	}
	if entry.NewData == nil {
		copied.NewData = nil
	}
	return copied
}

func (r *Repository) appendAudit(entry *domain.AuditEntry) {
	if entry == nil {
		return
	}
	r.audits[entry.WorkspaceID] = append(r.audits[entry.WorkspaceID], copyAudit(*entry))
}

// CreateWorkspace stores a workspace and its creation audit entry.
func (r *Repository) CreateWorkspace(ctx context.Context, workspace *domain.Workspace, audit *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces[workspace.ID] = *workspace
	r.appendAudit(audit)
	return nil
}

// GetWorkspaceByID fetches a workspace.
func (r *Repository) GetWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	workspace, ok := r.workspaces[workspaceID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &workspace, nil
}

// UpdateWorkspace renames a workspace alongside its audit entry.
func (r *Repository) UpdateWorkspace(ctx context.Context, workspace *domain.Workspace, audit *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workspaces[workspace.ID]; !ok {
		return repository.ErrNotFound
	}
	r.workspaces[workspace.ID] = *workspace
	r.appendAudit(audit)
	return nil
}

// TeardownWorkspace removes the workspace and every row scoped to it.
func (r *Repository) TeardownWorkspace(ctx context.Context, workspaceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workspaces[workspaceID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.workspaces, workspaceID)
	delete(r.invites, workspaceID)
	delete(r.capital, workspaceID)
	delete(r.expenses, workspaceID)
	delete(r.revenues, workspaceID)
	delete(r.audits, workspaceID)
	for id, founder := range r.founders {
		if founder.WorkspaceID == workspaceID {
			delete(r.founders, id)
		}
	}
	return nil
}

// CreateFounder stores a founder and its audit entry.
func (r *Repository) CreateFounder(ctx context.Context, founder *domain.Founder, audit *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.founders[founder.ID] = *founder
	r.appendAudit(audit)
	return nil
}

// CreateFounderWithInvite stores a placeholder founder, invite and audit entry.
func (r *Repository) CreateFounderWithInvite(ctx context.Context, founder *domain.Founder, invite *domain.Invite, audit *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.founders[founder.ID] = *founder
	r.invites[invite.WorkspaceID] = append(r.invites[invite.WorkspaceID], *invite)
	r.appendAudit(audit)
	return nil
}

// GetFounderByID fetches a founder.
func (r *Repository) GetFounderByID(ctx context.Context, founderID string) (*domain.Founder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	founder, ok := r.founders[founderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &founder, nil
}

// ListFoundersByWorkspace returns the cap table, largest stake first.
func (r *Repository) ListFoundersByWorkspace(ctx context.Context, workspaceID string) ([]domain.Founder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	founders := make([]domain.Founder, 0)
	for _, founder := range r.founders {
		if founder.WorkspaceID == workspaceID {
			founders = append(founders, founder)
		}
	}
	sort.Slice(founders, func(i, j int) bool {
		if !founders[i].EquityPercentage.Equal(founders[j].EquityPercentage) {
			return founders[i].EquityPercentage.GreaterThan(founders[j].EquityPercentage)
		}
		return founders[i].CreatedAt.Before(founders[j].CreatedAt)
	})
	return founders, nil
}

// UpdateFounderEquity writes the new percentage and its audit entry together.
func (r *Repository) UpdateFounderEquity(ctx context.Context, founder *domain.Founder, audit *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.founders[founder.ID]; !ok {
		return repository.ErrNotFound
	}
	r.founders[founder.ID] = *founder
	r.appendAudit(audit)
	return nil
}

// ListInvitesByWorkspace returns invites newest first.
func (r *Repository) ListInvitesByWorkspace(ctx context.Context, workspaceID string) ([]domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invites := append([]domain.Invite(nil), r.invites[workspaceID]...)
	sort.Slice(invites, func(i, j int) bool { return invites[i].CreatedAt.After(invites[j].CreatedAt) })
	return invites, nil
}

// CreateCapitalContribution appends a capital entry with its audit entry.
func (r *Repository) CreateCapitalContribution(ctx context.Context, contribution *domain.CapitalContribution, audit *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capital[contribution.WorkspaceID] = append(r.capital[contribution.WorkspaceID], *contribution)
	r.appendAudit(audit)
	return nil
}

// ListCapitalContributions returns the capital ledger.
func (r *Repository) ListCapitalContributions(ctx context.Context, workspaceID string) ([]domain.CapitalContribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.CapitalContribution(nil), r.capital[workspaceID]...), nil
}

// CreateExpense appends an expense entry with its audit entry.
func (r *Repository) CreateExpense(ctx context.Context, expense *domain.Expense, audit *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses[expense.WorkspaceID] = append(r.expenses[expense.WorkspaceID], *expense)
	r.appendAudit(audit)
	return nil
}

// ListExpenses returns the expense ledger.
func (r *Repository) ListExpenses(ctx context.Context, workspaceID string) ([]domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Expense(nil), r.expenses[workspaceID]...), nil
}

// CreateRevenue appends a revenue entry with its audit entry.
func (r *Repository) CreateRevenue(ctx context.Context, revenue *domain.Revenue, audit *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revenues[revenue.WorkspaceID] = append(r.revenues[revenue.WorkspaceID], *revenue)
	r.appendAudit(audit)
	return nil
}

// ListRevenues returns the revenue ledger.
func (r *Repository) ListRevenues(ctx context.Context, workspaceID string) ([]domain.Revenue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Revenue(nil), r.revenues[workspaceID]...), nil
}

// InsertAuditEntry records a standalone audit entry.
func (r *Repository) InsertAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendAudit(entry)
	return nil
}

// ListAuditEntries enumerates audit entries newest first, honoring filters.
// Every returned entry is a copy; stored snapshots are never exposed.
func (r *Repository) ListAuditEntries(ctx context.Context, workspaceID string, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]domain.AuditEntry, 0)
	for _, entry := range r.audits[workspaceID] {
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		if len(filter.Actions) > 0 && !containsAction(filter.Actions, entry.Action) {
			continue
		}
		matched = append(matched, copyAudit(entry))
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	offset := filter.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func containsAction(actions []domain.AuditAction, action domain.AuditAction) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
