package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL. Every mutation
// that carries an audit entry is committed in a single transaction with it.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.WorkspaceRepository = (*Repository)(nil)
	_ repository.FounderRepository   = (*Repository)(nil)
	_ repository.LedgerRepository    = (*Repository)(nil)
	_ repository.AuditRepository     = (*Repository)(nil)
)

func (r *Repository) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const insertAuditQuery = `INSERT INTO audit_logs (id, workspace_id, user_id, action, entity_type, entity_id, old_data, new_data, reason, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func insertAudit(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error {
	_, err := tx.Exec(ctx, insertAuditQuery,
		entry.ID, entry.WorkspaceID, entry.UserID, string(entry.Action), entry.EntityType,
		entry.EntityID, entry.OldData, entry.NewData, entry.Reason, entry.CreatedAt)
	return err
}

// CreateWorkspace inserts a workspace together with its creation audit entry.
func (r *Repository) CreateWorkspace(ctx context.Context, workspace *domain.Workspace, audit *domain.AuditEntry) error {
	const query = `INSERT INTO workspaces (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, workspace.ID, workspace.Name, workspace.CreatedAt, workspace.UpdatedAt); err != nil {
			return err
		}
		return insertAudit(ctx, tx, audit)
	})
}

// GetWorkspaceByID fetches a workspace.
func (r *Repository) GetWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	const query = `SELECT id, name, created_at, updated_at FROM workspaces WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, workspaceID)
	var w domain.Workspace
	if err := row.Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// UpdateWorkspace renames a workspace alongside its audit entry.
func (r *Repository) UpdateWorkspace(ctx context.Context, workspace *domain.Workspace, audit *domain.AuditEntry) error {
	const query = `UPDATE workspaces SET name = $2, updated_at = $3 WHERE id = $1`
	return r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, workspace.ID, workspace.Name, workspace.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return insertAudit(ctx, tx, audit)
	})
}

// TeardownWorkspace deletes the workspace and all rows scoped to it. The
// audit-immutability trigger is disabled for teardown only at the session
// level via the app.teardown flag checked by the trigger function.
func (r *Repository) TeardownWorkspace(ctx context.Context, workspaceID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT set_config('app.teardown', 'on', true)`); err != nil {
			return err
		}
		statements := []string{
			`DELETE FROM audit_logs WHERE workspace_id = $1`,
			`DELETE FROM capital_contributions WHERE workspace_id = $1`,
			`DELETE FROM expenses WHERE workspace_id = $1`,
			`DELETE FROM revenue WHERE workspace_id = $1`,
			`DELETE FROM workspace_invites WHERE workspace_id = $1`,
			`DELETE FROM founders WHERE workspace_id = $1`,
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt, workspaceID); err != nil {
				return err
			}
		}
		tag, err := tx.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, workspaceID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

const insertFounderQuery = `INSERT INTO founders (id, workspace_id, name, email, role_title, equity_percentage, user_id, color, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// CreateFounder inserts a founder together with its audit entry.
func (r *Repository) CreateFounder(ctx context.Context, founder *domain.Founder, audit *domain.AuditEntry) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := execInsertFounder(ctx, tx, founder); err != nil {
			return err
		}
		return insertAudit(ctx, tx, audit)
	})
}

// CreateFounderWithInvite inserts a placeholder founder, its invite record and
// the invite audit entry in one transaction.
func (r *Repository) CreateFounderWithInvite(ctx context.Context, founder *domain.Founder, invite *domain.Invite, audit *domain.AuditEntry) error {
	const inviteQuery = `INSERT INTO workspace_invites (id, workspace_id, email, role, invited_by, expires_at, accepted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := execInsertFounder(ctx, tx, founder); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, inviteQuery, invite.ID, invite.WorkspaceID, invite.Email, invite.Role,
			invite.InvitedBy, invite.ExpiresAt, invite.AcceptedAt, invite.CreatedAt); err != nil {
			return err
		}
		return insertAudit(ctx, tx, audit)
	})
}

func execInsertFounder(ctx context.Context, tx pgx.Tx, founder *domain.Founder) error {
	_, err := tx.Exec(ctx, insertFounderQuery, founder.ID, founder.WorkspaceID, founder.Name, founder.Email,
		founder.RoleTitle, founder.EquityPercentage, founder.UserID, founder.Color, founder.CreatedAt, founder.UpdatedAt)
	return err
}

const founderColumns = `id, workspace_id, name, email, role_title, equity_percentage, user_id, color, created_at, updated_at`

func scanFounder(row pgx.Row) (*domain.Founder, error) {
	var f domain.Founder
	if err := row.Scan(&f.ID, &f.WorkspaceID, &f.Name, &f.Email, &f.RoleTitle, &f.EquityPercentage,
		&f.UserID, &f.Color, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFounderByID fetches a founder.
func (r *Repository) GetFounderByID(ctx context.Context, founderID string) (*domain.Founder, error) {
	query := `SELECT ` + founderColumns + ` FROM founders WHERE id = $1`
	founder, err := scanFounder(r.pool.QueryRow(ctx, query, founderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return founder, nil
}

// ListFoundersByWorkspace returns the workspace cap table, largest stake first.
func (r *Repository) ListFoundersByWorkspace(ctx context.Context, workspaceID string) ([]domain.Founder, error) {
	query := `SELECT ` + founderColumns + ` FROM founders WHERE workspace_id = $1 ORDER BY equity_percentage DESC, created_at ASC`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	founders := make([]domain.Founder, 0)
	for rows.Next() {
		founder, err := scanFounder(rows)
		if err != nil {
			return nil, err
		}
		founders = append(founders, *founder)
	}
	return founders, rows.Err()
}

// UpdateFounderEquity writes the new percentage and its equity_change audit
// entry atomically.
func (r *Repository) UpdateFounderEquity(ctx context.Context, founder *domain.Founder, audit *domain.AuditEntry) error {
	const query = `UPDATE founders SET equity_percentage = $2, updated_at = $3 WHERE id = $1`
	return r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, founder.ID, founder.EquityPercentage, founder.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return insertAudit(ctx, tx, audit)
	})
}

// ListInvitesByWorkspace returns pending and accepted invites.
func (r *Repository) ListInvitesByWorkspace(ctx context.Context, workspaceID string) ([]domain.Invite, error) {
	const query = `SELECT id, workspace_id, email, role, invited_by, expires_at, accepted_at, created_at
		FROM workspace_invites WHERE workspace_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := make([]domain.Invite, 0)
	for rows.Next() {
		var invite domain.Invite
		if err := rows.Scan(&invite.ID, &invite.WorkspaceID, &invite.Email, &invite.Role,
			&invite.InvitedBy, &invite.ExpiresAt, &invite.AcceptedAt, &invite.CreatedAt); err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

// CreateCapitalContribution appends a capital ledger entry with its audit entry.
func (r *Repository) CreateCapitalContribution(ctx context.Context, contribution *domain.CapitalContribution, audit *domain.AuditEntry) error {
	const query = `INSERT INTO capital_contributions (id, workspace_id, founder_id, amount, contribution_type, status, equity_impact, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, contribution.ID, contribution.WorkspaceID, contribution.FounderID,
			contribution.Amount, contribution.ContributionType, contribution.Status, contribution.EquityImpact,
			contribution.Notes, contribution.CreatedAt); err != nil {
			return err
		}
		return insertAudit(ctx, tx, audit)
	})
}

// ListCapitalContributions returns the capital ledger for a workspace.
func (r *Repository) ListCapitalContributions(ctx context.Context, workspaceID string) ([]domain.CapitalContribution, error) {
	const query = `SELECT id, workspace_id, founder_id, amount, contribution_type, status, equity_impact, notes, created_at
		FROM capital_contributions WHERE workspace_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.CapitalContribution, 0)
	for rows.Next() {
		var c domain.CapitalContribution
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.FounderID, &c.Amount, &c.ContributionType,
			&c.Status, &c.EquityImpact, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, c)
	}
	return entries, rows.Err()
}

// CreateExpense appends an expense ledger entry with its audit entry.
func (r *Repository) CreateExpense(ctx context.Context, expense *domain.Expense, audit *domain.AuditEntry) error {
	const query = `INSERT INTO expenses (id, workspace_id, owner_id, amount, category, expense_type, description, status, receipt_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, expense.ID, expense.WorkspaceID, expense.OwnerID, expense.Amount,
			expense.Category, expense.ExpenseType, expense.Description, expense.Status, expense.ReceiptURL,
			expense.CreatedAt); err != nil {
			return err
		}
		return insertAudit(ctx, tx, audit)
	})
}

// ListExpenses returns the expense ledger for a workspace.
func (r *Repository) ListExpenses(ctx context.Context, workspaceID string) ([]domain.Expense, error) {
	const query = `SELECT id, workspace_id, owner_id, amount, category, expense_type, description, status, receipt_url, created_at
		FROM expenses WHERE workspace_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.Expense, 0)
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.WorkspaceID, &e.OwnerID, &e.Amount, &e.Category, &e.ExpenseType,
			&e.Description, &e.Status, &e.ReceiptURL, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateRevenue appends a revenue ledger entry with its audit entry.
func (r *Repository) CreateRevenue(ctx context.Context, revenue *domain.Revenue, audit *domain.AuditEntry) error {
	const query = `INSERT INTO revenue (id, workspace_id, amount, source, revenue_type, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, revenue.ID, revenue.WorkspaceID, revenue.Amount, revenue.Source,
			revenue.RevenueType, revenue.Status, revenue.Notes, revenue.CreatedAt); err != nil {
			return err
		}
		return insertAudit(ctx, tx, audit)
	})
}

// ListRevenues returns the revenue ledger for a workspace.
func (r *Repository) ListRevenues(ctx context.Context, workspaceID string) ([]domain.Revenue, error) {
	const query = `SELECT id, workspace_id, amount, source, revenue_type, status, notes, created_at
		FROM revenue WHERE workspace_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.Revenue, 0)
	for rows.Next() {
		var v domain.Revenue
		if err := rows.Scan(&v.ID, &v.WorkspaceID, &v.Amount, &v.Source, &v.RevenueType, &v.Status,
			&v.Notes, &v.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, v)
	}
	return entries, rows.Err()
}

// InsertAuditEntry records a standalone audit entry outside of a paired
// mutation, for actions such as approvals that touch no other table.
func (r *Repository) InsertAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	_, err := r.pool.Exec(ctx, insertAuditQuery,
		entry.ID, entry.WorkspaceID, entry.UserID, string(entry.Action), entry.EntityType,
		entry.EntityID, entry.OldData, entry.NewData, entry.Reason, entry.CreatedAt)
	return err
}

// ListAuditEntries enumerates audit entries newest first, honoring filters.
func (r *Repository) ListAuditEntries(ctx context.Context, workspaceID string, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, workspace_id, user_id, action, entity_type, entity_id, old_data, new_data, reason, created_at
		FROM audit_logs WHERE workspace_id = $1`)
	args := []any{workspaceID}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		fmt.Fprintf(&sb, " AND entity_type = $%d", len(args))
	}
	if len(filter.Actions) > 0 {
		actions := make([]string, 0, len(filter.Actions))
		for _, action := range filter.Actions {
			actions = append(actions, string(action))
		}
		args = append(args, actions)
		fmt.Fprintf(&sb, " AND action = ANY($%d)", len(args))
	}
	sb.WriteString(" ORDER BY created_at DESC, id DESC")
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var (
			entry  domain.AuditEntry
			action string
		)
		if err := rows.Scan(&entry.ID, &entry.WorkspaceID, &entry.UserID, &action, &entry.EntityType,
			&entry.EntityID, &entry.OldData, &entry.NewData, &entry.Reason, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Action = domain.AuditAction(action)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
