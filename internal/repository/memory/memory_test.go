package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/repository"
)

func seedWorkspace(t *testing.T, repo *Repository, id string) {
	t.Helper()
	err := repo.CreateWorkspace(context.Background(), &domain.Workspace{ID: id, Name: "acme"}, &domain.AuditEntry{
		ID:          id + "-audit",
		WorkspaceID: id,
		Action:      domain.AuditActionCreate,
		EntityType:  "workspace",
	})
	if err != nil {
		t.Fatalf("seed workspace: %v", err)
	}
}

func TestMutationsPairWithAuditEntries(t *testing.T) {
	repo := New()
	ctx := context.Background()
	seedWorkspace(t, repo, "ws-1")

	founder := &domain.Founder{ID: "f-1", WorkspaceID: "ws-1", Name: "Ada", EquityPercentage: decimal.NewFromInt(100)}
	if err := repo.CreateFounder(ctx, founder, &domain.AuditEntry{ID: "a-2", WorkspaceID: "ws-1", Action: domain.AuditActionCreate, EntityType: "founder"}); err != nil {
		t.Fatalf("create founder: %v", err)
	}
	contribution := &domain.CapitalContribution{ID: "c-1", WorkspaceID: "ws-1", FounderID: "f-1", Amount: decimal.NewFromInt(1000)}
	if err := repo.CreateCapitalContribution(ctx, contribution, &domain.AuditEntry{ID: "a-3", WorkspaceID: "ws-1", Action: domain.AuditActionCreate, EntityType: "capital_contribution"}); err != nil {
		t.Fatalf("create contribution: %v", err)
	}

	entries, err := repo.ListAuditEntries(ctx, "ws-1", repository.AuditFilter{})
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected three audit entries, got %d", len(entries))
	}
}

func TestAuditEntriesAreImmutableToCallers(t *testing.T) {
	repo := New()
	ctx := context.Background()

	original := []byte(`{"equity_percentage":"60"}`)
	entry := &domain.AuditEntry{
		ID:          "a-1",
		WorkspaceID: "ws-1",
		Action:      domain.AuditActionEquityChange,
		EntityType:  "founder",
		NewData:     append([]byte(nil), original...),
		CreatedAt:   time.Now(),
	}
	if err := repo.InsertAuditEntry(ctx, entry); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Mutating the caller's entry after insert must not change history.
	entry.NewData[len(entry.NewData)-2] = '0'

	first, err := repo.ListAuditEntries(ctx, "ws-1", repository.AuditFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !bytes.Equal(first[0].NewData, original) {
		t.Fatalf("stored snapshot changed: %s", first[0].NewData)
	}

	// Mutating a listed entry must not change the next read either.
	first[0].NewData[0] = 'X'
	second, err := repo.ListAuditEntries(ctx, "ws-1", repository.AuditFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !bytes.Equal(second[0].NewData, original) {
		t.Fatalf("stored snapshot changed via read copy: %s", second[0].NewData)
	}
}

func TestListAuditEntriesFiltersAndPaginates(t *testing.T) {
	repo := New()
	ctx := context.Background()
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	actions := []domain.AuditAction{
		domain.AuditActionCreate,
		domain.AuditActionEquityChange,
		domain.AuditActionCreate,
		domain.AuditActionInvite,
	}
	types := []string{"founder", "founder", "expense", "workspace_invite"}
	for i := range actions {
		err := repo.InsertAuditEntry(ctx, &domain.AuditEntry{
			ID:          string(rune('a' + i)),
			WorkspaceID: "ws-1",
			Action:      actions[i],
			EntityType:  types[i],
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	byType, err := repo.ListAuditEntries(ctx, "ws-1", repository.AuditFilter{EntityType: "founder"})
	if err != nil {
		t.Fatalf("list by type: %v", err)
	}
	if len(byType) != 2 {
		t.Fatalf("expected two founder entries, got %d", len(byType))
	}

	byAction, err := repo.ListAuditEntries(ctx, "ws-1", repository.AuditFilter{Actions: []domain.AuditAction{domain.AuditActionEquityChange, domain.AuditActionInvite}})
	if err != nil {
		t.Fatalf("list by action: %v", err)
	}
	if len(byAction) != 2 {
		t.Fatalf("expected two entries, got %d", len(byAction))
	}
	// Newest first.
	if byAction[0].Action != domain.AuditActionInvite {
		t.Fatalf("expected invite first, got %s", byAction[0].Action)
	}

	paged, err := repo.ListAuditEntries(ctx, "ws-1", repository.AuditFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("list paged: %v", err)
	}
	if len(paged) != 2 {
		t.Fatalf("expected page of two, got %d", len(paged))
	}
	if paged[0].EntityType != "expense" {
		t.Fatalf("unexpected page start: %s", paged[0].EntityType)
	}

	past, err := repo.ListAuditEntries(ctx, "ws-1", repository.AuditFilter{Offset: 10})
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if len(past) != 0 {
		t.Fatalf("expected empty page, got %d", len(past))
	}
}

func TestListFoundersOrdersByStake(t *testing.T) {
	repo := New()
	ctx := context.Background()
	base := time.Now()

	founders := []*domain.Founder{
		{ID: "f-1", WorkspaceID: "ws-1", Name: "Ada", EquityPercentage: decimal.NewFromInt(40), CreatedAt: base},
		{ID: "f-2", WorkspaceID: "ws-1", Name: "Grace", EquityPercentage: decimal.NewFromInt(60), CreatedAt: base.Add(time.Minute)},
		{ID: "f-3", WorkspaceID: "ws-other", Name: "Edsger", EquityPercentage: decimal.NewFromInt(100), CreatedAt: base},
	}
	for _, f := range founders {
		if err := repo.CreateFounder(ctx, f, &domain.AuditEntry{ID: f.ID + "-a", WorkspaceID: f.WorkspaceID, Action: domain.AuditActionCreate, EntityType: "founder"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	listed, err := repo.ListFoundersByWorkspace(ctx, "ws-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected two founders, got %d", len(listed))
	}
	if listed[0].ID != "f-2" || listed[1].ID != "f-1" {
		t.Fatalf("unexpected order: %s %s", listed[0].ID, listed[1].ID)
	}
}

func TestTeardownRemovesEverything(t *testing.T) {
	repo := New()
	ctx := context.Background()
	seedWorkspace(t, repo, "ws-1")
	seedWorkspace(t, repo, "ws-2")

	founder := &domain.Founder{ID: "f-1", WorkspaceID: "ws-1", Name: "Ada", EquityPercentage: decimal.NewFromInt(100)}
	if err := repo.CreateFounder(ctx, founder, &domain.AuditEntry{ID: "a-f", WorkspaceID: "ws-1", Action: domain.AuditActionCreate, EntityType: "founder"}); err != nil {
		t.Fatalf("create founder: %v", err)
	}
	revenue := &domain.Revenue{ID: "r-1", WorkspaceID: "ws-1", Amount: decimal.NewFromInt(100), Source: "sales"}
	if err := repo.CreateRevenue(ctx, revenue, &domain.AuditEntry{ID: "a-r", WorkspaceID: "ws-1", Action: domain.AuditActionCreate, EntityType: "revenue"}); err != nil {
		t.Fatalf("create revenue: %v", err)
	}

	if err := repo.TeardownWorkspace(ctx, "ws-1"); err != nil {
		t.Fatalf("teardown: %v", err)
	}

	if _, err := repo.GetWorkspaceByID(ctx, "ws-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected workspace removed, got %v", err)
	}
	if _, err := repo.GetFounderByID(ctx, "f-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected founder removed, got %v", err)
	}
	entries, err := repo.ListAuditEntries(ctx, "ws-1", repository.AuditFilter{})
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected audit trail removed, got %d entries", len(entries))
	}

	// Other workspaces are untouched.
	if _, err := repo.GetWorkspaceByID(ctx, "ws-2"); err != nil {
		t.Fatalf("unrelated workspace affected: %v", err)
	}

	if err := repo.TeardownWorkspace(ctx, "ws-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found on repeat teardown, got %v", err)
	}
}
