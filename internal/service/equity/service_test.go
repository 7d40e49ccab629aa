package equity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/events"
	"github.com/prince-ramoliya/founder-harmony/internal/repository"
	"github.com/prince-ramoliya/founder-harmony/pkg/config"
)

type founderRepoStub struct {
	mu       sync.Mutex
	founders map[string]*domain.Founder
	invites  []*domain.Invite
	audits   []*domain.AuditEntry
}

func newFounderRepoStub() *founderRepoStub {
	return &founderRepoStub{founders: make(map[string]*domain.Founder)}
}

func (s *founderRepoStub) CreateFounder(ctx context.Context, founder *domain.Founder, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *founder
	s.founders[founder.ID] = &copied
	s.audits = append(s.audits, entry)
	return nil
}

func (s *founderRepoStub) CreateFounderWithInvite(ctx context.Context, founder *domain.Founder, invite *domain.Invite, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *founder
	s.founders[founder.ID] = &copied
	s.invites = append(s.invites, invite)
	s.audits = append(s.audits, entry)
	return nil
}

func (s *founderRepoStub) GetFounderByID(ctx context.Context, founderID string) (*domain.Founder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	founder, ok := s.founders[founderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *founder
	return &copied, nil
}

func (s *founderRepoStub) ListFoundersByWorkspace(ctx context.Context, workspaceID string) ([]domain.Founder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Founder
	for _, founder := range s.founders {
		if founder.WorkspaceID == workspaceID {
			out = append(out, *founder)
		}
	}
	return out, nil
}

func (s *founderRepoStub) UpdateFounderEquity(ctx context.Context, founder *domain.Founder, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.founders[founder.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.EquityPercentage = founder.EquityPercentage
	stored.UpdatedAt = founder.UpdatedAt
	s.audits = append(s.audits, entry)
	return nil
}

func (s *founderRepoStub) ListInvitesByWorkspace(ctx context.Context, workspaceID string) ([]domain.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Invite
	for _, invite := range s.invites {
		if invite.WorkspaceID == workspaceID {
			out = append(out, *invite)
		}
	}
	return out, nil
}

type publisherStub struct {
	mu        sync.Mutex
	mutations []events.Mutation
}

func (p *publisherStub) Publish(ctx context.Context, mutation events.Mutation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mutations = append(p.mutations, mutation)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo *founderRepoStub) *Service {
	return New(repo, &publisherStub{}, testLogger(), config.APIConfig{})
}

func TestCreateInitialFounderStartsAtFullEquity(t *testing.T) {
	repo := newFounderRepoStub()
	svc := newTestService(repo)

	founder, err := svc.CreateInitialFounder(context.Background(), "ws-1", nil, FounderProfile{Name: "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !founder.EquityPercentage.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100%% equity, got %s", founder.EquityPercentage)
	}
	if founder.Color != "#4F46E5" {
		t.Fatalf("unexpected default color: %s", founder.Color)
	}
	if len(repo.audits) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(repo.audits))
	}
	entry := repo.audits[0]
	if entry.Action != domain.AuditActionCreate || entry.EntityType != "founder" {
		t.Fatalf("unexpected audit entry: %s %s", entry.Action, entry.EntityType)
	}
}

func TestChangeEquityRejectsOutOfRange(t *testing.T) {
	repo := newFounderRepoStub()
	svc := newTestService(repo)

	for _, pct := range []decimal.Decimal{decimal.NewFromInt(-1), decimal.NewFromInt(101)} {
		_, err := svc.ChangeEquity(context.Background(), ChangeEquityInput{
			WorkspaceID:   "ws-1",
			FounderID:     "f-1",
			NewPercentage: pct,
		})
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange for %s, got %v", pct, err)
		}
		if !errors.Is(err, repository.ErrInvalidArgument) {
			t.Fatalf("expected invalid argument wrapping for %s, got %v", pct, err)
		}
	}
	if len(repo.audits) != 0 {
		t.Fatalf("rejected changes must not record audit entries, got %d", len(repo.audits))
	}
}

func TestChangeEquityRecordsSnapshots(t *testing.T) {
	repo := newFounderRepoStub()
	svc := newTestService(repo)

	founder, err := svc.CreateInitialFounder(context.Background(), "ws-1", nil, FounderProfile{Name: "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reason := "co-founder joined"
	updated, err := svc.ChangeEquity(context.Background(), ChangeEquityInput{
		WorkspaceID:   "ws-1",
		FounderID:     founder.ID,
		NewPercentage: decimal.NewFromInt(60),
		Reason:        &reason,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.EquityPercentage.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected 60%%, got %s", updated.EquityPercentage)
	}

	if len(repo.audits) != 2 {
		t.Fatalf("expected two audit entries, got %d", len(repo.audits))
	}
	entry := repo.audits[1]
	if entry.Action != domain.AuditActionEquityChange {
		t.Fatalf("unexpected audit action: %s", entry.Action)
	}
	if entry.Reason == nil || *entry.Reason != reason {
		t.Fatalf("expected reason %q, got %v", reason, entry.Reason)
	}
	var oldSnap, newSnap struct {
		EquityPercentage decimal.Decimal `json:"equity_percentage"`
	}
	if err := json.Unmarshal(entry.OldData, &oldSnap); err != nil {
		t.Fatalf("unmarshal old snapshot: %v", err)
	}
	if err := json.Unmarshal(entry.NewData, &newSnap); err != nil {
		t.Fatalf("unmarshal new snapshot: %v", err)
	}
	if !oldSnap.EquityPercentage.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected old snapshot 100, got %s", oldSnap.EquityPercentage)
	}
	if !newSnap.EquityPercentage.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected new snapshot 60, got %s", newSnap.EquityPercentage)
	}
}

func TestChangeEquitySerializesSameFounder(t *testing.T) {
	repo := newFounderRepoStub()
	svc := newTestService(repo)

	founder, err := svc.CreateInitialFounder(context.Background(), "ws-1", nil, FounderProfile{Name: "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(pct int64) {
			defer wg.Done()
			_, err := svc.ChangeEquity(context.Background(), ChangeEquityInput{
				WorkspaceID:   "ws-1",
				FounderID:     founder.ID,
				NewPercentage: decimal.NewFromInt(pct),
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	var changes []*domain.AuditEntry
	for _, entry := range repo.audits {
		if entry.Action == domain.AuditActionEquityChange {
			changes = append(changes, entry)
		}
	}
	if len(changes) != workers {
		t.Fatalf("expected %d equity_change entries, got %d", workers, len(changes))
	}

	// Every old snapshot must be a value some call actually committed. With
	// the changes serialized, old values are the initial 100 plus every new
	// value except the one still stored on the founder: duplicate olds mean
	// two calls read the same state and one update was lost.
	snapshot := func(raw json.RawMessage) string {
		var snap struct {
			EquityPercentage decimal.Decimal `json:"equity_percentage"`
		}
		if err := json.Unmarshal(raw, &snap); err != nil {
			t.Fatalf("unmarshal snapshot: %v", err)
		}
		return snap.EquityPercentage.String()
	}
	stored, err := repo.GetFounderByID(context.Background(), founder.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]int{"100": 1}
	for _, entry := range changes {
		want[snapshot(entry.NewData)]++
	}
	want[stored.EquityPercentage.String()]--
	got := map[string]int{}
	for _, entry := range changes {
		got[snapshot(entry.OldData)]++
	}
	for value, count := range want {
		if count == 0 {
			delete(want, value)
		}
	}
	for value, count := range got {
		if want[value] != count {
			t.Fatalf("old snapshot %s seen %d times, want %d", value, count, want[value])
		}
	}
	if len(got) != len(want) {
		t.Fatalf("old snapshots %v do not match committed values %v", got, want)
	}
}

func TestChangeEquityWorkspaceMismatch(t *testing.T) {
	repo := newFounderRepoStub()
	svc := newTestService(repo)

	founder, err := svc.CreateInitialFounder(context.Background(), "ws-1", nil, FounderProfile{Name: "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.ChangeEquity(context.Background(), ChangeEquityInput{
		WorkspaceID:   "ws-other",
		FounderID:     founder.ID,
		NewPercentage: decimal.NewFromInt(50),
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for workspace mismatch, got %v", err)
	}
}

func TestInviteFounderCreatesPlaceholderAtZero(t *testing.T) {
	repo := newFounderRepoStub()
	svc := newTestService(repo)

	if _, err := svc.CreateInitialFounder(context.Background(), "ws-1", nil, FounderProfile{Name: "Ada"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	founder, invite, err := svc.InviteFounder(context.Background(), InviteInput{
		WorkspaceID: "ws-1",
		Email:       "grace@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !founder.EquityPercentage.IsZero() {
		t.Fatalf("placeholder founder must start at zero equity, got %s", founder.EquityPercentage)
	}
	if founder.Name != "grace" {
		t.Fatalf("expected name derived from email local part, got %q", founder.Name)
	}
	if founder.Color != invitePalette[1] {
		t.Fatalf("expected second palette color %s, got %s", invitePalette[1], founder.Color)
	}
	if invite.Role != "member" {
		t.Fatalf("expected default role member, got %q", invite.Role)
	}
	if !invite.ExpiresAt.After(invite.CreatedAt) {
		t.Fatalf("invite must expire after creation")
	}
	last := repo.audits[len(repo.audits)-1]
	if last.Action != domain.AuditActionInvite || last.EntityType != "workspace_invite" {
		t.Fatalf("unexpected audit entry: %s %s", last.Action, last.EntityType)
	}
}

func TestInviteFounderRejectsBadEmail(t *testing.T) {
	repo := newFounderRepoStub()
	svc := newTestService(repo)

	for _, email := range []string{"", "not-an-email"} {
		_, _, err := svc.InviteFounder(context.Background(), InviteInput{WorkspaceID: "ws-1", Email: email})
		if !errors.Is(err, repository.ErrInvalidArgument) {
			t.Fatalf("expected invalid argument for %q, got %v", email, err)
		}
	}
}

func TestTotalAllocatedAndBalance(t *testing.T) {
	repo := newFounderRepoStub()
	svc := newTestService(repo)
	ctx := context.Background()

	founder, err := svc.CreateInitialFounder(ctx, "ws-1", nil, FounderProfile{Name: "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invited, _, err := svc.InviteFounder(ctx, InviteInput{WorkspaceID: "ws-1", Email: "grace@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 100 + 0: still balanced.
	imbalance, err := svc.CheckBalance(ctx, "ws-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !imbalance.Balanced {
		t.Fatalf("expected balanced cap table, got delta %s", imbalance.Delta)
	}

	if _, err := svc.ChangeEquity(ctx, ChangeEquityInput{WorkspaceID: "ws-1", FounderID: founder.ID, NewPercentage: decimal.NewFromInt(60)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 60 + 0: imbalance is reported, never corrected.
	imbalance, err = svc.CheckBalance(ctx, "ws-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imbalance.Balanced {
		t.Fatalf("expected imbalance after partial reallocation")
	}
	if !imbalance.TotalAllocated.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected total 60, got %s", imbalance.TotalAllocated)
	}
	if !imbalance.Delta.Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("expected delta -40, got %s", imbalance.Delta)
	}

	if _, err := svc.ChangeEquity(ctx, ChangeEquityInput{WorkspaceID: "ws-1", FounderID: invited.ID, NewPercentage: decimal.NewFromInt(40)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total, err := svc.TotalAllocated(ctx, "ws-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected total 100, got %s", total)
	}
}

func TestChangeEquityPublishesMutation(t *testing.T) {
	repo := newFounderRepoStub()
	pub := &publisherStub{}
	svc := New(repo, pub, testLogger(), config.APIConfig{InviteTTL: time.Hour})

	founder, err := svc.CreateInitialFounder(context.Background(), "ws-1", nil, FounderProfile{Name: "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ChangeEquity(context.Background(), ChangeEquityInput{WorkspaceID: "ws-1", FounderID: founder.ID, NewPercentage: decimal.NewFromInt(75)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.mutations) != 2 {
		t.Fatalf("expected two mutations, got %d", len(pub.mutations))
	}
	last := pub.mutations[1]
	if last.WorkspaceID != "ws-1" || last.Action != string(domain.AuditActionEquityChange) {
		t.Fatalf("unexpected mutation: %+v", last)
	}
}
