package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"log/slog"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/repository"
)

type auditRepoStub struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
}

func (s *auditRepoStub) InsertAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *auditRepoStub) ListAuditEntries(ctx context.Context, workspaceID string, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AuditEntry
	for _, entry := range s.entries {
		if entry.WorkspaceID == workspaceID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func TestBuildEntryValidation(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name  string
		event Event
	}{
		{"missing workspace", Event{Action: domain.AuditActionCreate, EntityType: "founder"}},
		{"missing entity type", Event{WorkspaceID: "ws-1", Action: domain.AuditActionCreate}},
		{"missing action", Event{WorkspaceID: "ws-1", EntityType: "founder"}},
	}
	for _, tc := range cases {
		if _, err := BuildEntry(tc.event, now); !errors.Is(err, repository.ErrInvalidArgument) {
			t.Fatalf("%s: expected invalid argument, got %v", tc.name, err)
		}
	}
}

func TestBuildEntryMarshalsSnapshots(t *testing.T) {
	now := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	entityID := "f-1"
	entry, err := BuildEntry(Event{
		WorkspaceID: "ws-1",
		Action:      domain.AuditActionUpdate,
		EntityType:  "founder",
		EntityID:    &entityID,
		OldData:     map[string]any{"name": "Ada"},
		NewData:     map[string]any{"name": "Ada Lovelace"},
	}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !entry.CreatedAt.Equal(now) || entry.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", entry.CreatedAt)
	}
	var oldData map[string]string
	if err := json.Unmarshal(entry.OldData, &oldData); err != nil {
		t.Fatalf("unmarshal old data: %v", err)
	}
	if oldData["name"] != "Ada" {
		t.Fatalf("unexpected old data: %v", oldData)
	}
}

func TestBuildEntryOmitsAbsentSnapshots(t *testing.T) {
	entry, err := BuildEntry(Event{
		WorkspaceID: "ws-1",
		Action:      domain.AuditActionDelete,
		EntityType:  "expense",
	}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.OldData != nil || entry.NewData != nil {
		t.Fatalf("expected nil snapshots, got old=%s new=%s", entry.OldData, entry.NewData)
	}
}

func TestRecordStoresEntry(t *testing.T) {
	repo := &auditRepoStub{}
	svc := New(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	actor := "user-1"
	entry, err := svc.Record(context.Background(), Event{
		WorkspaceID: "ws-1",
		ActorID:     &actor,
		Action:      domain.AuditActionApproval,
		EntityType:  "expense",
		NewData:     map[string]any{"status": "confirmed"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected one stored entry, got %d", len(repo.entries))
	}
	if repo.entries[0] != entry {
		t.Fatalf("stored entry differs from returned entry")
	}
	if entry.UserID == nil || *entry.UserID != actor {
		t.Fatalf("expected actor recorded, got %v", entry.UserID)
	}
}
