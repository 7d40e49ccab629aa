package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/repository"
)

// Service records and serves the immutable audit trail. Mutations paired with
// their entity writes go through BuildEntry plus the repository's transactional
// methods; Record is for standalone entries such as approvals.
type Service struct {
	repo   repository.AuditRepository
	logger *slog.Logger
}

// New constructs an audit service.
func New(repo repository.AuditRepository, logger *slog.Logger) Service {
	return Service{repo: repo, logger: logger}
}

// Event describes one mutation to record.
type Event struct {
	WorkspaceID string
	ActorID     *string
	Action      domain.AuditAction
	EntityType  string
	EntityID    *string
	OldData     any
	NewData     any
	Reason      *string
}

var (
	errWorkspaceIDRequired = fmt.Errorf("%w: workspace id required", repository.ErrInvalidArgument)
	errEntityTypeRequired  = fmt.Errorf("%w: entity type required", repository.ErrInvalidArgument)
	errActionRequired      = fmt.Errorf("%w: action required", repository.ErrInvalidArgument)
)

// BuildEntry converts an event into a storable audit entry, marshaling the
// old/new snapshots and assigning identifier and timestamp.
func BuildEntry(event Event, now time.Time) (*domain.AuditEntry, error) {
	if strings.TrimSpace(event.WorkspaceID) == "" {
		return nil, errWorkspaceIDRequired
	}
	if strings.TrimSpace(event.EntityType) == "" {
		return nil, errEntityTypeRequired
	}
	if event.Action == "" {
		return nil, errActionRequired
	}
	entry := &domain.AuditEntry{
		ID:          uuid.NewString(),
		WorkspaceID: event.WorkspaceID,
		UserID:      event.ActorID,
		Action:      event.Action,
		EntityType:  event.EntityType,
		EntityID:    event.EntityID,
		Reason:      event.Reason,
		CreatedAt:   now.UTC(),
	}
	if event.OldData != nil {
		data, err := json.Marshal(event.OldData)
		if err != nil {
			return nil, fmt.Errorf("marshal old data: %w", err)
		}
		entry.OldData = data
	}
	if event.NewData != nil {
		data, err := json.Marshal(event.NewData)
		if err != nil {
			return nil, fmt.Errorf("marshal new data: %w", err)
		}
		entry.NewData = data
	}
	return entry, nil
}

// Record stores a standalone audit entry and returns it.
func (s Service) Record(ctx context.Context, event Event) (*domain.AuditEntry, error) {
	entry, err := BuildEntry(event, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.InsertAuditEntry(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.Info("audit entry recorded", "workspace_id", entry.WorkspaceID, "action", entry.Action, "entity_type", entry.EntityType)
	return entry, nil
}

// List returns audit entries for a workspace, newest first.
func (s Service) List(ctx context.Context, workspaceID string, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return nil, errWorkspaceIDRequired
	}
	return s.repo.ListAuditEntries(ctx, workspaceID, filter)
}
