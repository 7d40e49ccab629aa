package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/repository"
	"github.com/prince-ramoliya/founder-harmony/internal/service/audit"
)

// Service manages workspace lifecycle. Teardown is the only operation that
// bulk-deletes ledger and audit rows.
type Service struct {
	repo   repository.WorkspaceRepository
	logger *slog.Logger
}

// New constructs a workspace service.
func New(repo repository.WorkspaceRepository, logger *slog.Logger) Service {
	return Service{repo: repo, logger: logger}
}

var (
	errNameRequired        = fmt.Errorf("%w: workspace name required", repository.ErrInvalidArgument)
	errWorkspaceIDRequired = fmt.Errorf("%w: workspace id required", repository.ErrInvalidArgument)
)

// Create registers a new workspace and its creation audit entry.
func (s Service) Create(ctx context.Context, name string, actorID *string) (*domain.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errNameRequired
	}
	now := time.Now().UTC()
	workspace := &domain.Workspace{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	entry, err := audit.BuildEntry(audit.Event{
		WorkspaceID: workspace.ID,
		ActorID:     actorID,
		Action:      domain.AuditActionCreate,
		EntityType:  "workspace",
		EntityID:    &workspace.ID,
		NewData:     map[string]any{"name": workspace.Name},
	}, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateWorkspace(ctx, workspace, entry); err != nil {
		return nil, err
	}
	s.logger.Info("workspace created", "workspace_id", workspace.ID, "name", workspace.Name)
	return workspace, nil
}

// Get returns workspace details.
func (s Service) Get(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return nil, errWorkspaceIDRequired
	}
	return s.repo.GetWorkspaceByID(ctx, workspaceID)
}

// Rename changes the workspace name; identity is immutable.
func (s Service) Rename(ctx context.Context, workspaceID, name string, actorID *string) (*domain.Workspace, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return nil, errWorkspaceIDRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errNameRequired
	}
	workspace, err := s.repo.GetWorkspaceByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	oldName := workspace.Name
	now := time.Now().UTC()
	workspace.Name = name
	workspace.UpdatedAt = now
	entry, err := audit.BuildEntry(audit.Event{
		WorkspaceID: workspaceID,
		ActorID:     actorID,
		Action:      domain.AuditActionUpdate,
		EntityType:  "workspace",
		EntityID:    &workspace.ID,
		OldData:     map[string]any{"name": oldName},
		NewData:     map[string]any{"name": name},
	}, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateWorkspace(ctx, workspace, entry); err != nil {
		return nil, err
	}
	s.logger.Info("workspace renamed", "workspace_id", workspaceID, "name", name)
	return workspace, nil
}

// Teardown permanently deletes the workspace and everything scoped to it.
func (s Service) Teardown(ctx context.Context, workspaceID string) error {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return errWorkspaceIDRequired
	}
	if err := s.repo.TeardownWorkspace(ctx, workspaceID); err != nil {
		return err
	}
	s.logger.Info("workspace torn down", "workspace_id", workspaceID)
	return nil
}
