package equity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/events"
	"github.com/prince-ramoliya/founder-harmony/internal/repository"
	"github.com/prince-ramoliya/founder-harmony/internal/service/audit"
	"github.com/prince-ramoliya/founder-harmony/pkg/config"
)

// Service is the only sanctioned path for changing a founder's equity
// percentage. Every change reads the current value, applies the new one and
// commits an equity_change audit entry in the same transaction. Calls for the
// same founder serialize on a per-founder lock; calls for different founders
// are independent.
type Service struct {
	founders  repository.FounderRepository
	publisher events.Publisher
	logger    *slog.Logger
	inviteTTL time.Duration

	muMap map[string]*sync.Mutex
	mapMu sync.Mutex
}

// New constructs an equity service.
func New(founders repository.FounderRepository, publisher events.Publisher, logger *slog.Logger, cfg config.APIConfig) *Service {
	ttl := cfg.InviteTTL
	if ttl <= 0 {
		ttl = defaultInviteTTL
	}
	return &Service{
		founders:  founders,
		publisher: publisher,
		logger:    logger,
		inviteTTL: ttl,
		muMap:     make(map[string]*sync.Mutex),
	}
}

// ErrOutOfRange reports an equity percentage outside [0, 100].
var ErrOutOfRange = fmt.Errorf("%w: equity percentage must be between 0 and 100", repository.ErrInvalidArgument)

var (
	errWorkspaceIDRequired = fmt.Errorf("%w: workspace id required", repository.ErrInvalidArgument)
	errFounderIDRequired   = fmt.Errorf("%w: founder id required", repository.ErrInvalidArgument)
	errNameRequired        = fmt.Errorf("%w: name required", repository.ErrInvalidArgument)
	errEmailRequired       = fmt.Errorf("%w: email required", repository.ErrInvalidArgument)
)

var hundred = decimal.NewFromInt(100)

// invitePalette colors placeholder founders in creation order.
var invitePalette = []string{"#10B981", "#F59E0B", "#EF4444", "#8B5CF6"}

const defaultInviteTTL = 7 * 24 * time.Hour

// equitySnapshot is the audit old/new payload for equity changes.
type equitySnapshot struct {
	EquityPercentage decimal.Decimal `json:"equity_percentage"`
}

func (s *Service) founderLock(founderID string) *sync.Mutex {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()
	if _, exists := s.muMap[founderID]; !exists {
		s.muMap[founderID] = &sync.Mutex{}
	}
	return s.muMap[founderID]
}

// ChangeEquityInput captures one equity adjustment.
type ChangeEquityInput struct {
	WorkspaceID   string
	FounderID     string
	NewPercentage decimal.Decimal
	Reason        *string
	ActorID       *string
}

// ChangeEquity applies a new percentage to a founder. It does not enforce that
// the workspace sum stays at 100; callers surface imbalance via CheckBalance.
func (s *Service) ChangeEquity(ctx context.Context, input ChangeEquityInput) (*domain.Founder, error) {
	if strings.TrimSpace(input.WorkspaceID) == "" {
		return nil, errWorkspaceIDRequired
	}
	if strings.TrimSpace(input.FounderID) == "" {
		return nil, errFounderIDRequired
	}
	if input.NewPercentage.IsNegative() || input.NewPercentage.GreaterThan(hundred) {
		return nil, ErrOutOfRange
	}

	lock := s.founderLock(input.FounderID)
	lock.Lock()
	defer lock.Unlock()

	founder, err := s.founders.GetFounderByID(ctx, input.FounderID)
	if err != nil {
		return nil, err
	}
	if founder.WorkspaceID != input.WorkspaceID {
		return nil, repository.ErrNotFound
	}

	oldPercentage := founder.EquityPercentage
	now := time.Now().UTC()
	founder.EquityPercentage = input.NewPercentage
	founder.UpdatedAt = now

	entry, err := audit.BuildEntry(audit.Event{
		WorkspaceID: input.WorkspaceID,
		ActorID:     input.ActorID,
		Action:      domain.AuditActionEquityChange,
		EntityType:  "founder",
		EntityID:    &founder.ID,
		OldData:     equitySnapshot{EquityPercentage: oldPercentage},
		NewData:     equitySnapshot{EquityPercentage: input.NewPercentage},
		Reason:      input.Reason,
	}, now)
	if err != nil {
		return nil, err
	}
	if err := s.founders.UpdateFounderEquity(ctx, founder, entry); err != nil {
		return nil, err
	}
	s.logger.Info("equity changed",
		"workspace_id", input.WorkspaceID,
		"founder_id", founder.ID,
		"old", oldPercentage.String(),
		"new", input.NewPercentage.String())
	s.notify(ctx, input.WorkspaceID, domain.AuditActionEquityChange, founder.ID, now)
	return founder, nil
}

// FounderProfile carries attributes for a new founder.
type FounderProfile struct {
	Name      string
	Email     string
	RoleTitle string
	Color     string
	UserID    *string
}

// CreateInitialFounder creates the first founder of a fresh workspace at 100%
// equity and records a create audit entry.
func (s *Service) CreateInitialFounder(ctx context.Context, workspaceID string, actorID *string, profile FounderProfile) (*domain.Founder, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return nil, errWorkspaceIDRequired
	}
	if strings.TrimSpace(profile.Name) == "" {
		return nil, errNameRequired
	}
	color := strings.TrimSpace(profile.Color)
	if color == "" {
		color = "#4F46E5"
	}
	now := time.Now().UTC()
	founder := &domain.Founder{
		ID:               uuid.NewString(),
		WorkspaceID:      workspaceID,
		Name:             strings.TrimSpace(profile.Name),
		RoleTitle:        strings.TrimSpace(profile.RoleTitle),
		EquityPercentage: hundred,
		UserID:           profile.UserID,
		Color:            color,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if email := strings.TrimSpace(profile.Email); email != "" {
		founder.Email = &email
	}
	entry, err := audit.BuildEntry(audit.Event{
		WorkspaceID: workspaceID,
		ActorID:     actorID,
		Action:      domain.AuditActionCreate,
		EntityType:  "founder",
		EntityID:    &founder.ID,
		NewData: map[string]any{
			"name":              founder.Name,
			"role_title":        founder.RoleTitle,
			"equity_percentage": founder.EquityPercentage,
		},
	}, now)
	if err != nil {
		return nil, err
	}
	if err := s.founders.CreateFounder(ctx, founder, entry); err != nil {
		return nil, err
	}
	s.logger.Info("initial founder created", "workspace_id", workspaceID, "founder_id", founder.ID)
	s.notify(ctx, workspaceID, domain.AuditActionCreate, founder.ID, now)
	return founder, nil
}

// InviteInput captures a co-founder invitation.
type InviteInput struct {
	WorkspaceID string
	Email       string
	Name        string
	Role        string
	Reason      *string
	ActorID     *string
}

// InviteFounder creates a placeholder founder at 0% equity plus a pending
// invite record, logging an invite audit entry. The placeholder's equity is
// adjusted later through ChangeEquity.
func (s *Service) InviteFounder(ctx context.Context, input InviteInput) (*domain.Founder, *domain.Invite, error) {
	if strings.TrimSpace(input.WorkspaceID) == "" {
		return nil, nil, errWorkspaceIDRequired
	}
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, errEmailRequired
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = "member"
	}

	existing, err := s.founders.ListFoundersByWorkspace(ctx, input.WorkspaceID)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now().UTC()
	founder := &domain.Founder{
		ID:               uuid.NewString(),
		WorkspaceID:      input.WorkspaceID,
		Name:             name,
		Email:            &email,
		EquityPercentage: decimal.Zero,
		Color:            invitePalette[len(existing)%len(invitePalette)],
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	invite := &domain.Invite{
		ID:          uuid.NewString(),
		WorkspaceID: input.WorkspaceID,
		Email:       email,
		Role:        role,
		InvitedBy:   input.ActorID,
		ExpiresAt:   now.Add(s.inviteTTL),
		CreatedAt:   now,
	}
	entry, err := audit.BuildEntry(audit.Event{
		WorkspaceID: input.WorkspaceID,
		ActorID:     input.ActorID,
		Action:      domain.AuditActionInvite,
		EntityType:  "workspace_invite",
		EntityID:    &invite.ID,
		NewData:     map[string]any{"email": email, "name": name},
		Reason:      input.Reason,
	}, now)
	if err != nil {
		return nil, nil, err
	}
	if err := s.founders.CreateFounderWithInvite(ctx, founder, invite, entry); err != nil {
		return nil, nil, err
	}
	s.logger.Info("founder invited", "workspace_id", input.WorkspaceID, "email", email)
	s.notify(ctx, input.WorkspaceID, domain.AuditActionInvite, invite.ID, now)
	return founder, invite, nil
}

// TotalAllocated sums equity percentages across the workspace cap table.
func (s *Service) TotalAllocated(ctx context.Context, workspaceID string) (decimal.Decimal, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return decimal.Zero, errWorkspaceIDRequired
	}
	founders, err := s.founders.ListFoundersByWorkspace(ctx, workspaceID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, founder := range founders {
		total = total.Add(founder.EquityPercentage)
	}
	return total, nil
}

// Imbalance reports whether a workspace's equity percentages sum to 100. It is
// informational only and never blocks writes.
type Imbalance struct {
	TotalAllocated decimal.Decimal
	Delta          decimal.Decimal
	Balanced       bool
}

// CheckBalance compares the allocated total against 100.
func (s *Service) CheckBalance(ctx context.Context, workspaceID string) (Imbalance, error) {
	total, err := s.TotalAllocated(ctx, workspaceID)
	if err != nil {
		return Imbalance{}, err
	}
	delta := total.Sub(hundred)
	return Imbalance{
		TotalAllocated: total,
		Delta:          delta,
		Balanced:       delta.IsZero(),
	}, nil
}

// ListFounders returns the workspace cap table.
func (s *Service) ListFounders(ctx context.Context, workspaceID string) ([]domain.Founder, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return nil, errWorkspaceIDRequired
	}
	return s.founders.ListFoundersByWorkspace(ctx, workspaceID)
}

// ListInvites returns invites for the workspace.
func (s *Service) ListInvites(ctx context.Context, workspaceID string) ([]domain.Invite, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return nil, errWorkspaceIDRequired
	}
	return s.founders.ListInvitesByWorkspace(ctx, workspaceID)
}

func (s *Service) notify(ctx context.Context, workspaceID string, action domain.AuditAction, entityID string, occurredAt time.Time) {
	if s.publisher == nil {
		return
	}
	mutation := events.Mutation{
		WorkspaceID: workspaceID,
		EntityType:  "founder",
		Action:      string(action),
		EntityID:    entityID,
		OccurredAt:  occurredAt,
	}
	if err := s.publisher.Publish(ctx, mutation); err != nil {
		s.logger.Warn("mutation publish failed", "workspace_id", workspaceID, "action", action, "error", err)
	}
}
