package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Founder is an equity holder in a workspace. Placeholder founders created from
// invites carry a nil UserID until the invite is accepted.
type Founder struct {
	ID               string
	WorkspaceID      string
	Name             string
	Email            *string
	RoleTitle        string
	EquityPercentage decimal.Decimal
	UserID           *string
	Color            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Invite is a pending co-founder invitation.
type Invite struct {
	ID          string
	WorkspaceID string
	Email       string
	Role        string
	InvitedBy   *string
	ExpiresAt   time.Time
	AcceptedAt  *time.Time
	CreatedAt   time.Time
}
