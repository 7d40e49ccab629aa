package domain

import "time"

// AuditAction enumerates mutation kinds recorded in the audit trail.
type AuditAction string

const (
	AuditActionCreate       AuditAction = "create"
	AuditActionUpdate       AuditAction = "update"
	AuditActionDelete       AuditAction = "delete"
	AuditActionEquityChange AuditAction = "equity_change"
	AuditActionApproval     AuditAction = "approval"
	AuditActionInvite       AuditAction = "invite"
)

// AuditEntry is an immutable record of one mutation. OldData and NewData hold
// JSON snapshots of the entity before and after the change.
type AuditEntry struct {
	ID          string
	WorkspaceID string
	UserID      *string
	Action      AuditAction
	EntityType  string
	EntityID    *string
	OldData     []byte
	NewData     []byte
	Reason      *string
	CreatedAt   time.Time
}
