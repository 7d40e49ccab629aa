package domain

import "time"

// Workspace is the tenant boundary grouping one company's founders and ledgers.
type Workspace struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
