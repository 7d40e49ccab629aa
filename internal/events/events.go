package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prince-ramoliya/founder-harmony/internal/ws"
)

// Mutation describes a committed change to workspace data. Consumers use it to
// refresh derived views instead of polling the ledgers.
type Mutation struct {
	WorkspaceID string    `json:"workspace_id"`
	EntityType  string    `json:"entity_type"`
	Action      string    `json:"action"`
	EntityID    string    `json:"entity_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher delivers mutation notifications after a successful write. Delivery
// is best effort and never rolls back the mutation it describes.
type Publisher interface {
	Publish(ctx context.Context, mutation Mutation) error
}

// HubPublisher pushes mutations to websocket subscribers of the workspace.
type HubPublisher struct {
	hub *ws.Hub
}

// NewHubPublisher wraps a broadcast hub.
func NewHubPublisher(hub *ws.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

// Publish broadcasts the mutation to the workspace's stream.
func (p *HubPublisher) Publish(ctx context.Context, mutation Mutation) error {
	payload, err := json.Marshal(mutation)
	if err != nil {
		return err
	}
	p.hub.Broadcast(mutation.WorkspaceID, payload)
	return nil
}

// Fanout delivers each mutation to every wrapped publisher, returning the
// first error after all publishers have been attempted.
type Fanout []Publisher

// Publish forwards to all members.
func (f Fanout) Publish(ctx context.Context, mutation Mutation) error {
	var firstErr error
	for _, p := range f {
		if err := p.Publish(ctx, mutation); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
