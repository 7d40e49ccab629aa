package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingPublisher struct {
	mutations []Mutation
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, mutation Mutation) error {
	p.mutations = append(p.mutations, mutation)
	return p.err
}

func TestFanoutDeliversToAllMembers(t *testing.T) {
	first := &recordingPublisher{}
	second := &recordingPublisher{}
	fanout := Fanout{first, second}

	mutation := Mutation{WorkspaceID: "ws-1", EntityType: "founder", Action: "create", OccurredAt: time.Now()}
	if err := fanout.Publish(context.Background(), mutation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.mutations) != 1 || len(second.mutations) != 1 {
		t.Fatalf("expected delivery to both members, got %d and %d", len(first.mutations), len(second.mutations))
	}
}

func TestFanoutReturnsFirstErrorAfterAllAttempts(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("broker down")}
	healthy := &recordingPublisher{}
	fanout := Fanout{failing, healthy}

	err := fanout.Publish(context.Background(), Mutation{WorkspaceID: "ws-1"})
	if err == nil || err.Error() != "broker down" {
		t.Fatalf("expected first error returned, got %v", err)
	}
	if len(healthy.mutations) != 1 {
		t.Fatalf("failure must not short-circuit remaining publishers")
	}
}
