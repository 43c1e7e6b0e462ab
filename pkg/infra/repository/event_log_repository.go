package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/platform"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
)

const (
	EventLogKey = "security_events"
)

// EventLogRepository mirrors the whole event log as a single JSON document
// in per-session storage.
type EventLogRepository struct {
	storage platform.Storage
	key     string
}

func NewEventLogRepository(storage platform.Storage) security.EventLogRepository {
	return &EventLogRepository{
		storage: storage,
		key:     EventLogKey,
	}
}

func (r *EventLogRepository) Save(ctx context.Context, events []security.Event) error {
	if events == nil {
		events = []security.Event{}
	}
	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to marshal security events: %w", err)
	}
	return r.storage.Set(ctx, r.key, string(eventsJSON))
}

func (r *EventLogRepository) Load(ctx context.Context) ([]security.Event, error) {
	eventsJSON, ok, err := r.storage.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	if !ok || eventsJSON == "" {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(eventsJSON), &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal security events: %w", err)
	}
	// entries that no longer decode into a valid event are dropped so the
	// rest of the log can still be restored and mirrored again
	events := make([]security.Event, 0, len(entries))
	for _, entry := range entries {
		var evt security.Event
		if err := json.Unmarshal(entry, &evt); err != nil {
			continue
		}
		events = append(events, evt)
	}
	return events, nil
}

func (r *EventLogRepository) Clear(ctx context.Context) error {
	return r.storage.Remove(ctx, r.key)
}
