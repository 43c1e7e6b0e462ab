package security

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrMissingDetails = errors.New("security event requires details")

// PartialEvent is what detectors and callers hand to the classifier. The
// event type is implied by the details payload.
type PartialEvent struct {
	Severity Severity
	Details  Details
}

func (p PartialEvent) Validate() error {
	if p.Details == nil {
		return ErrMissingDetails
	}
	if !p.Severity.Valid() {
		return fmt.Errorf("invalid severity %d", int(p.Severity))
	}
	return nil
}

// Event is one detected anomaly. It is a value type with unexported fields;
// once built it cannot be changed.
type Event struct {
	id        uuid.UUID
	timestamp time.Time
	severity  Severity
	details   Details
	userAgent string
	userID    string
	ip        string
}

func NewEvent(partial PartialEvent, timestamp time.Time, userAgent, userID string) (Event, error) {
	if err := partial.Validate(); err != nil {
		return Event{}, err
	}
	return Event{
		id:        uuid.New(),
		timestamp: timestamp.UTC(),
		severity:  partial.Severity,
		details:   cloneDetails(partial.Details),
		userAgent: userAgent,
		userID:    userID,
	}, nil
}

func (e Event) ID() uuid.UUID        { return e.id }
func (e Event) Timestamp() time.Time { return e.timestamp }
func (e Event) Type() EventType      { return e.details.EventType() }
func (e Event) Severity() Severity   { return e.severity }
func (e Event) Details() Details     { return cloneDetails(e.details) }
func (e Event) UserAgent() string    { return e.userAgent }

func (e Event) UserID() (string, bool) {
	return e.userID, e.userID != ""
}

// IP is reserved for the server-side correlation pipeline and is never set
// in-process.
func (e Event) IP() (string, bool) {
	return e.ip, e.ip != ""
}

type eventJSON struct {
	ID          uuid.UUID              `json:"id"`
	Timestamp   string                 `json:"timestamp"`
	Type        EventType              `json:"type"`
	Severity    Severity               `json:"severity"`
	DetailsKind string                 `json:"detailsKind"`
	Details     map[string]interface{} `json:"details"`
	UserAgent   string                 `json:"userAgent"`
	UserID      string                 `json:"userId,omitempty"`
	IP          string                 `json:"ip,omitempty"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	if e.details == nil {
		return nil, ErrMissingDetails
	}
	return json.Marshal(eventJSON{
		ID:          e.id,
		Timestamp:   e.timestamp.Format(time.RFC3339Nano),
		Type:        e.Type(),
		Severity:    e.severity,
		DetailsKind: e.details.Kind(),
		Details:     e.details.Fields(),
		UserAgent:   e.userAgent,
		UserID:      e.userID,
		IP:          e.ip,
	})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := time.Parse(time.RFC3339Nano, raw.Timestamp)
	if err != nil {
		return fmt.Errorf("invalid event timestamp: %w", err)
	}
	if !raw.Severity.Valid() {
		return fmt.Errorf("invalid event severity %d", int(raw.Severity))
	}
	details, err := DecodeDetails(raw.DetailsKind, raw.Details)
	if err != nil {
		return err
	}
	if raw.Type != details.EventType() {
		return fmt.Errorf("event type %q does not match details kind %q", raw.Type, raw.DetailsKind)
	}
	*e = Event{
		id:        raw.ID,
		timestamp: ts,
		severity:  raw.Severity,
		details:   cloneDetails(details),
		userAgent: raw.UserAgent,
		userID:    raw.UserID,
		ip:        raw.IP,
	}
	return nil
}
