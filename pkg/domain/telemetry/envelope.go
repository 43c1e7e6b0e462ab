package telemetry

import (
	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
)

// SecurityEnvelope is the wire shape of an exported security event. IP is
// left for the downstream pipeline to fill.
type SecurityEnvelope struct {
	ID        string                 `json:"id"`
	Timestamp int64                  `json:"timestamp"`
	Type      string                 `json:"type"`
	Severity  string                 `json:"severity"`
	Kind      string                 `json:"kind"`
	Details   map[string]interface{} `json:"details"`
	UserAgent string                 `json:"user_agent"`
	UserID    string                 `json:"user_id,omitempty"`
	Origin    string                 `json:"origin,omitempty"`
	Device    string                 `json:"device,omitempty"`
	OS        string                 `json:"os,omitempty"`
	Browser   string                 `json:"browser,omitempty"`
}

func NewSecurityEnvelope(evt security.Event, origin string) *SecurityEnvelope {
	userID, _ := evt.UserID()
	return &SecurityEnvelope{
		ID:        evt.ID().String(),
		Timestamp: evt.Timestamp().UnixMilli(),
		Type:      string(evt.Type()),
		Severity:  evt.Severity().String(),
		Kind:      evt.Details().Kind(),
		Details:   evt.Details().Fields(),
		UserAgent: evt.UserAgent(),
		UserID:    userID,
		Origin:    origin,
	}
}
