package telemetry

import (
	"context"
)

// Exporter forwards security envelopes to an external correlation pipeline.
// Base exporters are registered unconfigured; WithSettings returns a ready
// instance.
type Exporter interface {
	Name() string
	ValidateConfig(settings map[string]interface{}) error
	Handle(ctx context.Context, evt *SecurityEnvelope) error
	WithSettings(settings map[string]interface{}) (Exporter, error)
	Close()
}
