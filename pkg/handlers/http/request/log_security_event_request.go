package request

import (
	"errors"
	"fmt"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
)

type LogSecurityEventRequest struct {
	Severity string                 `json:"severity"`
	Kind     string                 `json:"kind"`
	Details  map[string]interface{} `json:"details"`
}

func (r *LogSecurityEventRequest) Validate() error {
	if r.Severity == "" {
		return errors.New("severity is required")
	}
	if r.Kind == "" {
		return errors.New("kind is required")
	}
	return nil
}

func (r *LogSecurityEventRequest) ToPartialEvent() (security.PartialEvent, error) {
	if err := r.Validate(); err != nil {
		return security.PartialEvent{}, err
	}
	severity, err := security.ParseSeverity(r.Severity)
	if err != nil {
		return security.PartialEvent{}, err
	}
	details, err := security.DecodeDetails(r.Kind, r.Details)
	if err != nil {
		return security.PartialEvent{}, fmt.Errorf("invalid details: %w", err)
	}
	return security.PartialEvent{Severity: severity, Details: details}, nil
}
