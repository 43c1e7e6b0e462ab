package response

import "github.com/NeuralTrust/TrustGuard/pkg/domain/security"

type ThreatReportOutput struct {
	security.ThreatReport
	State security.State `json:"state"`
}

type ListSecurityEventsOutput struct {
	Events []security.Event `json:"events"`
	Total  int              `json:"total"`
}
