package request

import (
	"testing"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSecurityEventRequest_ToPartialEvent(t *testing.T) {
	tests := []struct {
		name   string
		req    LogSecurityEventRequest
		errMsg string
	}{
		{
			name: "authentication failure",
			req: LogSecurityEventRequest{
				Severity: "medium",
				Kind:     security.KindAuthenticationFailure,
				Details:  map[string]interface{}{"username": "dr.grey", "reason": "bad password"},
			},
		},
		{
			name:   "missing severity",
			req:    LogSecurityEventRequest{Kind: security.KindAccessViolation},
			errMsg: "severity is required",
		},
		{
			name:   "missing kind",
			req:    LogSecurityEventRequest{Severity: "low"},
			errMsg: "kind is required",
		},
		{
			name:   "unknown severity",
			req:    LogSecurityEventRequest{Severity: "urgent", Kind: security.KindAccessViolation},
			errMsg: "unknown severity",
		},
		{
			name:   "unknown kind",
			req:    LogSecurityEventRequest{Severity: "low", Kind: "phishing"},
			errMsg: "unknown details kind",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			partial, err := tt.req.ToPartialEvent()
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, security.Medium, partial.Severity)
			details, ok := partial.Details.(security.AuthenticationFailureDetails)
			require.True(t, ok)
			assert.Equal(t, "dr.grey", details.Username)
			assert.Equal(t, "bad password", details.Reason)
		})
	}
}
