package mocks

import (
	"context"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/stretchr/testify/mock"
)

type SecurityService struct {
	mock.Mock
}

func (m *SecurityService) LogSecurityEvent(ctx context.Context, partial security.PartialEvent) error {
	args := m.Called(ctx, partial)
	return args.Error(0)
}

func (m *SecurityService) GetThreatReport() security.ThreatReport {
	args := m.Called()
	report, _ := args.Get(0).(security.ThreatReport) //nolint:errcheck
	return report
}

func (m *SecurityService) GetSecurityEvents() []security.Event {
	args := m.Called()
	events, _ := args.Get(0).([]security.Event) //nolint:errcheck
	return events
}

func (m *SecurityService) ClearEvents(ctx context.Context) {
	m.Called(ctx)
}

func (m *SecurityService) State() security.State {
	args := m.Called()
	state, _ := args.Get(0).(security.State) //nolint:errcheck
	return state
}
