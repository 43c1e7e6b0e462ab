package mocks

import (
	"context"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/stretchr/testify/mock"
)

type EventLogRepository struct {
	mock.Mock
}

func (m *EventLogRepository) Save(ctx context.Context, events []security.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *EventLogRepository) Load(ctx context.Context) ([]security.Event, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]security.Event) //nolint:errcheck
	return events, args.Error(1)
}

func (m *EventLogRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
