package security

import "context"

//go:generate mockery --name=EventLogRepository --dir=. --output=./mocks --filename=event_log_repository_mock.go --case=underscore --with-expecter
type EventLogRepository interface {
	Save(ctx context.Context, events []Event) error
	Load(ctx context.Context) ([]Event, error)
	Clear(ctx context.Context) error
}
