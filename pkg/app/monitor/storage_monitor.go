package monitor

import (
	"context"
	"strings"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/platform"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
)

var _ platform.Storage = (*storageMonitor)(nil)

// storageMonitor records access to sensitive keys and then always performs
// the underlying operation.
type storageMonitor struct {
	monitor *SecurityMonitor
	next    platform.Storage
	markers []string
}

func newStorageMonitor(m *SecurityMonitor, next platform.Storage) *storageMonitor {
	return &storageMonitor{monitor: m, next: next, markers: normalizeMarkers(m.cfg.SensitiveMarkers)}
}

func (s *storageMonitor) Get(ctx context.Context, key string) (string, bool, error) {
	s.observe(ctx, security.ActionRead, key)
	return s.next.Get(ctx, key)
}

func (s *storageMonitor) Set(ctx context.Context, key string, value string) error {
	s.observe(ctx, security.ActionWrite, key)
	return s.next.Set(ctx, key, value)
}

func (s *storageMonitor) Remove(ctx context.Context, key string) error {
	s.observe(ctx, security.ActionDelete, key)
	return s.next.Remove(ctx, key)
}

func (s *storageMonitor) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *storageMonitor) observe(ctx context.Context, action security.StorageAction, key string) {
	if !s.monitor.isActive() || !isSensitiveKey(key, s.markers) {
		return
	}
	s.monitor.record(ctx, security.PartialEvent{
		Severity: actionSeverity(action),
		Details:  security.StorageAccessDetails{Action: action, Key: key},
	})
}

func actionSeverity(action security.StorageAction) security.Severity {
	switch action {
	case security.ActionDelete:
		return security.High
	case security.ActionWrite:
		return security.Medium
	default:
		return security.Low
	}
}

// isSensitiveKey matches markers as case-insensitive substrings. markers must
// already be lower case.
func isSensitiveKey(key string, markers []string) bool {
	lower := strings.ToLower(key)
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func normalizeMarkers(markers []string) []string {
	out := make([]string, 0, len(markers))
	for _, marker := range markers {
		if marker = strings.ToLower(strings.TrimSpace(marker)); marker != "" {
			out = append(out, marker)
		}
	}
	return out
}
