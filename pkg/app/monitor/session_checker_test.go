package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	platformMocks "github.com/NeuralTrust/TrustGuard/pkg/domain/platform/mocks"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validUser = `{"id":"u-1","username":"dr.grey","role":"doctor"}`

func present(v string) artifact { return artifact{value: v, present: true} }

func TestEvaluateSession(t *testing.T) {
	tests := []struct {
		name     string
		snap     sessionSnapshot
		expected []security.SessionTamperDetails
		severity []security.Severity
	}{
		{
			name: "empty session",
			snap: sessionSnapshot{},
		},
		{
			name: "consistent session",
			snap: sessionSnapshot{authToken: present("t1"), token: present("t1"), user: present(validUser)},
		},
		{
			name: "single token copy",
			snap: sessionSnapshot{authToken: present("t1")},
		},
		{
			name:     "token mismatch",
			snap:     sessionSnapshot{authToken: present("t1"), token: present("t2")},
			expected: []security.SessionTamperDetails{{Reason: security.ReasonTokenMismatch}},
			severity: []security.Severity{security.Critical},
		},
		{
			name:     "corrupted user",
			snap:     sessionSnapshot{user: present("{not json")},
			expected: []security.SessionTamperDetails{{Reason: security.ReasonCorruptedUserData}},
			severity: []security.Severity{security.Critical},
		},
		{
			name:     "empty user artifact",
			snap:     sessionSnapshot{user: present("")},
			expected: []security.SessionTamperDetails{{Reason: security.ReasonCorruptedUserData}},
			severity: []security.Severity{security.Critical},
		},
		{
			name: "missing role and blank username",
			snap: sessionSnapshot{user: present(`{"id":7,"username":""}`)},
			expected: []security.SessionTamperDetails{{
				Reason:        security.ReasonInvalidUserData,
				MissingFields: []string{"username", "role"},
			}},
			severity: []security.Severity{security.High},
		},
		{
			name: "user is not an object",
			snap: sessionSnapshot{user: present(`"dr.grey"`)},
			expected: []security.SessionTamperDetails{{
				Reason:        security.ReasonInvalidUserData,
				MissingFields: []string{"id", "username", "role"},
			}},
			severity: []security.Severity{security.High},
		},
		{
			name: "mismatch and corrupted in one tick",
			snap: sessionSnapshot{authToken: present("t1"), token: present("t2"), user: present("}")},
			expected: []security.SessionTamperDetails{
				{Reason: security.ReasonTokenMismatch},
				{Reason: security.ReasonCorruptedUserData},
			},
			severity: []security.Severity{security.Critical, security.Critical},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := evaluateSession(tt.snap)
			require.Len(t, findings, len(tt.expected))
			for i, finding := range findings {
				details, ok := finding.Details.(security.SessionTamperDetails)
				require.True(t, ok)
				assert.Equal(t, tt.severity[i], finding.Severity)
				assert.Equal(t, tt.expected[i].Reason, details.Reason)
				assert.Equal(t, tt.expected[i].MissingFields, details.MissingFields)
				if details.Reason == security.ReasonCorruptedUserData {
					assert.NotEmpty(t, details.ParseError)
				}
			}
		})
	}
}

func TestSessionChecker_TokenMismatchOnTick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.storage.Set(ctx, "authToken", "token-a"))
	require.NoError(t, f.storage.Set(ctx, "token", "token-b"))
	f.start(t)

	// nothing happens before the first tick
	f.clock.Add(DefaultSessionCheckInterval - time.Second)
	assert.Empty(t, f.monitor.GetSecurityEvents())

	f.clock.Add(time.Second)
	// the redirect is the last remediation step
	require.Eventually(t, func() bool {
		return f.doc.CurrentURL() == testLoginURL
	}, time.Second, 5*time.Millisecond)

	events := f.monitor.GetSecurityEvents()
	require.Len(t, events, 1)
	assert.Equal(t, security.SessionTamper, events[0].Type())
	assert.Equal(t, security.Critical, events[0].Severity())
	assert.Equal(t, security.ReasonTokenMismatch, events[0].Details().(security.SessionTamperDetails).Reason)

	assert.Equal(t, security.StateBlocked, f.monitor.State())
	assert.Equal(t, int64(1), f.monitor.BlockedAttempts())
	for _, key := range []string{"authToken", "token", "user"} {
		_, ok, err := f.storage.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	// the purge removed the inconsistency, later ticks stay quiet
	f.clock.Add(DefaultSessionCheckInterval)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, f.monitor.GetSecurityEvents(), 1)
	assert.Equal(t, int64(1), f.monitor.BlockedAttempts())
}

func TestCheckSession_CorruptedUserData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.storage.Set(ctx, "user", "{corrupted"))
	f.start(t)

	f.monitor.CheckSession(ctx)

	events := eventsOfKind(f.monitor.GetSecurityEvents(), security.KindSessionTamper)
	require.Len(t, events, 1)
	assert.Equal(t, security.Critical, events[0].Severity())
	assert.Equal(t, "corrupted_user_data", events[0].Details().Fields()["reason"])
	_, hasUser := events[0].UserID()
	assert.False(t, hasUser)
	assert.Equal(t, int64(1), f.monitor.BlockedAttempts())
}

func TestCheckSession_InvalidUserDataDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.storage.Set(ctx, "user", `{"id":"u-9"}`))
	f.start(t)

	f.monitor.CheckSession(ctx)

	events := f.monitor.GetSecurityEvents()
	require.Len(t, events, 1)
	assert.Equal(t, security.High, events[0].Severity())
	userID, ok := events[0].UserID()
	assert.True(t, ok)
	assert.Equal(t, "u-9", userID)
	assert.Equal(t, int64(0), f.monitor.BlockedAttempts())
	assert.Equal(t, security.StateMonitoring, f.monitor.State())
}

func TestSessionChecker_ReadFailureSkipsTick(t *testing.T) {
	store := new(platformMocks.Storage)
	store.On("Get", mock.Anything, "authToken").Return("", false, errors.New("storage disabled"))

	checker := newSessionChecker(logger.NewNopLogger(), DefaultConfig(), store)
	findings, err := checker.check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authToken")
	assert.Nil(t, findings)
}
