package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/repository"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogRepository_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	repo := repository.NewEventLogRepository(store)

	first, err := security.NewEvent(security.PartialEvent{
		Severity: security.Medium,
		Details:  security.StorageAccessDetails{Action: security.ActionWrite, Key: "authToken"},
	}, time.Now(), "Mozilla/5.0", "u-1")
	require.NoError(t, err)
	second, err := security.NewEvent(security.PartialEvent{
		Severity: security.Critical,
		Details:  security.SessionTamperDetails{Reason: security.ReasonTokenMismatch},
	}, time.Now(), "Mozilla/5.0", "")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, []security.Event{first, second}))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, first.ID(), loaded[0].ID())
	assert.Equal(t, security.SuspiciousActivity, loaded[0].Type())
	assert.Equal(t, security.StorageAccessDetails{Action: security.ActionWrite, Key: "authToken"}, loaded[0].Details())
	assert.Equal(t, security.Critical, loaded[1].Severity())

	require.NoError(t, repo.Clear(ctx))
	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestEventLogRepository_LoadCorrupted(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Set(ctx, repository.EventLogKey, "{not json"))

	_, err := repository.NewEventLogRepository(store).Load(ctx)
	assert.Error(t, err)
}

func TestEventLogRepository_LoadSkipsInvalidEntries(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	repo := repository.NewEventLogRepository(store)

	valid, err := security.NewEvent(security.PartialEvent{
		Severity: security.High,
		Details:  security.AccessViolationDetails{Resource: "/admin", Reason: "forbidden"},
	}, time.Now(), "Mozilla/5.0", "")
	require.NoError(t, err)
	validJSON, err := json.Marshal(valid)
	require.NoError(t, err)

	mirrored := `[` +
		`{"id":"6f1c2c43-5d0e-4d6b-9b55-0e3f5bb7a1d2","timestamp":"2026-01-01T00:00:00Z","type":"access_violation","detailsKind":"access_violation","details":{"resource":"/a"}},` +
		`{"id":"7a2d3d54-6e1f-4e7c-8c66-1f4a6cc8b2e3","timestamp":"2026-01-01T00:00:00Z","type":"session_tamper","severity":"low","detailsKind":"access_violation","details":{}},` +
		string(validJSON) +
		`]`
	require.NoError(t, store.Set(ctx, repository.EventLogKey, mirrored))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, valid.ID(), loaded[0].ID())

	require.NoError(t, repo.Save(ctx, loaded))
}
