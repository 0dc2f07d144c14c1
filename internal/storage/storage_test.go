package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsignal/hearingwatch/internal/types"
)

func sampleEvents(now time.Time) map[string]*types.TrackedEvent {
	return map[string]*types.TrackedEvent{
		"1001": {
			Latest:        types.EventRecord{ID: "1001", BodyName: "Committee on Finance", Date: "2025-01-10", Time: "10:00 AM"},
			FirstSeenAt:   now,
			LastSeenAt:    now,
			Status:        types.StatusActive,
			LastAlertType: types.AlertNew,
			LastAlertAt:   now,
		},
		"1002": {
			Latest:        types.EventRecord{ID: "1002", BodyName: "Committee on Land Use", Date: "2025-01-12", AgendaStatus: "Deferred"},
			FirstSeenAt:   now.Add(-24 * time.Hour),
			LastSeenAt:    now,
			Status:        types.StatusDeferredPendingMatch,
			LastAlertType: types.AlertDeferred,
			LastAlertAt:   now,
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seen_events.json")
	store := NewFileStore(path)

	now := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(sampleEvents(now)))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	ev := loaded["1002"]
	require.NotNil(t, ev)
	assert.Equal(t, types.StatusDeferredPendingMatch, ev.Status)
	assert.Equal(t, types.AlertDeferred, ev.LastAlertType)
	assert.True(t, ev.LastAlertAt.Equal(now))
	assert.Equal(t, "Committee on Land Use", ev.Latest.BodyName)
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope", "seen_events.json"))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seen_events.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store := NewFileStore(path)
	loaded, err := store.Load()
	require.NoError(t, err, "corrupt store must fail soft")
	assert.Empty(t, loaded)
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "seen_events.json"))
	require.NoError(t, store.Save(sampleEvents(time.Now())))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "seen_events.json", entries[0].Name())
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	require.NoError(t, store.Save(sampleEvents(now)))

	first, err := store.Load()
	require.NoError(t, err)
	first["1001"].Status = types.StatusDeferredNoMatch

	second, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, second["1001"].Status,
		"mutating a loaded copy must not leak into the store")
}

func TestMemoryStoreFailSave(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(sampleEvents(time.Now())))

	store.FailSave = true
	err := store.Save(map[string]*types.TrackedEvent{})
	require.Error(t, err)

	loaded, err2 := store.Load()
	require.NoError(t, err2)
	assert.Len(t, loaded, 2, "failed save must leave previous state intact")
}

func TestRunLock(t *testing.T) {
	dir := t.TempDir()

	lockPath, err := AcquireRunLock(dir)
	require.NoError(t, err)

	// Same process already holds the lock.
	_, err = AcquireRunLock(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in progress")

	require.NoError(t, ReleaseRunLock(lockPath))

	// Released lock can be re-acquired.
	lockPath, err = AcquireRunLock(dir)
	require.NoError(t, err)
	require.NoError(t, ReleaseRunLock(lockPath))
}

func TestRunLockStale(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, ".run-lock")

	// A lock from a PID that no longer exists should be overwritten.
	stale := `{"holder":"hearingwatch","pid":999999,"hostname":"` + mustHostname(t) + `","started_at":"2020-01-01T00:00:00Z"}`
	require.NoError(t, os.WriteFile(lockPath, []byte(stale), 0644))

	acquired, err := AcquireRunLock(dir)
	require.NoError(t, err)
	require.NoError(t, ReleaseRunLock(acquired))
}

func mustHostname(t *testing.T) string {
	t.Helper()
	h, err := os.Hostname()
	require.NoError(t, err)
	return h
}
