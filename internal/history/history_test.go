package history

import (
	"context"
	"ecourts-backend/internal/components/chrono"
	"ecourts-backend/internal/components/telemetry"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, dsn string) (Store, *chrono.FakeTime) {
	sqlDB, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	clock := chrono.NewFakeTime(time.Date(2025, 1, 15, 10, 0, 0, 0, chrono.IST()))
	store, err := NewStore(context.Background(), sqlDB, clock, &telemetry.RecordingAPI{})
	require.NoError(t, err)
	return store, clock
}

type caseParams struct {
	CaseNumber string `json:"case_number"`
	Year       string `json:"year"`
}

func TestRecentJoinsLatestResult(t *testing.T) {
	ctx := context.Background()
	store, clock := setup(t, ":memory:")

	first, err := store.LogQuery(ctx, "high-court", caseParams{CaseNumber: "1234", Year: "2023"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := store.LogQuery(ctx, "district-court", caseParams{CaseNumber: "120", Year: "2023"})
	require.NoError(t, err)

	require.NoError(t, store.LogResult(ctx, first, map[string]string{"status": "old"}, "<html>1</html>"))
	require.NoError(t, store.LogResult(ctx, first, map[string]string{"status": "new"}, "<html>2</html>"))

	entries, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, second, entries[0].ID)
	require.Equal(t, "district-court", entries[0].CourtType)
	require.Nil(t, entries[0].Result)

	require.Equal(t, first, entries[1].ID)
	require.JSONEq(t, `{"case_number":"1234","year":"2023"}`, string(entries[1].Params))
	require.JSONEq(t, `{"status":"new"}`, string(entries[1].Result))
	require.True(t, entries[1].Timestamp.Equal(time.Date(2025, 1, 15, 10, 0, 0, 0, chrono.IST())))
}

func TestRecentLimit(t *testing.T) {
	ctx := context.Background()
	store, clock := setup(t, ":memory:")

	for i := 0; i < 60; i++ {
		_, err := store.LogQuery(ctx, "causelist", map[string]int{"n": i})
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	entries, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, DefaultLimit)

	var newest map[string]int
	require.NoError(t, json.Unmarshal(entries[0].Params, &newest))
	require.Equal(t, 59, newest["n"])

	entries, err = store.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 5)
}

func TestFileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nested", "history.db")

	store, _ := setup(t, dsn)
	_, err := store.LogQuery(ctx, "high-court", caseParams{CaseNumber: "1"})
	require.NoError(t, err)

	reopened, _ := setup(t, dsn)
	entries, err := reopened.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
