package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open("", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func TestRecordUsage_Upserts(t *testing.T) {
	db := openTestDB(t)
	key := APIKey{Key: "front.abc", Name: "front"}
	require.NoError(t, db.Create(&key).Error)

	require.NoError(t, RecordUsage(db, key.ID, "2026-03-14", 81, 8))
	require.NoError(t, RecordUsage(db, key.ID, "2026-03-14", 40, 4))
	require.NoError(t, RecordUsage(db, key.ID, "2026-03-15", 10, 1))

	usage, err := UsageHistory(db, key.ID, 30)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, "2026-03-15", usage[0].Date)
	assert.Equal(t, 2, usage[1].RequestCount)
	assert.Equal(t, 121, usage[1].TotalRooms)
	assert.Equal(t, 12, usage[1].TotalHousekeepers)
}

func TestAPIKey_Defaults(t *testing.T) {
	db := openTestDB(t)
	key := APIKey{Key: "night.abc", Name: "night"}
	require.NoError(t, db.Create(&key).Error)

	var got APIKey
	require.NoError(t, db.First(&got, key.ID).Error)
	assert.Equal(t, 10000, got.RateLimit)
	assert.Nil(t, got.LastUsed)
}

func TestRecentRuns(t *testing.T) {
	db := openTestDB(t)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, db.Create(&AllocationRun{RunID: id, KeyID: 1, Penalty: float64(i)}).Error)
	}
	require.NoError(t, db.Create(&AllocationRun{RunID: "other", KeyID: 2}).Error)

	runs, err := RecentRuns(db, 1, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].RunID)
}
