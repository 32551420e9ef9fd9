package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nychealth/internal"
	"nychealth/internal/util"
)

var april1 = time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nyc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveRecordsUnionsCountsByKey(t *testing.T) {
	db := openTestDB(t)

	confirmed := internal.NewRecord(april1)
	confirmed.Sex = util.StringPtr("Female")
	confirmed.ConfirmedTot = util.IntPtr(50)

	deaths := internal.NewRecord(april1)
	deaths.Sex = util.StringPtr("Female")
	deaths.DeathsTot = util.IntPtr(2)

	unknownAge := internal.NewRecord(april1)
	unknownAge.AgeMin = internal.UnknownBound()
	unknownAge.AgeMax = internal.UnknownBound()
	unknownAge.UnderlyingConditions = internal.ConditionUnknown
	unknownAge.DeathsTot = util.IntPtr(1)

	require.NoError(t, db.SaveRecords([]internal.Record{confirmed, unknownAge}))
	require.NoError(t, db.SaveRecords([]internal.Record{deaths}))

	got, err := db.ListRecords(april1, april1)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, confirmed.Key(), got[0].Key())
	require.NotNil(t, got[0].ConfirmedTot)
	require.NotNil(t, got[0].DeathsTot)
	assert.Equal(t, 50, *got[0].ConfirmedTot)
	assert.Equal(t, 2, *got[0].DeathsTot)
	assert.Nil(t, got[0].HospitalizedTot)

	assert.Equal(t, unknownAge.Key(), got[1].Key())
	assert.True(t, got[1].AgeMin.Unknown)
}

func TestLatestDateAndMetadata(t *testing.T) {
	db := openTestDB(t)

	latest, err := db.LatestDate()
	require.NoError(t, err)
	assert.Nil(t, latest)

	rec := internal.NewRecord(april1.AddDate(0, 0, 2))
	rec.ConfirmedTot = util.IntPtr(10)
	require.NoError(t, db.SaveRecords([]internal.Record{internal.NewRecord(april1), rec}))

	latest, err = db.LatestDate()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2020-04-03", latest.Format(internal.DateLayout))

	require.NoError(t, db.SetMetadata("scrape.last_date", "2020-04-03"))
	value, err := db.GetMetadata("scrape.last_date")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "2020-04-03", *value)

	require.NoError(t, db.InsertRun("trace", april1, map[string]int{"summary": 3}, 3))
	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Reports["summary"])
}
