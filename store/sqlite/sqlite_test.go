package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/payroll-engine/dataset"
	"github.com/meridian/payroll-engine/engine"
	"github.com/meridian/payroll-engine/store/sqlite"
)

func newTestArchive(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func archivedResult(t *testing.T) *engine.Result {
	t.Helper()
	doc := `{
		"Avery, Jordan": {
			"Meta": {"Home Orgn": "Library"},
			"Timeline": [
				{"Date": "2024-03-01", "Source": "Classified",
				 "Jobs": [{"Annual Salary Rate": "48,000.00", "Appt Percent": 100,
				           "Job Orgn": "Library", "Job Title": "Archivist"}]},
				{"Date": "2024-05-01", "Source": "Classified",
				 "Jobs": [{"Annual Salary Rate": "51,360.00", "Appt Percent": 100,
				           "Job Orgn": "Library", "Job Title": "Archivist"}]}
			]
		},
		"Blake, Morgan": {
			"Meta": {"Home Orgn": "Facilities"},
			"Timeline": [
				{"Date": "2024-05-01", "Source": "Unclassified",
				 "Jobs": [{"Annual Salary Rate": 45000, "Appt Percent": 50,
				           "Job Orgn": "Facilities", "Job Title": "Coordinator"}]}
			]
		}
	}`
	ds, err := dataset.Decode([]byte(doc))
	require.NoError(t, err)
	res, err := engine.Run(context.Background(), ds, engine.Options{})
	require.NoError(t, err)
	return res
}

func TestArchiveRun_RoundTrip(t *testing.T) {
	store := newTestArchive(t)
	ctx := context.Background()
	res := archivedResult(t)

	run := sqlite.RunRecord{
		ID:         uuid.New().String(),
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		SourcePath: "data.json",
		OutputDir:  "out",
	}
	require.NoError(t, store.ArchiveRun(ctx, run, res))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, 2, runs[0].EmployeeCount)
	assert.Equal(t, 2, runs[0].SnapshotDateCount)
	assert.True(t, runs[0].CreatedAt.Equal(run.CreatedAt))

	employees, err := store.RunEmployees(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, employees, 2)

	// Ordered by name.
	avery, blake := employees[0], employees[1]
	assert.Equal(t, "Avery, Jordan", avery.Name)
	assert.Equal(t, "Blake, Morgan", blake.Name)

	// Pay survives as an exact decimal, not a float.
	assert.True(t, avery.TotalPay.Equal(decimal.NewFromInt(51360)),
		"want 51360, got %s", avery.TotalPay)
	assert.True(t, avery.ColaReceived)
	assert.False(t, avery.IsUnclassified)
	assert.True(t, blake.IsUnclassified)
	assert.True(t, blake.ColaReceived, "unclassified employees carry the exempt outcome")
}

func TestListRuns_MostRecentFirst(t *testing.T) {
	store := newTestArchive(t)
	ctx := context.Background()
	res := archivedResult(t)

	older := sqlite.RunRecord{ID: "run-older", CreatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}
	newer := sqlite.RunRecord{ID: "run-newer", CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.ArchiveRun(ctx, older, res))
	require.NoError(t, store.ArchiveRun(ctx, newer, res))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-newer", runs[0].ID)
	assert.Equal(t, "run-older", runs[1].ID)
}

func TestListRuns_CorruptTimestampIsAnError(t *testing.T) {
	// A damaged created_at must surface as an error, not a zero timestamp.
	path := filepath.Join(t.TempDir(), "archive.db")
	store, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	run := sqlite.RunRecord{ID: "run-1", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.ArchiveRun(ctx, run, archivedResult(t)))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE runs SET created_at = 'yesterday'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = store.ListRuns(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp")
}

func TestArchiveRun_DuplicateIDRejected(t *testing.T) {
	store := newTestArchive(t)
	ctx := context.Background()
	res := archivedResult(t)

	run := sqlite.RunRecord{ID: "run-1", CreatedAt: time.Now()}
	require.NoError(t, store.ArchiveRun(ctx, run, res))

	// Append-only: a second archive under the same id fails and leaves the
	// first intact.
	require.Error(t, store.ArchiveRun(ctx, run, res))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	employees, err := store.RunEmployees(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, employees, 2)
}

func TestRunEmployees_UnknownRunIsEmpty(t *testing.T) {
	store := newTestArchive(t)

	employees, err := store.RunEmployees(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, employees)
}
