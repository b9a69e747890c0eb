package report_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/payroll-engine/dataset"
	"github.com/meridian/payroll-engine/engine"
	"github.com/meridian/payroll-engine/report"
)

func testDataset(t *testing.T) dataset.Dataset {
	t.Helper()
	doc := `{
		"Avery, Jordan": {
			"Meta": {"First Hired": "2019-01-01", "Home Orgn": "Library"},
			"Timeline": [
				{"Date": "2024-03-01", "Source": "Classified",
				 "Jobs": [{"Annual Salary Rate": "48,000.00", "Appt Percent": 100,
				           "Job Orgn": "Library", "Job Title": "Archivist"}]},
				{"Date": "2024-05-01", "Source": "Classified",
				 "Jobs": [{"Annual Salary Rate": "51,360.00", "Appt Percent": 100,
				           "Job Orgn": "Library", "Job Title": "Archivist"}]}
			]
		},
		"blake, morgan": {
			"Meta": {"Home Orgn": "Facilities"},
			"Timeline": [
				{"Date": "2024-05-01", "Source": "Unclassified",
				 "Jobs": [{"Annual Salary Rate": 45000, "Appt Percent": 50,
				           "Job Orgn": "Facilities", "Job Title": "Coordinator"}]}
			]
		},
		"9 Lives Catering": {
			"Meta": {},
			"Timeline": []
		}
	}`
	ds, err := dataset.Decode([]byte(doc))
	require.NoError(t, err)
	return ds
}

func runEngine(t *testing.T, ds dataset.Dataset) *engine.Result {
	t.Helper()
	res, err := engine.Run(context.Background(), ds, engine.Options{})
	require.NoError(t, err)
	return res
}

// =============================================================================
// BUCKETING
// =============================================================================

func TestBucketFor(t *testing.T) {
	assert.Equal(t, "a", report.BucketFor("Avery, Jordan"))
	assert.Equal(t, "b", report.BucketFor("blake, morgan"))
	assert.Equal(t, "o", report.BucketFor("  O'Brien, Pat"))
	assert.Equal(t, "_", report.BucketFor("9 Lives Catering"))
	assert.Equal(t, "_", report.BucketFor(""))
	assert.Equal(t, "_", report.BucketFor("   "))
}

// =============================================================================
// DOCUMENT ASSEMBLY
// =============================================================================

func TestBuildIndex_Fields(t *testing.T) {
	ds := testDataset(t)
	index := report.BuildIndex(runEngine(t, ds))
	require.Len(t, index, 3)

	avery := index["Avery, Jordan"]
	assert.True(t, avery.HasTimeline)
	assert.Equal(t, "2024-05-01", avery.LastDate)
	assert.InDelta(t, 51360, avery.TotalPay, 1e-9)
	assert.False(t, avery.IsUnclass)
	assert.True(t, avery.IsFullTime)
	assert.Equal(t, "archivist", avery.RoleStr)
	assert.True(t, avery.ColaReceived, "7%% change covers the 6.5%% event")

	blake := index["blake, morgan"]
	assert.True(t, blake.IsUnclass)
	assert.False(t, blake.IsFullTime)
	assert.True(t, blake.ColaReceived)
	assert.Equal(t, 0, blake.ColaChecked)

	// No timeline: placeholder entry with an empty last job, not a null.
	empty := index["9 Lives Catering"]
	assert.False(t, empty.HasTimeline)
	require.NotNil(t, empty.LastJob)
}

func TestBuildBuckets_PartitionAndFlags(t *testing.T) {
	ds := testDataset(t)
	buckets := report.BuildBuckets(ds, runEngine(t, ds))

	require.Contains(t, buckets, "a")
	require.Contains(t, buckets, "b")
	require.Contains(t, buckets, "_")
	assert.Contains(t, buckets["a"], "Avery, Jordan")
	assert.Contains(t, buckets["_"], "9 Lives Catering")

	record := buckets["a"]["Avery, Jordan"]
	assert.Len(t, record.Timeline, 2)
	assert.False(t, record.WasExcluded)
}

// =============================================================================
// WRITING + IDEMPOTENCE
// =============================================================================

func TestWrite_LayoutAndByteIdempotence(t *testing.T) {
	// GIVEN: the same dataset aggregated and written twice
	// THEN: the layout is complete and every document is byte-identical.
	ds := testDataset(t)

	dirA := t.TempDir()
	_, err := report.Write(dirA, ds, runEngine(t, ds))
	require.NoError(t, err)

	dirB := t.TempDir()
	_, err = report.Write(dirB, ds, runEngine(t, ds))
	require.NoError(t, err)

	for _, rel := range []string{
		report.IndexFile,
		report.AggregatesFile,
		filepath.Join(report.PeopleDir, "a.json"),
		filepath.Join(report.PeopleDir, "b.json"),
		filepath.Join(report.PeopleDir, "_.json"),
	} {
		a, err := os.ReadFile(filepath.Join(dirA, rel))
		require.NoError(t, err, rel)
		b, err := os.ReadFile(filepath.Join(dirB, rel))
		require.NoError(t, err, rel)
		assert.Equal(t, a, b, "document %s must be byte-identical across runs", rel)
	}
}

func TestWrite_TimelineEchoPreservesTokens(t *testing.T) {
	// A rate that arrived as a string stays a string; a numeric rate stays
	// a number.
	ds := testDataset(t)
	dir := t.TempDir()
	_, err := report.Write(dir, ds, runEngine(t, ds))
	require.NoError(t, err)

	aDoc, err := os.ReadFile(filepath.Join(dir, report.PeopleDir, "a.json"))
	require.NoError(t, err)
	assert.Contains(t, string(aDoc), `"Annual Salary Rate":"48,000.00"`)

	bDoc, err := os.ReadFile(filepath.Join(dir, report.PeopleDir, "b.json"))
	require.NoError(t, err)
	assert.Contains(t, string(bDoc), `"Annual Salary Rate":45000`)
}

func TestAggregatesDocument_Shape(t *testing.T) {
	ds := testDataset(t)
	agg := report.BuildAggregates(runEngine(t, ds))

	assert.Equal(t, []string{"2024-03-01", "2024-05-01"}, agg.SnapshotDates)
	assert.Equal(t, "2024-05-01", agg.LatestClassDate)
	assert.Equal(t, "2024-05-01", agg.LatestUnclassDate)
	assert.Equal(t, []string{"Archivist", "Coordinator"}, agg.AllRoles)
	require.Len(t, agg.HistoryStats, 2)
	assert.InDelta(t, 48000, agg.HistoryStats[0].Payroll, 1e-9)
	// 51360 (Avery) + 22500 (blake at 50%).
	assert.InDelta(t, 73860, agg.HistoryStats[1].Payroll, 1e-9)

	// Documents marshal cleanly.
	raw, err := json.Marshal(agg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"peerMedianMap"`)
}
