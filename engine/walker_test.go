package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/payroll-engine/engine"
)

// =============================================================================
// CLASSIFICATION + EXCLUSION TRACKING
// =============================================================================

func TestIsUnclassified_CaseInsensitiveSubstring(t *testing.T) {
	assert.True(t, engine.IsUnclassified("Unclassified Staff"))
	assert.True(t, engine.IsUnclassified("UNCLASS list"))
	assert.False(t, engine.IsUnclassified("Classified"))
	assert.False(t, engine.IsUnclassified(""))
}

func TestWalk_ExclusionReportedWhileUnclassified(t *testing.T) {
	// GIVEN: started classified, transitioned to unclassified, stayed there
	acc := engine.NewAccumulator()
	res := engine.WalkTimeline(employee(
		snap("2024-01-01", "Classified", fullTimeJob(50000, "Library", "Archivist")),
		snap("2024-06-01", "Unclassified", fullTimeJob(50000, "Library", "Archivist")),
	), acc)

	assert.True(t, res.WasExcluded)
	assert.Equal(t, "2024-06-01", res.ExclusionDate)
}

func TestWalk_ExclusionGatedOnFinalStatus(t *testing.T) {
	// GIVEN: classified -> unclassified -> classified
	// THEN: no exclusion is reported, even though the transition occurred,
	//       because the final status is classified again.
	acc := engine.NewAccumulator()
	res := engine.WalkTimeline(employee(
		snap("2024-01-01", "Classified", fullTimeJob(50000, "Library", "Archivist")),
		snap("2024-06-01", "Unclassified", fullTimeJob(50000, "Library", "Archivist")),
		snap("2024-09-01", "Classified", fullTimeJob(50000, "Library", "Archivist")),
	), acc)

	assert.False(t, res.WasExcluded)
	assert.Empty(t, res.ExclusionDate)
}

func TestWalk_StartedUnclassifiedNeverExcluded(t *testing.T) {
	// An employee who started unclassified cannot become excluded, no matter
	// how many status flips follow.
	acc := engine.NewAccumulator()
	res := engine.WalkTimeline(employee(
		snap("2024-01-01", "Unclassified", fullTimeJob(50000, "", "")),
		snap("2024-03-01", "Classified", fullTimeJob(50000, "", "")),
		snap("2024-06-01", "Unclassified", fullTimeJob(50000, "", "")),
	), acc)

	assert.False(t, res.WasExcluded)
	assert.Empty(t, res.ExclusionDate)
}

func TestWalk_FirstExclusionDateSticks(t *testing.T) {
	// Two classified -> unclassified transitions; the first dated one wins.
	acc := engine.NewAccumulator()
	res := engine.WalkTimeline(employee(
		snap("2024-01-01", "Classified", fullTimeJob(50000, "", "")),
		snap("2024-03-01", "Unclassified", fullTimeJob(50000, "", "")),
		snap("2024-06-01", "Classified", fullTimeJob(50000, "", "")),
		snap("2024-09-01", "Unclassified", fullTimeJob(50000, "", "")),
	), acc)

	assert.True(t, res.WasExcluded)
	assert.Equal(t, "2024-03-01", res.ExclusionDate)
}

// =============================================================================
// TRANSITION COUNTS
// =============================================================================

func TestWalk_TransitionsBucketedByYear(t *testing.T) {
	acc := engine.NewAccumulator()
	engine.WalkTimeline(employee(
		snap("2023-06-01", "Classified", fullTimeJob(50000, "", "")),
		snap("2024-01-01", "Unclassified", fullTimeJob(50000, "", "")),
		snap("2024-06-01", "Classified", fullTimeJob(50000, "", "")),
	), acc)

	rows := acc.Transitions.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "2024", rows[0].Year)
	assert.Equal(t, 1, rows[0].ToUnclassified)
	assert.Equal(t, 1, rows[0].ToClassified)
}

func TestWalk_UndatedTransitionNotCounted(t *testing.T) {
	// A status flip on a snapshot without a date leaves no year to bucket by.
	acc := engine.NewAccumulator()
	engine.WalkTimeline(employee(
		snap("", "Unclassified", fullTimeJob(50000, "", "")),
		snap("2024-01-01", "Classified", fullTimeJob(50000, "", "")),
	), acc)

	// The undated snapshot sorts first; the dated flip IS counted, the
	// undated one is not present at all.
	rows := acc.Transitions.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].ToClassified)
	assert.Equal(t, 0, rows[0].ToUnclassified)
}

// =============================================================================
// LAST-SNAPSHOT SUMMARY
// =============================================================================

func TestWalk_LastSnapshotSummary(t *testing.T) {
	acc := engine.NewAccumulator()
	res := engine.WalkTimeline(employee(
		snap("2024-01-01", "Classified", fullTimeJob(40000, "Library", "Archivist")),
		snap("2024-06-01", "Classified",
			fullTimeJob(52000, "Library", "Archivist"),
			job("6", "mo", 25, "Library", "Instructor"),
		),
	), acc)

	assert.Equal(t, "2024-06-01", res.LastDate)
	require.NotNil(t, res.LastJob)
	assert.Equal(t, "Archivist", res.LastJob.JobTitle)
	// The mo-term job contributes nothing but flags the snapshot.
	assert.True(t, res.TotalPay.Equal(dec(52000)))
	assert.True(t, res.PayMissing)
	assert.True(t, res.IsFullTime)
	assert.False(t, res.IsUnclassified)
}

func TestWalk_PartTimeOnly(t *testing.T) {
	acc := engine.NewAccumulator()
	res := engine.WalkTimeline(employee(
		snap("2024-06-01", "Classified", job("40000", "", 75, "Library", "Archivist")),
	), acc)

	assert.False(t, res.IsFullTime)
	assert.True(t, res.TotalPay.Equal(dec(30000)))
}

func TestWalk_UndatedSnapshotStillProcessed(t *testing.T) {
	// Undated snapshots feed no date-keyed structure but still drive
	// classification state and the final summary.
	acc := engine.NewAccumulator()
	res := engine.WalkTimeline(employee(
		snap("", "Classified", fullTimeJob(45000, "Library", "Archivist")),
	), acc)

	assert.True(t, res.HasTimeline)
	assert.Empty(t, res.LastDate)
	assert.True(t, res.TotalPay.Equal(dec(45000)))
	assert.Empty(t, res.PayByDate)
	assert.Empty(t, acc.Stats)
	assert.Empty(t, acc.Dates)
}

func TestWalk_EmptyTimeline(t *testing.T) {
	acc := engine.NewAccumulator()
	res := engine.WalkTimeline(employee(), acc)

	assert.False(t, res.HasTimeline)
	assert.Nil(t, res.LastJob)
	assert.True(t, res.TotalPay.IsZero())
}

func TestWalk_RolesCollectedAcrossTimeline(t *testing.T) {
	acc := engine.NewAccumulator()
	res := engine.WalkTimeline(employee(
		snap("2024-01-01", "Classified", fullTimeJob(40000, "Library", "Archivist")),
		snap("2024-06-01", "Classified", fullTimeJob(42000, "Library", "Senior Archivist")),
	), acc)

	assert.Equal(t, []string{"archivist", "senior archivist"}, res.Roles)
	assert.Contains(t, acc.Roles, "Archivist")
	assert.Contains(t, acc.Roles, "Senior Archivist")
}
