/*
parity.go - Fused-vs-separated pass equivalence check

PURPOSE:
  The engine computes stats rollups and peer cohort buckets in one fused
  walk. This file rebuilds both from scratch in two independent,
  deliberately naive passes and compares: stats values must match exactly,
  and cohort structure (list length per date per key) must match. The
  repository verifies this property itself; it is what makes fusing and
  splitting the pass interchangeable.

SEE ALSO:
  - walker.go: the fused pass under test
  - cmd/payrollengine: the verify command
*/
package engine

import (
	"fmt"

	"github.com/meridian/payroll-engine/dataset"
)

// statsOnlyPass rebuilds the stats map alone, without the walker.
func statsOnlyPass(ds dataset.Dataset) StatsMap {
	stats := make(StatsMap)
	for _, emp := range ds {
		for i := range emp.Timeline {
			snap := &emp.Timeline[i]
			if snap.Date == "" {
				continue
			}
			stats.Observe(snap.Date, SnapshotPay(snap), IsUnclassified(snap.Source))
		}
	}
	return stats
}

// cohortsOnlyPass rebuilds the cohort buckets alone, without the walker.
func cohortsOnlyPass(ds dataset.Dataset) CohortBuckets {
	cohorts := make(CohortBuckets)
	for _, emp := range ds {
		for i := range emp.Timeline {
			snap := &emp.Timeline[i]
			if snap.Date == "" {
				continue
			}
			primary := snap.Primary()
			if primary == nil {
				continue
			}
			cohorts.Add(snap.Date, CohortKey(primary.JobOrgn, primary.JobTitle), SnapshotPay(snap))
		}
	}
	return cohorts
}

// VerifyFusionParity runs the fused walk and the two separated passes over
// the same dataset and reports the first divergence, or nil when they agree.
func VerifyFusionParity(ds dataset.Dataset) error {
	fused := NewAccumulator()
	for _, emp := range ds {
		WalkTimeline(emp, fused)
	}

	if err := compareStats(fused.Stats, statsOnlyPass(ds)); err != nil {
		return fmt.Errorf("stats parity: %w", err)
	}
	if err := compareCohortSizes(fused.Cohorts, cohortsOnlyPass(ds)); err != nil {
		return fmt.Errorf("cohort parity: %w", err)
	}
	return nil
}

func compareStats(fused, separate StatsMap) error {
	if len(fused) != len(separate) {
		return fmt.Errorf("date count mismatch: fused %d, separate %d", len(fused), len(separate))
	}
	for date, f := range fused {
		s, ok := separate[date]
		if !ok {
			return fmt.Errorf("date %s missing from separate pass", date)
		}
		switch {
		case f.Classified != s.Classified:
			return fmt.Errorf("%s classified: fused %d, separate %d", date, f.Classified, s.Classified)
		case f.Unclassified != s.Unclassified:
			return fmt.Errorf("%s unclassified: fused %d, separate %d", date, f.Unclassified, s.Unclassified)
		case !f.Payroll.Equal(s.Payroll):
			return fmt.Errorf("%s payroll: fused %s, separate %s", date, f.Payroll, s.Payroll)
		case !f.PayrollClassified.Equal(s.PayrollClassified):
			return fmt.Errorf("%s payrollClassified: fused %s, separate %s", date, f.PayrollClassified, s.PayrollClassified)
		case !f.PayrollUnclassified.Equal(s.PayrollUnclassified):
			return fmt.Errorf("%s payrollUnclassified: fused %s, separate %s", date, f.PayrollUnclassified, s.PayrollUnclassified)
		}
	}
	return nil
}

func compareCohortSizes(fused, separate CohortBuckets) error {
	if len(fused) != len(separate) {
		return fmt.Errorf("date count mismatch: fused %d, separate %d", len(fused), len(separate))
	}
	for date, fusedByKey := range fused {
		separateByKey, ok := separate[date]
		if !ok {
			return fmt.Errorf("date %s missing from separate pass", date)
		}
		if len(fusedByKey) != len(separateByKey) {
			return fmt.Errorf("%s key count mismatch: fused %d, separate %d", date, len(fusedByKey), len(separateByKey))
		}
		for key, values := range fusedByKey {
			if len(values) != len(separateByKey[key]) {
				return fmt.Errorf("%s %s size: fused %d, separate %d", date, key, len(values), len(separateByKey[key]))
			}
		}
	}
	return nil
}
