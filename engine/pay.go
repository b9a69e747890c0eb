/*
Package engine implements the payroll timeline aggregation core.

PURPOSE:
  A single chronological pass over every employee's snapshot history that
  derives: classification-transition counts, COLA eligibility across a fixed
  raise-event table, per-date payroll rollups, and peer-cohort percentile
  rankings of final pay. The pass is built so that fusing or separating its
  subcomputations produces identical results.

PACKAGE MAP:
  pay.go:         snapshot pay derivation (unit-ambiguous salary terms)
  walker.go:      per-employee forward pass + exclusion state machine
  stats.go:       per-date payroll/classification rollups
  peer.go:        cohort buckets, medians, percentile ranks
  cola.go:        raise-event interval pairing and evaluation
  accumulator.go: mergeable phase-1 partials
  driver.go:      two-phase orchestration over the whole dataset

DESIGN PRINCIPLES:
  1. Two phases with a hard barrier: globals (observed dates, cohorts) must
     be complete before any COLA or percentile determination is finalized.
  2. Degrade the record, continue the batch: malformed values zero out one
     field, never fail the run.
  3. Precision: all pay arithmetic uses decimal.Decimal.
  4. Source data is never mutated; derived structures are built fresh.

KEY CONCEPTS IN THIS FILE (pay.go):
  A job whose salary term is the literal "mo" with a rate in (0, 12] is a
  mis-coded monthly multiplier, not an annual figure. Such a job is flagged
  missing and contributes zero pay. This is a data-quality guard, not a unit
  conversion: the engine never tries to annualize it.

SEE ALSO:
  - dataset: input types and numeric normalization
  - report:  output document assembly
*/
package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meridian/payroll-engine/dataset"
)

// monthlyTerm marks a salary rate that is actually a monthly multiplier.
const monthlyTerm = "mo"

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// JobRate derives one job's effective annual rate, appointment percent, and
// whether the rate is considered missing. A "mo"-term rate in (0, 12] is
// flagged missing and zeroed.
func JobRate(job *dataset.Job) (rate, pct decimal.Decimal, missing bool) {
	raw, ok := job.AnnualSalaryRate.Decimal()
	term := strings.TrimSpace(job.SalaryTerm)

	switch {
	case term == monthlyTerm && ok && raw.IsPositive() && raw.LessThanOrEqual(twelve):
		missing = true
		rate = decimal.Zero
	case ok:
		rate = raw
	default:
		rate = decimal.Zero
	}

	pct = job.ApptPercent.DecimalOrZero()
	return rate, pct, missing
}

// SnapshotPay sums pay contributions across a snapshot's jobs. Each job with
// a positive rate contributes rate x (appointment percent / 100). A snapshot
// with no jobs yields zero.
func SnapshotPay(snap *dataset.Snapshot) decimal.Decimal {
	if snap == nil || len(snap.Jobs) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for i := range snap.Jobs {
		rate, pct, _ := JobRate(&snap.Jobs[i])
		if rate.IsPositive() {
			total = total.Add(rate.Mul(pct).Div(hundred))
		}
	}
	return total
}
