/*
walker.go - Single forward pass over one employee's timeline

PURPOSE:
  Visits an employee's date-sorted snapshots exactly once, feeding the
  shared phase-1 accumulator (stats, cohorts, observed dates, roles,
  transitions) and producing the per-employee material phase 2 needs:
  the pay-by-date map, last-snapshot summary, and exclusion outcome.

CLASSIFICATION:
  A snapshot is unclassified when its free-text source label contains
  "unclass", case-insensitively.

EXCLUSION TRACKING:
  A small state machine tracks the exclusion outcome explicitly.
  An employee who STARTED classified and later transitions classified ->
  unclassified becomes excluded; the first dated such transition fixes the
  exclusion date. Reporting is gated on the LAST snapshot being
  unclassified: someone who returns to classified status is not reported
  as currently excluded even though the transition occurred.

SEE ALSO:
  - pay.go: snapshot pay and the missing-rate flag
  - accumulator.go: the shared structures this pass feeds
*/
package engine

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meridian/payroll-engine/dataset"
)

// IsUnclassified interprets a snapshot's free-text source label.
func IsUnclassified(source string) bool {
	return strings.Contains(strings.ToLower(source), "unclass")
}

// =============================================================================
// EXCLUSION STATE MACHINE
// =============================================================================

type exclusionState int

const (
	neverExcluded exclusionState = iota
	excludedAwaitingDate // transition seen, but it carried no date
	excluded
)

// exclusionTracker drives the three-state exclusion machine across one
// timeline walk.
type exclusionTracker struct {
	state exclusionState
	date  string
}

// observe consumes one classified -> unclassified transition. Only employees
// who started classified can become excluded; the first dated transition
// fixes the exclusion date.
func (t *exclusionTracker) observe(startedClassified bool, date string) {
	if !startedClassified {
		return
	}
	switch t.state {
	case neverExcluded, excludedAwaitingDate:
		if date != "" {
			t.state = excluded
			t.date = date
		} else {
			t.state = excludedAwaitingDate
		}
	case excluded:
		// Sticky; the first dated transition wins.
	}
}

func (t *exclusionTracker) wasExcluded() bool { return t.state != neverExcluded }

// =============================================================================
// WALK RESULT
// =============================================================================

// WalkResult is one employee's per-walk output, consumed by phase 2 and the
// index assembly.
type WalkResult struct {
	HasTimeline bool
	LastDate    string
	LastJob     *dataset.Job

	TotalPay   decimal.Decimal
	PayMissing bool
	IsFullTime bool

	// Final-snapshot classification; gates COLA exemption and exclusion
	// reporting.
	IsUnclassified bool

	// Sticky exclusion outcome, already gated on the final status.
	WasExcluded   bool
	ExclusionDate string

	// Pay keyed by snapshot date, for COLA interval lookups.
	PayByDate map[string]decimal.Decimal

	// Sorted lowercased distinct titles across the whole timeline.
	Roles []string

	// Peer cohort reference from the final snapshot, empty when the last
	// snapshot has no date or no jobs.
	LastCohortDate string
	LastCohortKey  string
}

// WalkTimeline runs the single forward pass for one employee, folding shared
// observations into acc. The employee's timeline must already be sorted.
func WalkTimeline(emp *dataset.Employee, acc *Accumulator) WalkResult {
	res := WalkResult{
		TotalPay:  decimal.Zero,
		PayByDate: make(map[string]decimal.Decimal, len(emp.Timeline)),
	}
	if len(emp.Timeline) == 0 {
		return res
	}
	res.HasTimeline = true

	var (
		prevUnclassified  bool
		seenFirst         bool
		startedClassified bool
		tracker           exclusionTracker
		roleSet           = make(map[string]struct{})
	)

	last := len(emp.Timeline) - 1
	for i := range emp.Timeline {
		snap := &emp.Timeline[i]
		date := snap.Date
		if date != "" {
			acc.Dates[date] = struct{}{}
		}

		isUnclassified := IsUnclassified(snap.Source)
		if !seenFirst {
			startedClassified = !isUnclassified
		}

		if seenFirst && !prevUnclassified && isUnclassified {
			tracker.observe(startedClassified, date)
		}
		if seenFirst && isUnclassified != prevUnclassified && date != "" {
			acc.Transitions.Observe(date, isUnclassified)
		}

		for j := range snap.Jobs {
			if title := snap.Jobs[j].JobTitle; title != "" {
				acc.Roles[title] = struct{}{}
				roleSet[strings.ToLower(title)] = struct{}{}
			}
		}

		pay := SnapshotPay(snap)
		if date != "" {
			res.PayByDate[date] = pay
			acc.Stats.Observe(date, pay, isUnclassified)
			if primary := snap.Primary(); primary != nil {
				acc.Cohorts.Add(date, CohortKey(primary.JobOrgn, primary.JobTitle), pay)
			}
		}

		if i == last {
			res.LastDate = date
			res.LastJob = snap.Primary()
			res.TotalPay = pay
			res.IsUnclassified = isUnclassified
			for j := range snap.Jobs {
				_, pct, missing := JobRate(&snap.Jobs[j])
				if missing {
					res.PayMissing = true
				}
				if pct.GreaterThanOrEqual(hundred) {
					res.IsFullTime = true
				}
			}
			if date != "" && res.LastJob != nil {
				res.LastCohortDate = date
				res.LastCohortKey = CohortKey(res.LastJob.JobOrgn, res.LastJob.JobTitle)
			}
		}

		prevUnclassified = isUnclassified
		seenFirst = true
	}

	if res.LastDate != "" {
		acc.observeLatest(res.LastDate, res.IsUnclassified)
	}

	// Exclusion is only reported while the employee remains unclassified.
	if res.IsUnclassified && tracker.wasExcluded() {
		res.WasExcluded = true
		res.ExclusionDate = tracker.date
	}

	res.Roles = make([]string, 0, len(roleSet))
	for role := range roleSet {
		res.Roles = append(res.Roles, role)
	}
	sort.Strings(res.Roles)

	return res
}
