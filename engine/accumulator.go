/*
accumulator.go - Mergeable phase-1 partial state

PURPOSE:
  Everything the per-employee walks accumulate globally lives here as one
  explicit object passed by reference into WalkTimeline, instead of
  auto-vivifying containers scattered across the pass. Each worker in a
  parallel phase 1 owns its own Accumulator; a final merge combines them.

MERGE SEMANTICS:
  Every field merges associatively and commutatively: counters add, sets
  union, cohort lists concatenate (sorted later), latest dates take the
  maximum. Worker interleaving therefore cannot affect any computed result.

SEE ALSO:
  - driver.go: owns the merge barrier between phases
*/
package engine

import "sort"

// TransitionRow counts classification flips for one calendar year.
type TransitionRow struct {
	Year           string
	ToUnclassified int
	ToClassified   int
}

// TransitionMap buckets classification transitions by 4-digit year prefix.
type TransitionMap map[string]*TransitionRow

// Observe records one status flip on a dated snapshot.
func (m TransitionMap) Observe(date string, toUnclassified bool) {
	year := date
	if len(year) > 4 {
		year = year[:4]
	}
	if year == "" {
		return
	}
	row, ok := m[year]
	if !ok {
		row = &TransitionRow{Year: year}
		m[year] = row
	}
	if toUnclassified {
		row.ToUnclassified++
	} else {
		row.ToClassified++
	}
}

func (m TransitionMap) Merge(other TransitionMap) {
	for year, row := range other {
		if mine, ok := m[year]; ok {
			mine.ToUnclassified += row.ToUnclassified
			mine.ToClassified += row.ToClassified
		} else {
			clone := *row
			m[year] = &clone
		}
	}
}

// Rows returns transition counts sorted ascending by year.
func (m TransitionMap) Rows() []TransitionRow {
	rows := make([]TransitionRow, 0, len(m))
	for _, row := range m {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows
}

// Accumulator is the shared phase-1 state one worker builds.
type Accumulator struct {
	Stats       StatsMap
	Cohorts     CohortBuckets
	Dates       map[string]struct{}
	Roles       map[string]struct{}
	Transitions TransitionMap

	LatestClassDate   string
	LatestUnclassDate string
}

// NewAccumulator returns an empty accumulator ready for walks.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		Stats:       make(StatsMap),
		Cohorts:     make(CohortBuckets),
		Dates:       make(map[string]struct{}),
		Roles:       make(map[string]struct{}),
		Transitions: make(TransitionMap),
	}
}

// observeLatest tracks the most recent final-snapshot date per status.
func (a *Accumulator) observeLatest(date string, unclassified bool) {
	if unclassified {
		if date > a.LatestUnclassDate {
			a.LatestUnclassDate = date
		}
	} else {
		if date > a.LatestClassDate {
			a.LatestClassDate = date
		}
	}
}

// Merge folds another accumulator in. Associative and commutative in every
// field; safe to apply in any order at the phase barrier.
func (a *Accumulator) Merge(other *Accumulator) {
	a.Stats.Merge(other.Stats)
	a.Cohorts.Merge(other.Cohorts)
	for d := range other.Dates {
		a.Dates[d] = struct{}{}
	}
	for r := range other.Roles {
		a.Roles[r] = struct{}{}
	}
	a.Transitions.Merge(other.Transitions)
	if other.LatestClassDate > a.LatestClassDate {
		a.LatestClassDate = other.LatestClassDate
	}
	if other.LatestUnclassDate > a.LatestUnclassDate {
		a.LatestUnclassDate = other.LatestUnclassDate
	}
}

// SortedDates returns the distinct observed dates ascending.
func (a *Accumulator) SortedDates() []string {
	dates := make([]string, 0, len(a.Dates))
	for d := range a.Dates {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// SortedRoles returns the distinct job titles ascending.
func (a *Accumulator) SortedRoles() []string {
	roles := make([]string, 0, len(a.Roles))
	for r := range a.Roles {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}
