/*
peer.go - Peer cohort buckets, medians, and percentile ranks

PURPOSE:
  Groups final-snapshot pay by (date, organization, job title) and answers
  two questions per cohort: what is the median pay, and where does one value
  rank within the group.

SORT-ONCE CONTRACT:
  Each cohort's pay list is sorted exactly once, at the phase barrier.
  Median and percentile both reuse the sorted list; neither re-sorts.

TIE HANDLING:
  Percentile uses the mean-rank formula
      (countStrictlyBelow + 0.5 x countEqual) / cohortSize x 100
  so tied values share a rank instead of biasing high or low.

SEE ALSO:
  - walker.go: contributes (date, cohort key, pay) per dated snapshot
  - driver.go: finalizes cohorts before any percentile lookup
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// unknownCohortField substitutes for an absent organization or title.
const unknownCohortField = "Unknown"

// CohortKey builds the organization+role grouping key used by both the
// cohort buckets and the emitted peer-median map.
func CohortKey(orgn, title string) string {
	if orgn == "" {
		orgn = unknownCohortField
	}
	if title == "" {
		title = unknownCohortField
	}
	return orgn + "||" + title
}

// CohortBuckets collects pay values per date per cohort key during phase 1.
type CohortBuckets map[string]map[string][]decimal.Decimal

// Add appends one pay observation to the (date, key) cohort.
func (b CohortBuckets) Add(date, key string, pay decimal.Decimal) {
	byKey, ok := b[date]
	if !ok {
		byKey = make(map[string][]decimal.Decimal)
		b[date] = byKey
	}
	byKey[key] = append(byKey[key], pay)
}

// Merge concatenates another bucket set in. Concatenation order only affects
// the pre-sort identity of tie-adjacent entries, never a computed statistic.
func (b CohortBuckets) Merge(other CohortBuckets) {
	for date, byKey := range other {
		mine, ok := b[date]
		if !ok {
			b[date] = byKey
			continue
		}
		for key, values := range byKey {
			mine[key] = append(mine[key], values...)
		}
	}
}

// Finalize sorts every cohort ascending and freezes the result. This is the
// single sort per cohort; all later queries reuse it.
func (b CohortBuckets) Finalize() PeerCohorts {
	for _, byKey := range b {
		for _, values := range byKey {
			sortDecimals(values)
		}
	}
	return PeerCohorts(b)
}

// PeerCohorts is the finalized, sorted form of CohortBuckets. Read-only.
type PeerCohorts map[string]map[string][]decimal.Decimal

// Median returns the median of the (date, key) cohort, or zero when the
// cohort does not exist.
func (c PeerCohorts) Median(date, key string) decimal.Decimal {
	return MedianSorted(c[date][key])
}

// Sizes reports the structural shape (list length per date per key). Used by
// the fusion parity check.
func (c PeerCohorts) Sizes() map[string]map[string]int {
	out := make(map[string]map[string]int, len(c))
	for date, byKey := range c {
		sizes := make(map[string]int, len(byKey))
		for key, values := range byKey {
			sizes[key] = len(values)
		}
		out[date] = sizes
	}
	return out
}

// Percentile ranks pay within the (date, key) cohort. Returns nil when the
// cohort has one or fewer members or pay is not positive: a percentile needs
// at least one other comparable value and a meaningful own value.
func (c PeerCohorts) Percentile(date, key string, pay decimal.Decimal) *float64 {
	values := c[date][key]
	if len(values) <= 1 || !pay.IsPositive() {
		return nil
	}
	below := sort.Search(len(values), func(i int) bool {
		return values[i].GreaterThanOrEqual(pay)
	})
	upper := sort.Search(len(values), func(i int) bool {
		return values[i].GreaterThan(pay)
	})
	equal := upper - below
	rank := (float64(below) + 0.5*float64(equal)) / float64(len(values)) * 100.0
	return &rank
}

// MedianSorted computes the median of an already-sorted list. Even-length
// lists average the two central values; empty lists yield zero.
func MedianSorted(values []decimal.Decimal) decimal.Decimal {
	n := len(values)
	switch n {
	case 0:
		return decimal.Zero
	case 1:
		return values[0]
	}
	mid := n >> 1
	if n&1 == 1 {
		return values[mid]
	}
	return values[mid-1].Add(values[mid]).Div(decimal.NewFromInt(2))
}

func sortDecimals(values []decimal.Decimal) {
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
}
