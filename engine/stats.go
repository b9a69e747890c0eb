/*
stats.go - Per-date payroll and classification rollups

PURPOSE:
  Maintains the date -> StatsRow mapping that the final history time series
  is built from. Each snapshot visit folds one observation in. Merging two
  maps is pure addition per field, so partial maps built by parallel workers
  combine deterministically regardless of interleaving.

SEE ALSO:
  - walker.go: calls Observe once per dated snapshot
  - accumulator.go: merges partial maps at the phase barrier
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// StatsRow is one observed date's counts and payroll totals split by
// classification status.
type StatsRow struct {
	Date                string
	Classified          int
	Unclassified        int
	Payroll             decimal.Decimal
	PayrollClassified   decimal.Decimal
	PayrollUnclassified decimal.Decimal
}

func (r *StatsRow) add(other *StatsRow) {
	r.Classified += other.Classified
	r.Unclassified += other.Unclassified
	r.Payroll = r.Payroll.Add(other.Payroll)
	r.PayrollClassified = r.PayrollClassified.Add(other.PayrollClassified)
	r.PayrollUnclassified = r.PayrollUnclassified.Add(other.PayrollUnclassified)
}

// StatsMap accumulates one StatsRow per observed date.
type StatsMap map[string]*StatsRow

// Observe folds one dated snapshot into the map.
func (m StatsMap) Observe(date string, pay decimal.Decimal, unclassified bool) {
	row, ok := m[date]
	if !ok {
		row = &StatsRow{Date: date}
		m[date] = row
	}
	row.Payroll = row.Payroll.Add(pay)
	if unclassified {
		row.Unclassified++
		row.PayrollUnclassified = row.PayrollUnclassified.Add(pay)
	} else {
		row.Classified++
		row.PayrollClassified = row.PayrollClassified.Add(pay)
	}
}

// Merge folds another map in. Addition is commutative and associative, so
// merge order does not affect the result.
func (m StatsMap) Merge(other StatsMap) {
	for date, row := range other {
		if mine, ok := m[date]; ok {
			mine.add(row)
		} else {
			clone := *row
			m[date] = &clone
		}
	}
}

// Rows returns the accumulated rows sorted ascending by date.
func (m StatsMap) Rows() []StatsRow {
	rows := make([]StatsRow, 0, len(m))
	for _, row := range m {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows
}
