/*
Package dataset defines the input contract for the aggregation engine.

PURPOSE:
  The engine consumes one document: a mapping from employee name to that
  employee's static metadata and chronological employment timeline. This
  package owns the document's shape, its decoding rules, and the sorting
  invariant every downstream pass relies on.

KEY CONCEPTS IN THIS FILE (types.go):
  - Dataset:  name -> Employee, the whole input document
  - Employee: Meta plus an ordered Timeline of Snapshots
  - Snapshot: one dated employment record (source label + jobs)
  - Job:      one position within a snapshot

MESSY-DATA CONTRACT:
  Payroll source data is expected to be dirty. Numeric fields may arrive as
  JSON numbers, currency-formatted strings ("$48,120.00"), or be absent
  entirely. FlexValue (flex.go) preserves the raw token so the engine can
  normalize it without the decoder guessing. No per-record decode error is
  ever fatal; the only fatal condition is a missing source document.

SORTING INVARIANT:
  Timelines are sorted ascending by Date before any walk. Snapshots without
  a date compare as the empty string and therefore sort first.

SEE ALSO:
  - flex.go: FlexValue decoding and normalization
  - load.go: document loading and the single fatal error
  - engine/:  consumes these types, never mutates them
*/
package dataset

import "sort"

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// Dataset is the full input document: employee name -> employee record.
// Name is assumed to be a unique primary key; no dedup logic exists.
type Dataset map[string]*Employee

// Employee owns static metadata and an ordered snapshot timeline.
type Employee struct {
	Meta     Meta       `json:"Meta"`
	Timeline []Snapshot `json:"Timeline"`
}

// Meta is the static per-employee record echoed into outputs.
type Meta struct {
	FirstHired     string `json:"First Hired"`
	HomeOrgn       string `json:"Home Orgn"`
	AdjServiceDate string `json:"Adj Service Date"`
}

// Snapshot is one point-in-time employment record.
type Snapshot struct {
	Date   string `json:"Date,omitempty"`
	Source string `json:"Source,omitempty"`
	Jobs   []Job  `json:"Jobs,omitempty"`
}

// Job is one position within a snapshot. Rate and percent keep their raw
// textual form; see FlexValue for normalization.
type Job struct {
	AnnualSalaryRate FlexValue `json:"Annual Salary Rate,omitempty"`
	SalaryTerm       string    `json:"Salary Term,omitempty"`
	ApptPercent      FlexValue `json:"Appt Percent,omitempty"`
	JobOrgn          string    `json:"Job Orgn,omitempty"`
	JobTitle         string    `json:"Job Title,omitempty"`
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Last returns the final snapshot, or nil for an empty timeline.
func (e *Employee) Last() *Snapshot {
	if e == nil || len(e.Timeline) == 0 {
		return nil
	}
	return &e.Timeline[len(e.Timeline)-1]
}

// Primary returns the first-listed job, the one that defines the peer cohort
// for this snapshot, or nil when the snapshot carries no jobs.
func (s *Snapshot) Primary() *Job {
	if s == nil || len(s.Jobs) == 0 {
		return nil
	}
	return &s.Jobs[0]
}

// SortTimeline orders the employee's snapshots ascending by date.
// Empty dates compare lowest and therefore sort first.
func (e *Employee) SortTimeline() {
	sort.SliceStable(e.Timeline, func(i, j int) bool {
		return e.Timeline[i].Date < e.Timeline[j].Date
	})
}

// SortTimelines applies SortTimeline to every employee in the dataset.
func (d Dataset) SortTimelines() {
	for _, emp := range d {
		emp.SortTimeline()
	}
}
