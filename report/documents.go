/*
Package report assembles and writes the engine's output documents.

PURPOSE:
  Downstream consumers are static reporting front-ends that read flat JSON
  documents. This package owns those documents' exact shapes and their
  on-disk layout:

    <out>/index.json        name -> denormalized summary entry
    <out>/aggregates.json   dataset-wide time series and rollups
    <out>/people/<b>.json   full employee records bucketed by the
                            lowercased first letter of the name
                            (non-letter falls into the "_" bucket)

DETERMINISM:
  encoding/json sorts map keys, every slice the engine emits is sorted, and
  documents are written whole. Two runs over identical input produce
  byte-identical files.

KEY CONCEPTS IN THIS FILE (documents.go):
  Document structs mirror the contract the dashboard already reads; pay
  figures are emitted as plain numbers, underscore-prefixed fields are
  derived, everything else echoes the source.

SEE ALSO:
  - writer.go: file layout and atomic-enough write-once output
  - engine:    produces the Result these documents are built from
*/
package report

import (
	"sort"
	"unicode"

	"github.com/meridian/payroll-engine/dataset"
	"github.com/meridian/payroll-engine/engine"
)

// =============================================================================
// DOCUMENT SHAPES
// =============================================================================

// IndexEntry is one employee's denormalized summary in the index document.
type IndexEntry struct {
	Meta             dataset.Meta `json:"Meta"`
	HasTimeline      bool         `json:"_hasTimeline"`
	LastDate         string       `json:"_lastDate"`
	LastJob          *dataset.Job `json:"_lastJob"`
	TotalPay         float64      `json:"_totalPay"`
	PayMissing       bool         `json:"_payMissing"`
	IsUnclass        bool         `json:"_isUnclass"`
	IsFullTime       bool         `json:"_isFullTime"`
	RoleStr          string       `json:"_roleStr"`
	SearchStr        string       `json:"_searchStr"`
	ColaReceived     bool         `json:"_colaReceived"`
	ColaChecked      int          `json:"_colaChecked"`
	ColaMissedLabels []string     `json:"_colaMissedLabels"`
	ColaMissing      bool         `json:"_colaMissing"`
	PeerPercentile   *float64     `json:"_peerPercentile"`
	WasExcluded      bool         `json:"_wasExcluded"`
	ExclusionDate    string       `json:"_exclusionDate"`
}

// StatsRow is the serialized form of one history time-series row.
type StatsRow struct {
	Date                string  `json:"date"`
	Classified          int     `json:"classified"`
	Unclassified        int     `json:"unclassified"`
	Payroll             float64 `json:"payroll"`
	PayrollClassified   float64 `json:"payrollClassified"`
	PayrollUnclassified float64 `json:"payrollUnclassified"`
}

// TransitionRow is the serialized form of one yearly transition count.
type TransitionRow struct {
	Year           string `json:"year"`
	ToUnclassified int    `json:"toUnclassified"`
	ToClassified   int    `json:"toClassified"`
}

// Aggregates is the dataset-wide document.
type Aggregates struct {
	LatestClassDate   string                        `json:"latestClassDate"`
	LatestUnclassDate string                        `json:"latestUnclassDate"`
	SnapshotDates     []string                      `json:"snapshotDates"`
	HistoryStats      []StatsRow                    `json:"historyStats"`
	ClassTransitions  []TransitionRow               `json:"classTransitions"`
	PeerMedianMap     map[string]map[string]float64 `json:"peerMedianMap"`
	AllRoles          []string                      `json:"allRoles"`
}

// PersonRecord is one employee's full record in a people bucket document.
type PersonRecord struct {
	Meta          dataset.Meta       `json:"Meta"`
	Timeline      []dataset.Snapshot `json:"Timeline"`
	WasExcluded   bool               `json:"_wasExcluded"`
	ExclusionDate string             `json:"_exclusionDate"`
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// BuildIndex converts engine summaries into the index document.
func BuildIndex(res *engine.Result) map[string]IndexEntry {
	index := make(map[string]IndexEntry, len(res.Employees))
	for name, s := range res.Employees {
		lastJob := s.LastJob
		if lastJob == nil {
			lastJob = &dataset.Job{}
		}
		index[name] = IndexEntry{
			Meta:             s.Meta,
			HasTimeline:      s.HasTimeline,
			LastDate:         s.LastDate,
			LastJob:          lastJob,
			TotalPay:         s.TotalPay.InexactFloat64(),
			PayMissing:       s.PayMissing,
			IsUnclass:        s.IsUnclassified,
			IsFullTime:       s.IsFullTime,
			RoleStr:          s.RoleBlob,
			SearchStr:        s.SearchBlob,
			ColaReceived:     s.Cola.Received,
			ColaChecked:      s.Cola.Checked,
			ColaMissedLabels: s.Cola.Missed,
			ColaMissing:      s.Cola.Missing,
			PeerPercentile:   s.PeerPercentile,
			WasExcluded:      s.WasExcluded,
			ExclusionDate:    s.ExclusionDate,
		}
	}
	return index
}

// BuildAggregates converts the engine result into the aggregates document.
func BuildAggregates(res *engine.Result) Aggregates {
	stats := make([]StatsRow, len(res.HistoryStats))
	for i, r := range res.HistoryStats {
		stats[i] = StatsRow{
			Date:                r.Date,
			Classified:          r.Classified,
			Unclassified:        r.Unclassified,
			Payroll:             r.Payroll.InexactFloat64(),
			PayrollClassified:   r.PayrollClassified.InexactFloat64(),
			PayrollUnclassified: r.PayrollUnclassified.InexactFloat64(),
		}
	}

	transitions := make([]TransitionRow, len(res.ClassTransitions))
	for i, r := range res.ClassTransitions {
		transitions[i] = TransitionRow{Year: r.Year, ToUnclassified: r.ToUnclassified, ToClassified: r.ToClassified}
	}

	medians := make(map[string]map[string]float64, len(res.PeerMedians))
	for date, byKey := range res.PeerMedians {
		medians[date] = make(map[string]float64, len(byKey))
		for key, m := range byKey {
			medians[date][key] = m.InexactFloat64()
		}
	}

	return Aggregates{
		LatestClassDate:   res.LatestClassDate,
		LatestUnclassDate: res.LatestUnclassDate,
		SnapshotDates:     emptyIfNil(res.SnapshotDates),
		HistoryStats:      stats,
		ClassTransitions:  transitions,
		PeerMedianMap:     medians,
		AllRoles:          emptyIfNil(res.AllRoles),
	}
}

// BuildBuckets partitions full employee records by name bucket.
func BuildBuckets(ds dataset.Dataset, res *engine.Result) map[string]map[string]PersonRecord {
	buckets := make(map[string]map[string]PersonRecord)
	for name, emp := range ds {
		bucket := BucketFor(name)
		if buckets[bucket] == nil {
			buckets[bucket] = make(map[string]PersonRecord)
		}
		record := PersonRecord{Meta: emp.Meta, Timeline: emp.Timeline}
		if s, ok := res.Employees[name]; ok {
			record.WasExcluded = s.WasExcluded
			record.ExclusionDate = s.ExclusionDate
		}
		buckets[bucket][name] = record
	}
	return buckets
}

// BucketFor maps a name to its people document bucket: the lowercased first
// letter, or "_" for empty names and non-letter leads.
func BucketFor(name string) string {
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		lower := unicode.ToLower(r)
		if lower >= 'a' && lower <= 'z' {
			return string(lower)
		}
		return "_"
	}
	return "_"
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// sortedKeys is shared by the writer for stable bucket iteration.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
