/*
match.go - Roster-to-index matching and report assembly

SEE ALSO:
  - roster.go: workbook reading and name normalization
*/
package workbook

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/meridian/payroll-engine/report"
)

// MatchedWorker is one roster row resolved against the index.
type MatchedWorker struct {
	RosterName     string   `json:"rosterName"`
	IndexName      string   `json:"indexName"`
	LastDate       string   `json:"lastDate"`
	TotalPay       float64  `json:"totalPay"`
	IsUnclassified bool     `json:"isUnclassified"`
	IsFullTime     bool     `json:"isFullTime"`
	WasExcluded    bool     `json:"wasExcluded"`
	ExclusionDate  string   `json:"exclusionDate"`
	ColaReceived   bool     `json:"colaReceived"`
	ColaMissing    bool     `json:"colaMissing"`
	PeerPercentile *float64 `json:"peerPercentile"`
}

// MatchReport is the emitted cross-reference document.
type MatchReport struct {
	Matched   []MatchedWorker `json:"matched"`
	Unmatched []string        `json:"unmatched"`
}

// Match resolves roster entries against the index by normalized name.
// Ambiguous normalized keys (two index names collapsing to one key) keep
// the lexicographically first index name.
func Match(roster []RosterEntry, index map[string]report.IndexEntry) MatchReport {
	byKey := make(map[string]string, len(index))

	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key := NormalizeName(name)
		if key == "" {
			continue
		}
		if _, taken := byKey[key]; !taken {
			byKey[key] = name
		}
	}

	rep := MatchReport{Matched: []MatchedWorker{}, Unmatched: []string{}}
	for _, entry := range roster {
		indexName, ok := byKey[entry.Normalized]
		if !ok {
			rep.Unmatched = append(rep.Unmatched, entry.Name)
			continue
		}
		idx := index[indexName]
		rep.Matched = append(rep.Matched, MatchedWorker{
			RosterName:     entry.Name,
			IndexName:      indexName,
			LastDate:       idx.LastDate,
			TotalPay:       idx.TotalPay,
			IsUnclassified: idx.IsUnclass,
			IsFullTime:     idx.IsFullTime,
			WasExcluded:    idx.WasExcluded,
			ExclusionDate:  idx.ExclusionDate,
			ColaReceived:   idx.ColaReceived,
			ColaMissing:    idx.ColaMissing,
			PeerPercentile: idx.PeerPercentile,
		})
	}
	return rep
}

// LoadIndex reads an emitted index document back for matching.
func LoadIndex(path string) (map[string]report.IndexEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}
	var index map[string]report.IndexEntry
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", path, err)
	}
	return index, nil
}

// WriteReport emits the cross-reference document.
func WriteReport(path string, rep MatchReport) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
