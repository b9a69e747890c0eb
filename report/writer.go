/*
writer.go - Output document file layout

PURPOSE:
  Writes the three document families produced by one run. Documents are
  write-once per run: each file is marshaled whole and replaced in a single
  WriteFile call. Nothing here is read back by the engine.

SEE ALSO:
  - documents.go: document shapes and assembly
  - api/: serves these files to the dashboard
*/
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meridian/payroll-engine/dataset"
	"github.com/meridian/payroll-engine/engine"
)

const (
	IndexFile      = "index.json"
	AggregatesFile = "aggregates.json"
	PeopleDir      = "people"
)

// WriteResult summarizes what a Write produced.
type WriteResult struct {
	IndexPath      string
	AggregatesPath string
	BucketCount    int
}

// Write emits index.json, aggregates.json, and the people bucket documents
// under dir.
func Write(dir string, ds dataset.Dataset, res *engine.Result) (*WriteResult, error) {
	peopleDir := filepath.Join(dir, PeopleDir)
	if err := os.MkdirAll(peopleDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	indexPath := filepath.Join(dir, IndexFile)
	if err := writeJSON(indexPath, BuildIndex(res)); err != nil {
		return nil, err
	}

	aggPath := filepath.Join(dir, AggregatesFile)
	if err := writeJSON(aggPath, BuildAggregates(res)); err != nil {
		return nil, err
	}

	buckets := BuildBuckets(ds, res)
	for _, bucket := range sortedKeys(buckets) {
		path := filepath.Join(peopleDir, bucket+".json")
		if err := writeJSON(path, buckets[bucket]); err != nil {
			return nil, err
		}
	}

	return &WriteResult{
		IndexPath:      indexPath,
		AggregatesPath: aggPath,
		BucketCount:    len(buckets),
	}, nil
}

func writeJSON(path string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
