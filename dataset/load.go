/*
load.go - Document loading and the single fatal condition

PURPOSE:
  Reads the raw employee document from disk, decodes it, and establishes the
  timeline sorting invariant. Per the error design, partial bad data never
  aborts a run; the only fatal condition in the whole core is a source
  document that cannot be read or decoded at all.

SEE ALSO:
  - types.go: document shape
  - engine/driver.go: consumes the loaded, sorted dataset
*/
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrMissingSource is returned when the input document does not exist or is
// unreadable. This is the only fatal error the core produces.
var ErrMissingSource = errors.New("missing source document")

// Load reads and decodes the employee document at path and sorts every
// timeline ascending by date.
func Load(path string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingSource, path, err)
	}
	return Decode(raw)
}

// Decode parses a raw employee document and sorts every timeline.
func Decode(raw []byte) (Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMissingSource, err)
	}
	ds.SortTimelines()
	return ds, nil
}
