/*
Package workbook cross-references an impacted-worker roster against the
aggregation index.

PURPOSE:
  Union and HR offices circulate rosters of affected workers as xlsx
  workbooks. This package reads such a workbook, normalizes the names, and
  matches each roster row against the emitted index document, producing a
  JSON report of matched workers (with their derived payroll summary) and
  roster names with no index counterpart.

NAME MATCHING:
  Rosters and the payroll export disagree on apostrophe style, accents,
  casing, and punctuation. Both sides are collapsed to a bare ascii
  alphanumeric key before comparison: NFKD-decompose, drop combining
  marks, lowercase, drop apostrophes, strip everything non-alphanumeric.

EXCEL DATES:
  Workbook cells sometimes carry dates as Excel serial numbers. Serial
  values are converted to ISO date strings using the 1899-12-30 epoch.

SEE ALSO:
  - match.go: index matching and report assembly
  - report:   the index document consumed here
*/
package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// excelEpoch is the day-zero of Excel's 1900 date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// RosterEntry is one worker row read from the workbook.
type RosterEntry struct {
	Name       string
	Normalized string
	Row        int
}

// Options configures roster reading.
type Options struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // header rows to skip
	NameColumn int    // zero-based column holding the worker name
}

// ReadRoster reads worker names from an xlsx roster.
func ReadRoster(path string, opts Options) ([]RosterEntry, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}

	sheet, err := pickSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var entries []RosterEntry
	for i, row := range sheet.Rows {
		if i < opts.SkipRows {
			continue
		}
		if opts.NameColumn >= len(row.Cells) {
			continue
		}
		name := strings.TrimSpace(row.Cells[opts.NameColumn].String())
		if name == "" {
			continue
		}
		entries = append(entries, RosterEntry{
			Name:       name,
			Normalized: NormalizeName(name),
			Row:        i,
		})
	}
	return entries, nil
}

func pickSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, fmt.Errorf("sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, fmt.Errorf("sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

// NormalizeName collapses a person name to a bare comparison key.
func NormalizeName(value string) string {
	raw := strings.NewReplacer("’", "'", "`", "'").Replace(strings.TrimSpace(value))

	// NFKD + strip combining marks approximates an ascii fold.
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(fold, raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExcelSerialToDate converts an Excel serial-number cell to an ISO date
// string. Non-numeric values pass through unchanged.
func ExcelSerialToDate(value string) string {
	value = strings.TrimSpace(value)
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	return excelEpoch.AddDate(0, 0, int(serial)).Format("2006-01-02")
}
