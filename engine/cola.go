/*
cola.go - Cost-of-living-adjustment interval pairing and evaluation

PURPOSE:
  For each known raise event, find the dataset's observed snapshot dates
  bracketing the event's effective date, then test every employee's
  percentage pay change across that interval against a tolerance-adjusted
  threshold.

TWO STEPS:
  1. Pair construction runs ONCE, after all employees have been walked, over
     the full sorted set of distinct observed dates. beforeDate is the last
     date <= effective; afterDate is the first date >= effective and is
     never overwritten once set. A pair missing either side, or with
     before == after, is skipped for everyone: a coverage gap, not an error.
  2. Per-employee evaluation looks up pay at the pair's exact dates. A
     non-positive baseline skips the pair (no meaningful percentage change
     from a zero or absent baseline).

EXEMPTION:
  Employees whose final classification is unclassified are not subject to
  this determination. Their outcome is fixed:
  {received: true, checked: 0, missed: [], missing: false}.

SEE ALSO:
  - driver.go: supplies the global date set and per-employee pay maps
*/
package engine

import "github.com/shopspring/decimal"

// ColaEvent is one scheduled raise: a label, the effective date, and the
// nominal percentage increase.
type ColaEvent struct {
	Label         string
	EffectiveDate string
	Percent       decimal.Decimal
}

// DefaultColaEvents is the known raise schedule.
var DefaultColaEvents = []ColaEvent{
	{Label: "6.5% COLA", EffectiveDate: "2024-04-01", Percent: decimal.NewFromFloat(6.5)},
	{Label: "2% COLA", EffectiveDate: "2024-11-01", Percent: decimal.NewFromFloat(2.0)},
	{Label: "3.5% COLA", EffectiveDate: "2025-06-01", Percent: decimal.NewFromFloat(3.5)},
}

// DefaultColaTolerance is the allowed shortfall below an event's nominal
// percentage still counted as received.
var DefaultColaTolerance = decimal.NewFromFloat(0.4)

// ColaPair is one event with its bracketing observed dates resolved. Either
// side may be empty when the dataset has no date on that side.
type ColaPair struct {
	Event      ColaEvent
	BeforeDate string
	AfterDate  string
}

// Valid reports whether the pair describes a comparable interval.
func (p ColaPair) Valid() bool {
	return p.BeforeDate != "" && p.AfterDate != "" && p.BeforeDate != p.AfterDate
}

// BuildColaPairs resolves bracketing dates for every event against the full
// ascending set of distinct observed dates. With sorted input, before is the
// last date <= effective and after the first date >= effective, so a valid
// pair always has before < after.
func BuildColaPairs(sortedDates []string, events []ColaEvent) []ColaPair {
	if len(sortedDates) == 0 {
		return nil
	}
	pairs := make([]ColaPair, 0, len(events))
	for _, event := range events {
		pair := ColaPair{Event: event}
		for _, d := range sortedDates {
			if d <= event.EffectiveDate {
				pair.BeforeDate = d
			}
			if pair.AfterDate == "" && d >= event.EffectiveDate {
				pair.AfterDate = d
			}
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// ColaOutcome is one employee's determination across all events.
type ColaOutcome struct {
	Received bool
	Checked  int
	Missed   []string
	Missing  bool
}

// exemptOutcome is the fixed result for unclassified-final employees.
func exemptOutcome() ColaOutcome {
	return ColaOutcome{Received: true, Checked: 0, Missed: []string{}, Missing: false}
}

// EvaluateCola runs every valid pair against one employee's pay-by-date map.
// One success anywhere sets Received permanently; each failure appends the
// event's label to Missed.
func EvaluateCola(payByDate map[string]decimal.Decimal, finalUnclassified bool, pairs []ColaPair, tolerance decimal.Decimal) ColaOutcome {
	if finalUnclassified {
		return exemptOutcome()
	}

	outcome := ColaOutcome{Missed: []string{}}
	for _, pair := range pairs {
		if !pair.Valid() {
			continue
		}
		before := payByDate[pair.BeforeDate]
		after := payByDate[pair.AfterDate]
		if !before.IsPositive() {
			continue
		}
		outcome.Checked++
		pctChange := after.Sub(before).Div(before).Mul(hundred)
		if pctChange.GreaterThanOrEqual(pair.Event.Percent.Sub(tolerance)) {
			outcome.Received = true
		} else {
			outcome.Missed = append(outcome.Missed, pair.Event.Label)
		}
	}
	outcome.Missing = !outcome.Received && outcome.Checked > 0
	return outcome
}
