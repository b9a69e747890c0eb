/*
driver.go - Two-phase orchestration over the whole dataset

PURPOSE:
  Phase 1 walks every employee once, producing per-employee WalkResults and
  a fully merged Accumulator. Phase 2 (COLA pairing/evaluation and peer
  percentile lookups) needs globally complete state: every observed date,
  every cohort member. It therefore only accepts the immutable
  PhaseOneResult the barrier produces, so the type system enforces the
  phase ordering.

PARALLELISM:
  Per-employee walks are independent. With Workers > 1, phase 1 shards the
  employee set across an errgroup; each worker owns a private Accumulator
  and the barrier merges them. Every merge is associative, so worker
  interleaving cannot change any result. Workers = 1 is a plain sequential
  pass and the default.

SEE ALSO:
  - accumulator.go: the mergeable partials
  - cola.go, peer.go: the phase-2 consumers
*/
package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/meridian/payroll-engine/dataset"
)

// Options tunes a run. The zero value selects the defaults.
type Options struct {
	// Workers is the phase-1 worker count; <= 1 means sequential.
	Workers int
	// Events overrides the raise schedule; nil means DefaultColaEvents.
	Events []ColaEvent
	// Tolerance overrides the COLA tolerance; nil means DefaultColaTolerance.
	Tolerance *decimal.Decimal
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Events == nil {
		o.Events = DefaultColaEvents
	}
	if o.Tolerance == nil {
		tol := DefaultColaTolerance
		o.Tolerance = &tol
	}
	return o
}

// =============================================================================
// PHASE 1
// =============================================================================

// PhaseOneResult is the immutable product of the merge barrier. Phase 2
// functions accept only this type, never a partially walked dataset.
type PhaseOneResult struct {
	Walks       map[string]WalkResult
	Acc         *Accumulator
	Cohorts     PeerCohorts
	SortedDates []string
}

// RunPhaseOne walks every employee and merges all partial state. Timelines
// must already be sorted (dataset.Load guarantees this).
func RunPhaseOne(ctx context.Context, ds dataset.Dataset, opts Options) (*PhaseOneResult, error) {
	opts = opts.withDefaults()

	names := make([]string, 0, len(ds))
	for name := range ds {
		names = append(names, name)
	}
	sort.Strings(names)

	acc := NewAccumulator()
	walks := make(map[string]WalkResult, len(names))

	if opts.Workers == 1 {
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			walks[name] = WalkTimeline(ds[name], acc)
		}
	} else {
		type partial struct {
			acc   *Accumulator
			walks map[string]WalkResult
		}
		shards := shardNames(names, opts.Workers)
		partials := make([]partial, len(shards))

		g, gctx := errgroup.WithContext(ctx)
		for i, shard := range shards {
			i, shard := i, shard
			g.Go(func() error {
				p := partial{acc: NewAccumulator(), walks: make(map[string]WalkResult, len(shard))}
				for _, name := range shard {
					if err := gctx.Err(); err != nil {
						return err
					}
					p.walks[name] = WalkTimeline(ds[name], p.acc)
				}
				partials[i] = p
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		// Merge barrier. Order over partials is fixed but irrelevant: every
		// merge is associative and commutative.
		for _, p := range partials {
			acc.Merge(p.acc)
			for name, w := range p.walks {
				walks[name] = w
			}
		}
	}

	return &PhaseOneResult{
		Walks:       walks,
		Acc:         acc,
		Cohorts:     acc.Cohorts.Finalize(),
		SortedDates: acc.SortedDates(),
	}, nil
}

func shardNames(names []string, workers int) [][]string {
	if workers > len(names) {
		workers = len(names)
	}
	if workers < 1 {
		workers = 1
	}
	shards := make([][]string, 0, workers)
	size := (len(names) + workers - 1) / workers
	for start := 0; start < len(names); start += size {
		end := start + size
		if end > len(names) {
			end = len(names)
		}
		shards = append(shards, names[start:end])
	}
	return shards
}

// =============================================================================
// PHASE 2 + RESULT ASSEMBLY
// =============================================================================

// EmployeeSummary is one employee's derived index material.
type EmployeeSummary struct {
	Meta        dataset.Meta
	HasTimeline bool
	LastDate    string
	LastJob     *dataset.Job

	TotalPay       decimal.Decimal
	PayMissing     bool
	IsUnclassified bool
	IsFullTime     bool

	RoleBlob   string
	SearchBlob string

	Cola           ColaOutcome
	PeerPercentile *float64

	WasExcluded   bool
	ExclusionDate string
}

// Result is the complete output of one aggregation run.
type Result struct {
	Employees map[string]*EmployeeSummary

	LatestClassDate   string
	LatestUnclassDate string
	SnapshotDates     []string
	HistoryStats      []StatsRow
	ClassTransitions  []TransitionRow
	PeerMedians       map[string]map[string]decimal.Decimal
	AllRoles          []string
}

// Run executes both phases over the dataset.
func Run(ctx context.Context, ds dataset.Dataset, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	phase1, err := RunPhaseOne(ctx, ds, opts)
	if err != nil {
		return nil, err
	}
	return Finalize(ds, phase1, opts), nil
}

// Finalize is phase 2: COLA pairing and evaluation, percentile lookups, and
// summary assembly. It only ever reads the barrier's product.
func Finalize(ds dataset.Dataset, phase1 *PhaseOneResult, opts Options) *Result {
	opts = opts.withDefaults()

	pairs := BuildColaPairs(phase1.SortedDates, opts.Events)

	employees := make(map[string]*EmployeeSummary, len(phase1.Walks))
	for name, walk := range phase1.Walks {
		summary := &EmployeeSummary{
			Meta:           ds[name].Meta,
			HasTimeline:    walk.HasTimeline,
			LastDate:       walk.LastDate,
			LastJob:        walk.LastJob,
			TotalPay:       walk.TotalPay,
			PayMissing:     walk.PayMissing,
			IsUnclassified: walk.IsUnclassified,
			IsFullTime:     walk.IsFullTime,
			RoleBlob:       strings.Join(walk.Roles, "\x00"),
			SearchBlob:     searchBlob(name, ds[name].Meta, walk.LastJob),
			WasExcluded:    walk.WasExcluded,
			ExclusionDate:  walk.ExclusionDate,
		}

		summary.Cola = EvaluateCola(walk.PayByDate, walk.IsUnclassified, pairs, *opts.Tolerance)

		if walk.LastCohortDate != "" {
			summary.PeerPercentile = phase1.Cohorts.Percentile(
				walk.LastCohortDate, walk.LastCohortKey, walk.TotalPay)
		}

		employees[name] = summary
	}

	medians := make(map[string]map[string]decimal.Decimal, len(phase1.Cohorts))
	for date, byKey := range phase1.Cohorts {
		medians[date] = make(map[string]decimal.Decimal, len(byKey))
		for key, values := range byKey {
			medians[date][key] = MedianSorted(values)
		}
	}

	return &Result{
		Employees:         employees,
		LatestClassDate:   phase1.Acc.LatestClassDate,
		LatestUnclassDate: phase1.Acc.LatestUnclassDate,
		SnapshotDates:     phase1.SortedDates,
		HistoryStats:      phase1.Acc.Stats.Rows(),
		ClassTransitions:  phase1.Acc.Transitions.Rows(),
		PeerMedians:       medians,
		AllRoles:          phase1.Acc.SortedRoles(),
	}
}

// searchBlob builds the lowercased free-text search string for the index.
func searchBlob(name string, meta dataset.Meta, lastJob *dataset.Job) string {
	role, orgn := "", ""
	if lastJob != nil {
		role = lastJob.JobTitle
		orgn = lastJob.JobOrgn
	}
	return strings.ToLower(name + " " + meta.HomeOrgn + " " + meta.FirstHired + " " + role + " " + orgn)
}
