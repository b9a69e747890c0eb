/*
Package sqlite provides the append-only run archive.

PURPOSE:
  Every aggregation run can be archived: run metadata, the per-employee
  summary rows, and the history stats time series. The archive exists for
  run-over-run comparison (did the COLA miss list shrink after the raise
  landed?) and powers the /api/runs surface.

APPEND-ONLY:
  Runs are never updated or deleted. A re-run over corrected input is a new
  run row; consumers compare by created_at.

KEY TABLES:
  runs:          one row per archived run (uuid primary key)
  run_employees: per-run per-employee summary (derived index fields)
  run_stats:     per-run per-date payroll rollups

PRECISION:
  Pay figures are stored as decimal strings, never floats, and re-parsed
  with shopspring/decimal on load.

WAL MODE:
  SQLite is opened with WAL so archive reads never block a write in flight.

SEE ALSO:
  - engine: produces the Result being archived
  - api:    lists archived runs
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/meridian/payroll-engine/engine"
)

// Store is the SQLite-backed run archive.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the archive at dbPath. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- One row per archived aggregation run (append-only)
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		source_path TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		employee_count INTEGER NOT NULL,
		snapshot_date_count INTEGER NOT NULL
	);

	-- Per-run per-employee derived summary
	CREATE TABLE IF NOT EXISTS run_employees (
		run_id TEXT NOT NULL REFERENCES runs(id),
		name TEXT NOT NULL,
		last_date TEXT NOT NULL,
		total_pay TEXT NOT NULL,
		pay_missing INTEGER NOT NULL,
		is_unclassified INTEGER NOT NULL,
		is_full_time INTEGER NOT NULL,
		cola_received INTEGER NOT NULL,
		cola_checked INTEGER NOT NULL,
		cola_missing INTEGER NOT NULL,
		peer_percentile REAL,
		was_excluded INTEGER NOT NULL,
		exclusion_date TEXT NOT NULL,
		PRIMARY KEY (run_id, name)
	);

	-- Per-run history time series
	CREATE TABLE IF NOT EXISTS run_stats (
		run_id TEXT NOT NULL REFERENCES runs(id),
		date TEXT NOT NULL,
		classified INTEGER NOT NULL,
		unclassified INTEGER NOT NULL,
		payroll TEXT NOT NULL,
		payroll_classified TEXT NOT NULL,
		payroll_unclassified TEXT NOT NULL,
		PRIMARY KEY (run_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_run_employees_name ON run_employees(name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORDS
// =============================================================================

// RunRecord is one archived run's metadata.
type RunRecord struct {
	ID                string
	CreatedAt         time.Time
	SourcePath        string
	OutputDir         string
	EmployeeCount     int
	SnapshotDateCount int
}

// EmployeeRow is one archived per-employee summary.
type EmployeeRow struct {
	RunID          string
	Name           string
	LastDate       string
	TotalPay       decimal.Decimal
	PayMissing     bool
	IsUnclassified bool
	IsFullTime     bool
	ColaReceived   bool
	ColaChecked    int
	ColaMissing    bool
	PeerPercentile *float64
	WasExcluded    bool
	ExclusionDate  string
}

// =============================================================================
// ARCHIVE
// =============================================================================

// ArchiveRun persists a run, its employee summaries, and its stats rows in
// one transaction. Either everything is archived or nothing is.
func (s *Store) ArchiveRun(ctx context.Context, run RunRecord, res *engine.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, source_path, output_dir, employee_count, snapshot_date_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().Format(time.RFC3339),
		run.SourcePath,
		run.OutputDir,
		len(res.Employees),
		len(res.SnapshotDates),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	empStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_employees
		(run_id, name, last_date, total_pay, pay_missing, is_unclassified, is_full_time,
		 cola_received, cola_checked, cola_missing, peer_percentile, was_excluded, exclusion_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare employee insert: %w", err)
	}
	defer empStmt.Close()

	for name, emp := range res.Employees {
		var percentile sql.NullFloat64
		if emp.PeerPercentile != nil {
			percentile = sql.NullFloat64{Float64: *emp.PeerPercentile, Valid: true}
		}
		_, err = empStmt.ExecContext(ctx,
			run.ID,
			name,
			emp.LastDate,
			emp.TotalPay.String(),
			boolInt(emp.PayMissing),
			boolInt(emp.IsUnclassified),
			boolInt(emp.IsFullTime),
			boolInt(emp.Cola.Received),
			emp.Cola.Checked,
			boolInt(emp.Cola.Missing),
			percentile,
			boolInt(emp.WasExcluded),
			emp.ExclusionDate,
		)
		if err != nil {
			return fmt.Errorf("failed to insert employee row %q: %w", name, err)
		}
	}

	statsStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_stats
		(run_id, date, classified, unclassified, payroll, payroll_classified, payroll_unclassified)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare stats insert: %w", err)
	}
	defer statsStmt.Close()

	for _, row := range res.HistoryStats {
		_, err = statsStmt.ExecContext(ctx,
			run.ID,
			row.Date,
			row.Classified,
			row.Unclassified,
			row.Payroll.String(),
			row.PayrollClassified.String(),
			row.PayrollUnclassified.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert stats row %q: %w", row.Date, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// QUERIES
// =============================================================================

// ListRuns returns archived runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, source_path, output_dir, employee_count, snapshot_date_count
		FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &createdAt, &r.SourcePath, &r.OutputDir, &r.EmployeeCount, &r.SnapshotDateCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse archived timestamp %q: %w", createdAt, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunEmployees returns the archived summaries for one run, ordered by name.
func (s *Store) RunEmployees(ctx context.Context, runID string) ([]EmployeeRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, name, last_date, total_pay, pay_missing, is_unclassified, is_full_time,
		       cola_received, cola_checked, cola_missing, peer_percentile, was_excluded, exclusion_date
		FROM run_employees WHERE run_id = ? ORDER BY name ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run employees: %w", err)
	}
	defer rows.Close()

	var out []EmployeeRow
	for rows.Next() {
		var (
			e        EmployeeRow
			totalPay string

			payMissing, isUnclassified, isFullTime, colaReceived, colaMissing, wasExcluded int

			percentile sql.NullFloat64
		)
		err := rows.Scan(&e.RunID, &e.Name, &e.LastDate, &totalPay, &payMissing, &isUnclassified,
			&isFullTime, &colaReceived, &e.ColaChecked, &colaMissing, &percentile, &wasExcluded, &e.ExclusionDate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		e.TotalPay, err = decimal.NewFromString(totalPay)
		if err != nil {
			return nil, fmt.Errorf("failed to parse archived pay %q: %w", totalPay, err)
		}
		e.PayMissing = payMissing != 0
		e.IsUnclassified = isUnclassified != 0
		e.IsFullTime = isFullTime != 0
		e.ColaReceived = colaReceived != 0
		e.ColaMissing = colaMissing != 0
		e.WasExcluded = wasExcluded != 0
		if percentile.Valid {
			p := percentile.Float64
			e.PeerPercentile = &p
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
