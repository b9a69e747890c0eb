/*
handlers.go - Read-only HTTP handlers over the emitted documents

PURPOSE:
  The static dashboard fetches the engine's output documents over HTTP.
  These handlers serve them straight from the output directory, plus the
  run archive listing. Nothing here mutates anything: the aggregation is a
  batch job, the server is a viewer.

ENDPOINTS:
  GET /api/index                     index document
  GET /api/aggregates                aggregates document
  GET /api/people/{bucket}           one people bucket document
  GET /api/runs                      archived runs, most recent first
  GET /api/runs/{id}/employees       archived per-employee summaries

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: malformed bucket name
  - 404: document or run not present
  - 500: unreadable document, archive failure
  A missing document is not a server bug: it just means no aggregation run
  has been executed against this output directory yet.

SEE ALSO:
  - server.go: router setup and middleware
  - report:    defines the document layout being served
*/
package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian/payroll-engine/report"
	"github.com/meridian/payroll-engine/store/sqlite"
)

// Handler serves the output documents and the run archive.
type Handler struct {
	outputDir string
	archive   *sqlite.Store // nil when no archive is configured
}

// NewHandler creates a handler over an output directory. archive may be nil.
func NewHandler(outputDir string, archive *sqlite.Store) *Handler {
	return &Handler{outputDir: outputDir, archive: archive}
}

// =============================================================================
// DOCUMENT ENDPOINTS
// =============================================================================

// GetIndex serves the index document.
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	h.serveDocument(w, filepath.Join(h.outputDir, report.IndexFile))
}

// GetAggregates serves the aggregates document.
func (h *Handler) GetAggregates(w http.ResponseWriter, r *http.Request) {
	h.serveDocument(w, filepath.Join(h.outputDir, report.AggregatesFile))
}

// GetPeopleBucket serves one people bucket document. Bucket names are a
// single lowercase letter or "_"; anything else is rejected before it can
// touch the filesystem.
func (h *Handler) GetPeopleBucket(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if !validBucket(bucket) {
		writeError(w, http.StatusBadRequest, "invalid bucket name")
		return
	}
	h.serveDocument(w, filepath.Join(h.outputDir, report.PeopleDir, bucket+".json"))
}

func validBucket(bucket string) bool {
	if len(bucket) != 1 {
		return false
	}
	c := bucket[0]
	return (c >= 'a' && c <= 'z') || c == '_'
}

func (h *Handler) serveDocument(w http.ResponseWriter, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "document not found; run an aggregation first")
			return
		}
		log.Printf("failed to read document %s: %v", path, err)
		writeError(w, http.StatusInternalServerError, "failed to read document")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// =============================================================================
// RUN ARCHIVE ENDPOINTS
// =============================================================================

type runDTO struct {
	ID                string `json:"id"`
	CreatedAt         string `json:"createdAt"`
	SourcePath        string `json:"sourcePath"`
	OutputDir         string `json:"outputDir"`
	EmployeeCount     int    `json:"employeeCount"`
	SnapshotDateCount int    `json:"snapshotDateCount"`
}

// ListRuns serves the archived run history.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "run archive not configured")
		return
	}
	runs, err := h.archive.ListRuns(r.Context())
	if err != nil {
		log.Printf("failed to list runs: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	out := make([]runDTO, len(runs))
	for i, run := range runs {
		out[i] = runDTO{
			ID:                run.ID,
			CreatedAt:         run.CreatedAt.UTC().Format(time.RFC3339),
			SourcePath:        run.SourcePath,
			OutputDir:         run.OutputDir,
			EmployeeCount:     run.EmployeeCount,
			SnapshotDateCount: run.SnapshotDateCount,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type runEmployeeDTO struct {
	Name           string   `json:"name"`
	LastDate       string   `json:"lastDate"`
	TotalPay       float64  `json:"totalPay"`
	PayMissing     bool     `json:"payMissing"`
	IsUnclassified bool     `json:"isUnclassified"`
	IsFullTime     bool     `json:"isFullTime"`
	ColaReceived   bool     `json:"colaReceived"`
	ColaChecked    int      `json:"colaChecked"`
	ColaMissing    bool     `json:"colaMissing"`
	PeerPercentile *float64 `json:"peerPercentile"`
	WasExcluded    bool     `json:"wasExcluded"`
	ExclusionDate  string   `json:"exclusionDate"`
}

// GetRunEmployees serves one archived run's per-employee summaries.
func (h *Handler) GetRunEmployees(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "run archive not configured")
		return
	}
	runID := chi.URLParam(r, "id")
	rows, err := h.archive.RunEmployees(r.Context(), runID)
	if err != nil {
		log.Printf("failed to load run %s: %v", runID, err)
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	out := make([]runEmployeeDTO, len(rows))
	for i, row := range rows {
		out[i] = runEmployeeDTO{
			Name:           row.Name,
			LastDate:       row.LastDate,
			TotalPay:       row.TotalPay.InexactFloat64(),
			PayMissing:     row.PayMissing,
			IsUnclassified: row.IsUnclassified,
			IsFullTime:     row.IsFullTime,
			ColaReceived:   row.ColaReceived,
			ColaChecked:    row.ColaChecked,
			ColaMissing:    row.ColaMissing,
			PeerPercentile: row.PeerPercentile,
			WasExcluded:    row.WasExcluded,
			ExclusionDate:  row.ExclusionDate,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
