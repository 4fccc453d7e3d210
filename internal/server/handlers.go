package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/tefas/internal/domain"
	"github.com/aristath/tefas/internal/export"
	"github.com/aristath/tefas/internal/modules/series"
	"github.com/aristath/tefas/internal/modules/statistics"
	"github.com/aristath/tefas/internal/services/analyzer"
	"github.com/aristath/tefas/internal/utils"
)

// StatisticsResponse is the body of GET /api/funds/{code}/statistics
type StatisticsResponse struct {
	Statistics export.Record        `json:"statistics"`
	Allocation domain.AllocationMap `json:"allocation"`
	Benchmark  domain.BenchmarkMap  `json:"benchmark"`
	Removed    series.Removed       `json:"removed"`
}

// CompareEntry is one row of GET /api/funds/compare
type CompareEntry struct {
	FundCode   string         `json:"fund_code"`
	Statistics *export.Record `json:"statistics,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// SnapshotResponse is one entry of GET /api/funds/{code}/history
type SnapshotResponse struct {
	ID         string               `json:"id"`
	CapturedAt time.Time            `json:"captured_at"`
	Statistics export.Record        `json:"statistics"`
	Allocation domain.AllocationMap `json:"allocation,omitempty"`
	Benchmark  domain.BenchmarkMap  `json:"benchmark,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "tefas",
	}

	if s.database != nil {
		if err := s.database.HealthCheck(r.Context()); err != nil {
			response["status"] = "degraded"
			response["database"] = err.Error()
			s.writeJSON(w, http.StatusServiceUnavailable, response)
			return
		}
		response["database"] = "ok"
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleStatistics runs a live analysis. Optional query: start, end (YYYY-MM-DD), format=csv.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.analyzer.AnalyzeWithin(r.Context(), chi.URLParam(r, "code"), window)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	if r.URL.Query().Get("format") == string(export.FormatCSV) {
		w.Header().Set("Content-Type", export.FormatCSV.ContentType())
		w.WriteHeader(http.StatusOK)
		if err := export.WriteCSV(w, report.Statistics); err != nil {
			s.log.Error().Err(err).Msg("Failed to write CSV response")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, StatisticsResponse{
		Statistics: export.FromStatistics(report.Statistics),
		Allocation: report.Allocation,
		Benchmark:  report.Benchmark,
		Removed:    report.Removed,
	})
}

// handleCompare analyses ?codes=A,B,C concurrently
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	codes := utils.ParseCSV(r.URL.Query().Get("codes"))
	if len(codes) == 0 {
		s.writeError(w, http.StatusBadRequest, errors.New("query parameter codes is required"))
		return
	}

	results, err := s.analyzer.Compare(r.Context(), codes)
	if err != nil && len(results) == 0 {
		s.writeError(w, statusFor(err), err)
		return
	}

	entries := make([]CompareEntry, len(results))
	for i, res := range results {
		entries[i] = CompareEntry{FundCode: res.FundCode}
		if res.Err != nil {
			entries[i].Error = res.Err.Error()
			continue
		}
		rec := export.FromStatistics(res.Report.Statistics)
		entries[i].Statistics = &rec
	}

	s.writeJSON(w, http.StatusOK, entries)
}

// handleHistory lists stored snapshots, newest first. Optional query: limit.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("snapshot store not configured"))
		return
	}

	code, err := domain.NormalizeFundCode(chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
	}

	snaps, err := s.snapshots.History(r.Context(), code, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]SnapshotResponse, len(snaps))
	for i, snap := range snaps {
		out[i] = snapshotResponse(snap)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleLatest returns the most recent stored snapshot of a fund, 404 when none
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("snapshot store not configured"))
		return
	}

	code, err := domain.NormalizeFundCode(chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := s.snapshots.Latest(r.Context(), code)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, snapshotResponse(*snap))
}

func snapshotResponse(snap statistics.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:         snap.ID,
		CapturedAt: snap.CapturedAt,
		Statistics: export.FromStatistics(snap.Statistics),
		Allocation: snap.Allocation,
		Benchmark:  snap.Benchmark,
	}
}

// handleListFunds lists fund codes with stored snapshots
func (s *Server) handleListFunds(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("snapshot store not configured"))
		return
	}

	funds, err := s.snapshots.Funds(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if funds == nil {
		funds = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"funds": funds})
}

func parseWindow(r *http.Request) (analyzer.Window, error) {
	var w analyzer.Window
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return w, fmt.Errorf("invalid start date %q (want YYYY-MM-DD)", v)
		}
		w.Start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return w, fmt.Errorf("invalid end date %q (want YYYY-MM-DD)", v)
		}
		w.End = t
	}
	if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
		return w, errors.New("end date is before start date")
	}
	return w, nil
}

// statusFor maps pipeline failures onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidFundCode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFetch):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrExtraction),
		errors.Is(err, domain.ErrStructuralMismatch),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, statistics.ErrSnapshotNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
