package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veildata/veil/internal/redact"
	"github.com/veildata/veil/internal/report"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":   "ok",
		"uptime":   time.Since(s.startTime).String(),
		"provider": s.pipeline.Provider().Name(),
	}
	if s.store == nil {
		resp["run_history"] = "disabled"
	}
	writeJSON(w, http.StatusOK, resp)
}

type redactRequest struct {
	Text                string   `json:"text"`
	MinScore            *float64 `json:"min_score,omitempty"`
	MaskOrganizations   bool     `json:"mask_organizations"`
	MaskZIPCodes        bool     `json:"mask_zip_codes"`
	FilterStreetNames   bool     `json:"filter_street_names"`
	OptionalRecognizers []string `json:"optional_recognizers,omitempty"`
}

type redactResponse struct {
	MaskedText     string                  `json:"masked_text"`
	Counts         map[redact.Category]int `json:"counts"`
	FilteredCounts map[redact.Category]int `json:"filtered_counts,omitempty"`
	Records        []report.LineRecord     `json:"records"`
	Lines          int                     `json:"lines"`
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	var req redactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}

	opts := redact.DefaultOptions()
	if req.MinScore != nil {
		if *req.MinScore < 0 || *req.MinScore > 1 {
			writeError(w, http.StatusBadRequest, "invalid_request", "min_score must be in [0,1]")
			return
		}
		opts.MinScore = *req.MinScore
	}
	opts.MaskOrganizations = req.MaskOrganizations
	opts.MaskZIPCodes = req.MaskZIPCodes
	opts.FilterStreetNames = req.FilterStreetNames
	opts.OptionalRecognizers = req.OptionalRecognizers

	summary := redact.NewSummary()
	var maskedLines []string
	records := []report.LineRecord{}

	for _, line := range strings.Split(req.Text, "\n") {
		res, err := s.pipeline.Process(r.Context(), line, opts)
		if err != nil {
			log.Error().Err(err).Msg("redact_failed")
			writeError(w, http.StatusBadGateway, "ner_unavailable", err.Error())
			return
		}
		if res == nil {
			continue
		}
		summary.Fold(res)
		maskedLines = append(maskedLines, res.Masked)
		records = append(records, report.LineRecord{Text: res.Canonical, Entities: res.Entities})
	}

	if s.store != nil {
		rec := &report.RunRecord{
			Provider:       s.pipeline.Provider().Name(),
			Options:        opts,
			Lines:          summary.Lines,
			Counts:         summary.Counts,
			FilteredCounts: summary.FilteredCounts,
		}
		if err := s.store.Save(r.Context(), rec); err != nil {
			log.Warn().Err(err).Msg("run_record_save_failed")
		}
	}

	writeJSON(w, http.StatusOK, redactResponse{
		MaskedText:     strings.Join(maskedLines, "\n"),
		Counts:         summary.Counts,
		FilteredCounts: summary.FilteredCounts,
		Records:        records,
		Lines:          summary.Lines,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "not_found", "run history is disabled")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if records == nil {
		records = []report.RunRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": records})
}
