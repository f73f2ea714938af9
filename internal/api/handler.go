package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"chart-analyst/config"
	"chart-analyst/indicators"
	"chart-analyst/internal/app"
	"chart-analyst/models"
	"chart-analyst/observability"
)

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, map[string]interface{}{
		"status":   "ok",
		"backend":  h.cfg.Analysis.Backend,
		"provider": h.cfg.HTTP.MarketDataProvider,
	})
}

type fetchRequest struct {
	Ticker string `json:"ticker"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// HandleFetch fetches daily bars for a ticker and stores them as the
// session series
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		h.jsonError(w, "invalid start date: "+err.Error(), http.StatusBadRequest)
		return
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		h.jsonError(w, "invalid end date: "+err.Error(), http.StatusBadRequest)
		return
	}

	series, err := h.app.FetchData(r.Context(), strings.ToUpper(strings.TrimSpace(req.Ticker)), start, end)
	if err != nil {
		observability.WithTicker(req.Ticker).Error("fetch failed", "error", err)
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"ticker": req.Ticker,
		"bars":   series,
		"count":  len(series),
	})
}

// HandleIndicators computes the selected indicator subset over the session
// series. Names come as a comma-separated list: sma,ema,bollinger,vwap.
func (h *Handler) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	names := r.URL.Query().Get("names")
	if names == "" {
		h.jsonError(w, "names query parameter is required", http.StatusBadRequest)
		return
	}

	var specs []indicators.Spec
	for _, name := range strings.Split(names, ",") {
		spec, err := indicators.ParseSpec(name)
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		specs = append(specs, spec)
	}

	computed, err := h.app.Indicators(specs)
	if err != nil {
		if errors.Is(err, app.ErrNoData) {
			h.jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, computed)
}

// HandleAnalyze triggers one analysis run over the session series. A second
// trigger while one is outstanding gets 409; analysis failures are reported
// with a human-readable message and keep the service usable.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.RunAnalysis(r.Context())
	if err != nil {
		if errors.Is(err, app.ErrAnalysisInFlight) || errors.Is(err, app.ErrNoData) {
			h.jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !result.OK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(failureStatus(result.Kind))
		json.NewEncoder(w).Encode(result)
		return
	}

	h.jsonResponse(w, result)
}

// failureStatus maps an analysis failure kind to an HTTP status for the
// presentation layer
func failureStatus(kind models.ErrorKind) int {
	switch kind {
	case models.ErrKindHTTP, models.ErrKindNetwork, models.ErrKindTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		observability.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
