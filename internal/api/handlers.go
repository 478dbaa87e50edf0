// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	gorilla "github.com/gorilla/websocket"

	"github.com/veilscan/veilscan/internal/detection"
	"github.com/veilscan/veilscan/internal/intel"
	"github.com/veilscan/veilscan/internal/logging"
	"github.com/veilscan/veilscan/internal/producers"
	"github.com/veilscan/veilscan/internal/validation"
	"github.com/veilscan/veilscan/internal/verdictlog"
	"github.com/veilscan/veilscan/internal/websocket"
)

const (
	defaultVerdictLimit = 50
	maxVerdictLimit     = 500

	// maxDetectBodyBytes bounds the detect payload; ICE candidate lists and
	// fingerprint attributes fit comfortably under this.
	maxDetectBodyBytes = 256 << 10
)

// Detector runs one detection end to end.
type Detector interface {
	Detect(ctx context.Context, req producers.Request) detection.Result
}

// VerdictReader lists and fetches persisted verdict records.
type VerdictReader interface {
	Recent(limit int) ([]verdictlog.Record, error)
	Get(id string) (*verdictlog.Record, error)
	Count() (int, error)
}

// IntelStatus reports the state of the threat-intelligence feeds.
type IntelStatus interface {
	Status() intel.UpdateStatus
}

// Handler serves all API endpoints.
type Handler struct {
	detector Detector
	verdicts VerdictReader
	hub      *websocket.Hub
	intel    IntelStatus
	upgrader gorilla.Upgrader
}

// NewHandler builds the API handler. verdicts, hub, and intelStatus may be
// nil; the corresponding endpoints then report unavailable.
func NewHandler(detector Detector, verdicts VerdictReader, hub *websocket.Hub, intelStatus IntelStatus, allowedOrigins []string) *Handler {
	return &Handler{
		detector: detector,
		verdicts: verdicts,
		hub:      hub,
		intel:    intelStatus,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Detect handles POST /api/v1/detect.
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxDetectBodyBytes)
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON payload: " + err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, verr.Error(), verr.Fields)
		return
	}

	result := h.detector.Detect(r.Context(), req.ToProducerRequest(r))
	rw.Success(result)
}

// ListVerdicts handles GET /api/v1/verdicts.
func (h *Handler) ListVerdicts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.verdicts == nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeInternalError, "verdict store not configured")
		return
	}

	limit := listLimit(r, defaultVerdictLimit, maxVerdictLimit)
	records, err := h.verdicts.Recent(limit)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.SuccessWithMeta(records, &APIMeta{Count: len(records)})
}

// GetVerdict handles GET /api/v1/verdicts/{id}.
func (h *Handler) GetVerdict(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.verdicts == nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeInternalError, "verdict store not configured")
		return
	}

	id := chi.URLParam(r, "id")
	rec, err := h.verdicts.Get(id)
	if err != nil {
		if errors.Is(err, verdictlog.ErrNotFound) {
			rw.NotFound("verdict " + id + " not found")
			return
		}
		rw.InternalError(err)
		return
	}
	rw.Success(rec)
}

// IntelStatus handles GET /api/v1/intel/status.
func (h *Handler) IntelStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.intel == nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeInternalError, "intel updater not configured")
		return
	}
	rw.Success(h.intel.Status())
}

// HealthLive handles GET /api/v1/health/live. It answers 200 whenever the
// process can serve requests at all.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. Readiness requires the
// verdict store to answer queries.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.verdicts != nil {
		if _, err := h.verdicts.Count(); err != nil {
			rw.Error(http.StatusServiceUnavailable, ErrCodeInternalError, "verdict store unavailable")
			return
		}
	}
	rw.Success(map[string]string{"status": "ready"})
}

// ServeWS handles GET /api/v1/ws: upgrades the connection and subscribes it
// to the verdict stream.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		http.Error(w, "websocket hub not configured", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	websocket.NewClient(h.hub, conn).Start()
}

// originChecker allows same-host requests plus the configured CORS origins.
func originChecker(allowedOrigins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	wildcard := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
		}
		allowed[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if wildcard || allowed[origin] {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	}
}
