package rest

import (
	"context"
	"net/http"
	"time"
)

const pingTimeout = 3 * time.Second

type dbPinger interface {
	Ping(ctx context.Context) error
}

// Backends describes the optional collaborators the server was started with.
// They never affect readiness; ingestion and proximity queries work without
// them.
type Backends struct {
	// Adjudicator is the configured LLM provider, "none" when disabled.
	Adjudicator string
	Geocoding   bool
}

// HealthHandler serves liveness, readiness and health endpoints.
type HealthHandler struct {
	db       dbPinger
	version  string
	backends Backends
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db dbPinger, version string, backends Backends) *HealthHandler {
	if backends.Adjudicator == "" {
		backends.Adjudicator = "none"
	}
	return &HealthHandler{db: db, version: version, backends: backends}
}

// HealthResponse is the JSON body of /live, /ready and /api/health.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of one component: "ok", "down" or "disabled".
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Live always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready returns 200 when the database answers and 503 otherwise. The body
// also lists which optional backends are configured.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "")
}

// Health is Ready plus the build version and the database latency.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.version)
}

func (h *HealthHandler) respond(w http.ResponseWriter, r *http.Request, version string) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	components := h.backendStatus()

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start)

	overall, status := "ok", http.StatusOK
	if err != nil {
		components["database"] = CompStatus{Status: "down"}
		overall, status = "down", http.StatusServiceUnavailable
	} else {
		db := CompStatus{Status: "ok"}
		if version != "" {
			db.Latency = latency.String()
		}
		components["database"] = db
	}

	writeJSON(w, status, HealthResponse{
		Status:     overall,
		Version:    version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func (h *HealthHandler) backendStatus() map[string]CompStatus {
	components := make(map[string]CompStatus, 3)

	if h.backends.Adjudicator == "none" {
		components["adjudicator"] = CompStatus{Status: "disabled", Detail: "gray-area matches are created as new products"}
	} else {
		components["adjudicator"] = CompStatus{Status: "ok", Detail: h.backends.Adjudicator}
	}

	if h.backends.Geocoding {
		components["geocoding"] = CompStatus{Status: "ok"}
	} else {
		components["geocoding"] = CompStatus{Status: "disabled", Detail: "no places api key"}
	}
	return components
}
