package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// beaconEvent is the client-side analytics payload posted to /api/analytics.
type beaconEvent struct {
	Action           string         `json:"action"`
	Category         string         `json:"category"`
	Label            string         `json:"label,omitempty"`
	Value            *float64       `json:"value,omitempty"`
	TheoryID         string         `json:"theory_id,omitempty"`
	Platform         string         `json:"platform,omitempty"`
	Timestamp        string         `json:"timestamp,omitempty"`
	URL              string         `json:"url,omitempty"`
	Referrer         string         `json:"referrer,omitempty"`
	UserAgent        string         `json:"user_agent,omitempty"`
	CustomParameters map[string]any `json:"custom_parameters,omitempty"`
}

func setBeaconCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleBeacon handles POST /api/analytics. The payload is logged, not stored.
func (h *Handlers) HandleBeacon(w http.ResponseWriter, r *http.Request) {
	setBeaconCORS(w)

	var ev beaconEvent
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.log.Warnw("beacon decode failed", "error", err)
		renderJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	if strings.TrimSpace(ev.Action) == "" || strings.TrimSpace(ev.Category) == "" {
		renderJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields: action, category"})
		return
	}

	timestamp := ev.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	userAgent := ev.UserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}

	h.log.Infow("analytics event",
		"action", ev.Action,
		"category", ev.Category,
		"label", ev.Label,
		"value", ev.Value,
		"theory_id", ev.TheoryID,
		"platform", ev.Platform,
		"timestamp", timestamp,
		"url", ev.URL,
		"referrer", ev.Referrer,
		"user_agent", userAgent,
		"custom_parameters", ev.CustomParameters,
	)

	renderJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleBeaconInfo handles GET /api/analytics.
func (h *Handlers) HandleBeaconInfo(w http.ResponseWriter, r *http.Request) {
	setBeaconCORS(w)
	renderJSON(w, http.StatusOK, map[string]any{
		"message":   "Analytics API is running",
		"methods":   []string{"POST"},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleBeaconOptions handles the CORS preflight for /api/analytics.
func (h *Handlers) HandleBeaconOptions(w http.ResponseWriter, r *http.Request) {
	setBeaconCORS(w)
	w.WriteHeader(http.StatusOK)
}
