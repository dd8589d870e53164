// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// ConsumptionDependencies defines the interface for consumption queries.
type ConsumptionDependencies interface {
	Consumption(ctx context.Context, channelID string, at time.Time) (float64, error)
	Now() time.Time
}

// ConsumptionHandler handles point-in-time consumption queries.
type ConsumptionHandler struct {
	deps ConsumptionDependencies
}

// NewConsumptionHandler creates a new consumption handler.
func NewConsumptionHandler(deps ConsumptionDependencies) *ConsumptionHandler {
	return &ConsumptionHandler{deps: deps}
}

// HandleGetConsumption handles GET /consumption/{channel_id} requests.
// The optional "at" query parameter (RFC3339) picks the instant; it
// defaults to now. A channel with no data answers zero.
func (h *ConsumptionHandler) HandleGetConsumption(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_consumption"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /consumption/
	channel := strings.TrimPrefix(r.URL.Path, "/consumption/")
	if channel == "" || strings.Contains(channel, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	at := h.deps.Now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		at = parsed
	}

	v, err := h.deps.Consumption(r.Context(), channel, at)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	writeJSON(w, http.StatusOK, consumptionResponse{
		ChannelID:    channel,
		At:           at.Format(time.RFC3339),
		CumulativeML: v,
	})
}
