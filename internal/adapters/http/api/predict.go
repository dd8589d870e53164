// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	service "github.com/okian/waterline/internal/app"
)

// PredictDependencies defines the interface for inference operations.
type PredictDependencies interface {
	Predict(ctx context.Context, in PredictInput) (PredictResult, error)
}

// PredictHandler handles inference requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Predict(r.Context(), PredictInput{
		ChannelID:    req.ChannelID,
		BodyWeightKG: *req.BodyWeightKG,
		BodyTempC:    *req.BodyTempC,
		AmbientTempC: *req.AmbientTempC,
		FeedKG:       *req.FeedKG,
	})
	if err != nil {
		if errors.Is(err, service.ErrClassifierUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "classifier_unavailable", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		Status:              "ok",
		PredictedLabel:      res.Label.String(),
		PredictionTimestamp: res.Timestamp.Format(time.RFC3339),
		FeatureDetail:       res.Features,
	})
}
