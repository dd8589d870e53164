// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/waterline/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Predict derives the current feature vector for a channel,
	// classifies it, and archives the outcome.
	Predict(ctx context.Context, in PredictInput) (PredictResult, error)

	// Consumption returns the cumulative consumption for a channel at
	// the given instant.
	Consumption(ctx context.Context, channelID string, at time.Time) (float64, error)

	// Now is the service wall clock in its configured location.
	Now() time.Time
}

// PredictInput mirrors the domain inference request shape.
type PredictInput = model.InferenceRequest

// PredictResult mirrors the domain inference result shape.
type PredictResult = model.InferenceResult

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	predictHandler     *PredictHandler
	consumptionHandler *ConsumptionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		predictHandler:     NewPredictHandler(deps),
		consumptionHandler: NewConsumptionHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/consumption/", MetricsMiddleware(s.consumptionHandler.HandleGetConsumption, "consumption"))
}

// predictRequest mirrors the OpenAPI schema for POST /predict.
type predictRequest struct {
	ChannelID    string   `json:"channel_id"`
	BodyWeightKG *float64 `json:"body_weight_kg"`
	BodyTempC    *float64 `json:"body_temperature_c"`
	AmbientTempC *float64 `json:"ambient_temperature_c"`
	FeedKG       *float64 `json:"feed_kg"`
}

// validate names the first offending field, so callers can fix their
// payloads without guessing.
func (p predictRequest) validate() error {
	switch {
	case strings.TrimSpace(p.ChannelID) == "":
		return errors.New("missing channel_id")
	case p.BodyWeightKG == nil:
		return errors.New("missing body_weight_kg")
	case *p.BodyWeightKG <= 0:
		return errors.New("body_weight_kg must be positive")
	case p.BodyTempC == nil:
		return errors.New("missing body_temperature_c")
	case p.AmbientTempC == nil:
		return errors.New("missing ambient_temperature_c")
	case p.FeedKG == nil:
		return errors.New("missing feed_kg")
	case *p.FeedKG < 0:
		return errors.New("feed_kg must not be negative")
	}
	return nil
}

type predictResponse struct {
	Status              string              `json:"status"`
	PredictedLabel      string              `json:"predicted_label"`
	PredictionTimestamp string              `json:"prediction_timestamp"`
	FeatureDetail       model.FeatureVector `json:"feature_detail"`
}

type consumptionResponse struct {
	ChannelID    string  `json:"channel_id"`
	At           string  `json:"at"`
	CumulativeML float64 `json:"cumulative_consumption_ml"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// NewKind tags a sentinel error with the operation that raised it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags a sentinel error and keeps the cause in the chain.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
