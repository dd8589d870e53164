package model

import "time"

// FeatureVector is the request-scoped input to the classifier. Field order
// mirrors the training pipeline's column order and must not be reordered.
type FeatureVector struct {
	ChannelID          string  `json:"channel_id"`
	Hour               int     `json:"hour"`
	CumulativeML       float64 `json:"cumulative_consumption_ml"`
	IntervalML         float64 `json:"interval_consumption_ml"`
	BodyWeightKG       float64 `json:"body_weight_kg"`
	BodyTempC          float64 `json:"body_temperature_c"`
	AmbientTempC       float64 `json:"ambient_temperature_c"`
	TemperatureGap     float64 `json:"temperature_gap"`
	ConsumptionPercent float64 `json:"consumption_percentage"`
	FeedKG             float64 `json:"feed_kg"`
}

// Label is the classifier's health verdict.
type Label int

// Labels in ascending order of concern; the integer values are the
// classifier's output classes.
const (
	Healthy Label = iota
	PossiblyIll
	LikelyIll
	Ill
)

// String returns the human-readable form used in API responses and archives.
func (l Label) String() string {
	switch l {
	case Healthy:
		return "Healthy"
	case PossiblyIll:
		return "Possibly Ill"
	case LikelyIll:
		return "Likely Ill"
	case Ill:
		return "Ill"
	default:
		return "Unknown"
	}
}

// Prediction is the audit-archive record for a served inference request.
type Prediction struct {
	ID        string
	Timestamp time.Time
	Features  FeatureVector
	Label     Label
}
