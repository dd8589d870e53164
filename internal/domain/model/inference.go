package model

import "time"

// InferenceRequest carries the externally supplied values for one
// classification request.
type InferenceRequest struct {
	ChannelID    string
	BodyWeightKG float64
	BodyTempC    float64
	AmbientTempC float64
	FeedKG       float64
}

// InferenceResult is the outcome of one classification request.
type InferenceResult struct {
	Label     Label
	Timestamp time.Time
	Features  FeatureVector
}
