// Package model contains domain models passed between layers.
package model

import "time"

// Reading is one raw volume sample for a channel. Immutable once recorded;
// the timestamp is assigned at arrival, so in-memory series order is
// arrival order.
type Reading struct {
	Timestamp time.Time // arrival instant in the service location
	RawVolume float64   // container volume in milliliters
}

// DerivedPoint is the processed tuple produced for one Reading.
type DerivedPoint struct {
	Timestamp             time.Time
	RawVolume             float64
	FilteredVolume        float64 // trailing moving average of raw volumes
	CumulativeConsumption float64 // per-day running consumption, milliliters
}

// Envelope carries a reading through the ingestion queue together with
// the channel it belongs to.
type Envelope struct {
	ChannelID string
	Reading   Reading
}
