// Package feature maps wall-clock time to reporting buckets and builds
// the feature vectors consumed by the classifier.
//
// Bucket boundaries are hour-precision: a new bucket starts exactly on the
// hour. The alternative minute-precision convention (cutoffs at HH:01) is
// deliberately not used; one convention applies everywhere.
package feature

import (
	"context"
	"time"

	"github.com/okian/waterline/internal/domain/model"
)

// Buckets partition the day into five contiguous reporting periods:
// [00:00,10:00) -> 8, [10:00,12:00) -> 10, [12:00,14:00) -> 12,
// [14:00,16:00) -> 14, [16:00,24:00) -> 16.
const (
	BucketEarly     = 8
	BucketMorning   = 10
	BucketMidday    = 12
	BucketAfternoon = 14
	BucketEvening   = 16
)

// BucketFor returns the reporting bucket for an instant. Total over the
// whole day.
func BucketFor(t time.Time) int {
	switch h := t.Hour(); {
	case h >= 16:
		return BucketEvening
	case h >= 14:
		return BucketAfternoon
	case h >= 12:
		return BucketMidday
	case h >= 10:
		return BucketMorning
	default:
		return BucketEarly
	}
}

// PreviousBoundary returns the hour at which the bucket preceding the
// given one ends, i.e. where the interval-consumption baseline is read.
// The lowest bucket has no predecessor and returns -1.
func PreviousBoundary(bucket int) int {
	switch bucket {
	case BucketMorning:
		return 8
	case BucketMidday:
		return 10
	case BucketAfternoon:
		return 12
	case BucketEvening:
		return 14
	default:
		return -1
	}
}

// ConsumptionReader answers point-in-time cumulative consumption lookups.
// Missing data is 0, not an error.
type ConsumptionReader interface {
	ConsumptionAtOrBefore(ctx context.Context, channelID string, date, target time.Time) (float64, error)
}

// Inputs are the externally supplied physiological values accompanying a
// derivation request.
type Inputs struct {
	BodyWeightKG float64
	BodyTempC    float64
	AmbientTempC float64
	FeedKG       float64
}

// Deriver assembles feature vectors from the consumption series and
// request inputs.
type Deriver struct {
	reader ConsumptionReader
	loc    *time.Location
}

// NewDeriver creates a Deriver reading consumption through reader and
// interpreting instants in loc.
func NewDeriver(reader ConsumptionReader, loc *time.Location) *Deriver {
	if loc == nil {
		loc = time.Local
	}
	return &Deriver{reader: reader, loc: loc}
}

// Derive builds the feature vector for a channel at the given instant.
//
// The cumulative value is read at the instant itself; the interval
// baseline is read at the previous bucket boundary (HH:00:00). Interval
// consumption may come out negative when history has gaps; it is surfaced
// as-is, not clamped.
func (d *Deriver) Derive(ctx context.Context, channelID string, instant time.Time, in Inputs) (model.FeatureVector, error) {
	local := instant.In(d.loc)
	bucket := BucketFor(local)

	current, err := d.reader.ConsumptionAtOrBefore(ctx, channelID, local, local)
	if err != nil {
		return model.FeatureVector{}, err
	}

	var previous float64
	if boundary := PreviousBoundary(bucket); boundary > 0 {
		y, m, day := local.Date()
		boundaryTime := time.Date(y, m, day, boundary, 0, 0, 0, d.loc)
		previous, err = d.reader.ConsumptionAtOrBefore(ctx, channelID, local, boundaryTime)
		if err != nil {
			return model.FeatureVector{}, err
		}
	}

	percent := 0.0
	if in.BodyWeightKG > 0 {
		percent = (current / 1000 / in.BodyWeightKG) * 100
	}

	return model.FeatureVector{
		ChannelID:          channelID,
		Hour:               bucket,
		CumulativeML:       current,
		IntervalML:         current - previous,
		BodyWeightKG:       in.BodyWeightKG,
		BodyTempC:          in.BodyTempC,
		AmbientTempC:       in.AmbientTempC,
		TemperatureGap:     in.BodyTempC - in.AmbientTempC,
		ConsumptionPercent: percent,
		FeedKG:             in.FeedKG,
	}, nil
}
