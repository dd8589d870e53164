// Package consumption derives per-day cumulative consumption from a
// filtered volume series via threshold-gated deltas.
//
// A drop in filtered volume between consecutive points counts as
// consumption only when it exceeds the threshold; rises (refills) and
// small drops contribute nothing. The running sum restarts at every
// local-calendar-date boundary present in the series.
package consumption

import "time"

// DefaultThresholdML is the reference gate, in milliliters.
const DefaultThresholdML = 100

// TimedValue pairs a filtered volume with its timestamp.
type TimedValue struct {
	Timestamp time.Time
	Value     float64
}

// Accumulate returns the cumulative consumption at each position of the
// series. The first point of each calendar date contributes zero; every
// later point contributes |delta| when delta < -threshold, else zero.
// Timestamps are interpreted in their own locations, so callers must keep
// the series in one location for consistent date grouping.
func Accumulate(points []TimedValue, threshold float64) []float64 {
	out := make([]float64, len(points))
	if len(points) == 0 {
		return out
	}

	var running float64
	for i, p := range points {
		if i == 0 || !sameDate(points[i-1].Timestamp, p.Timestamp) {
			running = 0
			out[i] = 0
			continue
		}
		delta := p.Value - points[i-1].Value
		if delta < -threshold {
			running += -delta
		}
		out[i] = running
	}
	return out
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
