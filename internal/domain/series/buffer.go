// Package series owns the mutable per-channel sample buffers for the
// current day and the derivation pipeline that turns raw readings into
// smoothed, cumulative points.
//
// All channels share one Buffer guarded by a single mutex; the raw series
// never escapes the package. Callers get value snapshots only.
package series

import (
	"context"
	"sync"
	"time"

	"github.com/okian/waterline/internal/domain/consumption"
	"github.com/okian/waterline/internal/domain/model"
	"github.com/okian/waterline/internal/domain/smoothing"
)

// localDate identifies a calendar day in the buffer's location.
type localDate struct {
	year  int
	month time.Month
	day   int
}

func (d localDate) before(o localDate) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}

// channelSeries is one channel's current-day state. Only ever touched
// under the Buffer mutex.
type channelSeries struct {
	date     localDate
	readings []model.Reading
	derived  []model.DerivedPoint
}

// Buffer aggregates readings for all channels and re-derives the day's
// series on every append.
type Buffer struct {
	mu        sync.Mutex
	channels  map[string]*channelSeries
	window    int
	threshold float64
	loc       *time.Location
}

// NewBuffer creates a Buffer with configuration options.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		channels:  make(map[string]*channelSeries),
		window:    smoothing.DefaultWindow,
		threshold: consumption.DefaultThresholdML,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Buffer) dateOf(t time.Time) localDate {
	y, m, d := t.In(b.loc).Date()
	return localDate{year: y, month: m, day: d}
}

// Record appends a reading to the channel's series, re-derives the day's
// filtered and cumulative values, and returns the latest derived point.
//
// Rollover is decided from the new reading's local calendar date, which is
// assigned at arrival from the wall clock: a later date discards the
// series and starts fresh; an earlier date rejects the reading with
// ErrStaleReading so a late burst from yesterday cannot wipe today's data.
// The returned RolledOver flag tells the caller a reset happened.
//
// No I/O happens under the lock; persistence is the caller's business.
func (b *Buffer) Record(ctx context.Context, channelID string, r model.Reading) (Result, error) {
	if channelID == "" {
		return Result{}, ErrUnknownChannel
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	cs, ok := b.channels[channelID]
	if !ok {
		cs = &channelSeries{}
		b.channels[channelID] = cs
	}

	date := b.dateOf(r.Timestamp)
	rolled := false
	if len(cs.readings) > 0 {
		switch {
		case date.before(cs.date):
			return Result{}, ErrStaleReading
		case cs.date.before(date):
			cs.readings = cs.readings[:0]
			cs.derived = cs.derived[:0]
			rolled = true
		}
	}
	cs.date = date
	cs.readings = append(cs.readings, r)

	b.rederive(cs)

	return Result{
		Point:      cs.derived[len(cs.derived)-1],
		SeriesLen:  len(cs.readings),
		RolledOver: rolled,
	}, nil
}

// rederive recomputes the whole day's derived series. The moving-average
// window can revise earlier outputs up to its width, so this is a full
// recompute rather than an incremental append.
func (b *Buffer) rederive(cs *channelSeries) {
	raws := make([]float64, len(cs.readings))
	for i, r := range cs.readings {
		raws[i] = r.RawVolume
	}
	filtered := smoothing.MovingAverage(raws, b.window)

	timed := make([]consumption.TimedValue, len(cs.readings))
	for i, r := range cs.readings {
		timed[i] = consumption.TimedValue{Timestamp: r.Timestamp.In(b.loc), Value: filtered[i]}
	}
	cumulative := consumption.Accumulate(timed, b.threshold)

	cs.derived = cs.derived[:0]
	for i, r := range cs.readings {
		cs.derived = append(cs.derived, model.DerivedPoint{
			Timestamp:             r.Timestamp,
			RawVolume:             r.RawVolume,
			FilteredVolume:        filtered[i],
			CumulativeConsumption: cumulative[i],
		})
	}
}

// Result is the outcome of one Record call.
type Result struct {
	Point      model.DerivedPoint
	SeriesLen  int
	RolledOver bool
}

// LatestAtOrBefore returns the cumulative consumption of the last derived
// point at or before target for the given channel and local date. The
// boolean is false when the buffer holds nothing matching, including when
// its series belongs to a different date.
func (b *Buffer) LatestAtOrBefore(ctx context.Context, channelID string, date, target time.Time) (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cs, ok := b.channels[channelID]
	if !ok || len(cs.derived) == 0 {
		return 0, false
	}
	if cs.date != b.dateOf(date) {
		return 0, false
	}
	for i := len(cs.derived) - 1; i >= 0; i-- {
		if !cs.derived[i].Timestamp.After(target) {
			return cs.derived[i].CumulativeConsumption, true
		}
	}
	return 0, false
}

// Snapshot returns a copy of the channel's derived series for the current
// day, oldest first. Nil when the channel is unknown.
func (b *Buffer) Snapshot(ctx context.Context, channelID string) []model.DerivedPoint {
	b.mu.Lock()
	defer b.mu.Unlock()

	cs, ok := b.channels[channelID]
	if !ok {
		return nil
	}
	out := make([]model.DerivedPoint, len(cs.derived))
	copy(out, cs.derived)
	return out
}

// Channels lists channel ids with in-memory state.
func (b *Buffer) Channels(ctx context.Context) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, 0, len(b.channels))
	for id := range b.channels {
		out = append(out, id)
	}
	return out
}

// Len returns the number of readings buffered for a channel today.
func (b *Buffer) Len(ctx context.Context, channelID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	cs, ok := b.channels[channelID]
	if !ok {
		return 0
	}
	return len(cs.readings)
}

// Location exposes the buffer's timezone so collaborators derive dates
// and buckets consistently.
func (b *Buffer) Location() *time.Location {
	return b.loc
}
