// Package repository defines the historical store interface and its
// sqlite implementation.
//
// The store is append-only and keyed by channel and local calendar date,
// ordered by timestamp. It backs warm restarts (replaying today's raw
// readings) and point-in-time queries for days no longer held in memory.
package repository

import (
	"context"
	"time"

	"github.com/okian/waterline/internal/domain/model"
)

// Store provides durable access to readings, derived points and the
// prediction audit archive.
type Store interface {
	// AppendRaw persists one raw reading for a channel.
	AppendRaw(ctx context.Context, channelID string, r model.Reading) error

	// AppendDerived persists one derived point for a channel.
	AppendDerived(ctx context.Context, channelID string, p model.DerivedPoint) error

	// RawForDate returns all raw readings for a channel on the given
	// local date, ordered by timestamp. Empty result is not an error.
	RawForDate(ctx context.Context, channelID string, date time.Time) ([]model.Reading, error)

	// LastDerivedAtOrBefore returns the cumulative consumption of the
	// last derived point with timestamp <= target for the channel and
	// local date. The boolean is false when no such record exists.
	LastDerivedAtOrBefore(ctx context.Context, channelID string, date, target time.Time) (float64, bool, error)

	// ArchivePrediction appends a served prediction to the audit archive.
	ArchivePrediction(ctx context.Context, p model.Prediction) error

	// Close releases the underlying resources.
	Close() error
}
