package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/waterline/internal/domain/model"
)

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS raw_readings (
	channel TEXT NOT NULL,
	date    TEXT NOT NULL,
	ts      INTEGER NOT NULL,
	volume  REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_raw_channel_date_ts
	ON raw_readings (channel, date, ts);

CREATE TABLE IF NOT EXISTS derived_points (
	channel    TEXT NOT NULL,
	date       TEXT NOT NULL,
	ts         INTEGER NOT NULL,
	raw        REAL NOT NULL,
	filtered   REAL NOT NULL,
	cumulative REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_derived_channel_date_ts
	ON derived_points (channel, date, ts);

CREATE TABLE IF NOT EXISTS predictions (
	id             TEXT PRIMARY KEY,
	channel        TEXT NOT NULL,
	ts             INTEGER NOT NULL,
	hour           INTEGER NOT NULL,
	cumulative_ml  REAL NOT NULL,
	interval_ml    REAL NOT NULL,
	body_weight_kg REAL NOT NULL,
	body_temp_c    REAL NOT NULL,
	ambient_temp_c REAL NOT NULL,
	temp_gap       REAL NOT NULL,
	consumption_pc REAL NOT NULL,
	feed_kg        REAL NOT NULL,
	label          TEXT NOT NULL
);
`

// SQLiteStore implements Store on a local sqlite database.
type SQLiteStore struct {
	db  *sql.DB
	loc *time.Location
}

// NewSQLiteStore opens (and creates, if needed) the database at path and
// applies the schema. Options configure the location used to derive date
// keys from timestamps.
func NewSQLiteStore(ctx context.Context, path string, opts ...StoreOption) (*SQLiteStore, error) {
	s := &SQLiteStore{loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}

	s.db = db
	return s, nil
}

func (s *SQLiteStore) dateKey(t time.Time) string {
	return t.In(s.loc).Format(dateLayout)
}

// AppendRaw persists one raw reading.
func (s *SQLiteStore) AppendRaw(ctx context.Context, channelID string, r model.Reading) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO raw_readings (channel, date, ts, volume) VALUES (?, ?, ?, ?)",
		channelID,
		s.dateKey(r.Timestamp),
		r.Timestamp.Unix(),
		r.RawVolume,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}
	return nil
}

// AppendDerived persists one derived point.
func (s *SQLiteStore) AppendDerived(ctx context.Context, channelID string, p model.DerivedPoint) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO derived_points (channel, date, ts, raw, filtered, cumulative) VALUES (?, ?, ?, ?, ?, ?)",
		channelID,
		s.dateKey(p.Timestamp),
		p.Timestamp.Unix(),
		p.RawVolume,
		p.FilteredVolume,
		p.CumulativeConsumption,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}
	return nil
}

// RawForDate returns a channel's raw readings for one local date, ordered
// by timestamp.
func (s *SQLiteStore) RawForDate(ctx context.Context, channelID string, date time.Time) ([]model.Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT ts, volume FROM raw_readings WHERE channel = ? AND date = ? ORDER BY ts ASC",
		channelID,
		s.dateKey(date),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Reading
	for rows.Next() {
		var ts int64
		var volume float64
		if err := rows.Scan(&ts, &volume); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrQuery, err)
		}
		out = append(out, model.Reading{
			Timestamp: time.Unix(ts, 0).In(s.loc),
			RawVolume: volume,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return out, nil
}

// LastDerivedAtOrBefore returns the cumulative consumption of the newest
// derived point at or before target for the channel and local date.
func (s *SQLiteStore) LastDerivedAtOrBefore(ctx context.Context, channelID string, date, target time.Time) (float64, bool, error) {
	var cumulative float64
	err := s.db.QueryRowContext(ctx,
		"SELECT cumulative FROM derived_points WHERE channel = ? AND date = ? AND ts <= ? ORDER BY ts DESC LIMIT 1",
		channelID,
		s.dateKey(date),
		target.Unix(),
	).Scan(&cumulative)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return cumulative, true, nil
}

// ArchivePrediction appends a served prediction to the audit archive.
func (s *SQLiteStore) ArchivePrediction(ctx context.Context, p model.Prediction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO predictions
		(id, channel, ts, hour, cumulative_ml, interval_ml, body_weight_kg,
		 body_temp_c, ambient_temp_c, temp_gap, consumption_pc, feed_kg, label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Features.ChannelID,
		p.Timestamp.Unix(),
		p.Features.Hour,
		p.Features.CumulativeML,
		p.Features.IntervalML,
		p.Features.BodyWeightKG,
		p.Features.BodyTempC,
		p.Features.AmbientTempC,
		p.Features.TemperatureGap,
		p.Features.ConsumptionPercent,
		p.Features.FeedKG,
		p.Label.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
