package repository

import "time"

// StoreOption applies a configuration option to the SQLiteStore.
type StoreOption func(*SQLiteStore)

// WithLocation sets the timezone used to derive date keys from timestamps.
func WithLocation(loc *time.Location) StoreOption {
	return func(s *SQLiteStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}
