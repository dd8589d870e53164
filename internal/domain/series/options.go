package series

import "time"

// Option applies a configuration option to the Buffer.
type Option func(*Buffer)

// WithWindow sets the moving-average window over raw volumes.
func WithWindow(window int) Option {
	return func(b *Buffer) {
		if window > 0 {
			b.window = window
		}
	}
}

// WithThreshold sets the minimum drop, in milliliters, counted as consumption.
func WithThreshold(threshold float64) Option {
	return func(b *Buffer) {
		if threshold >= 0 {
			b.threshold = threshold
		}
	}
}

// WithLocation sets the timezone used for day rollover decisions.
func WithLocation(loc *time.Location) Option {
	return func(b *Buffer) {
		if loc != nil {
			b.loc = loc
		}
	}
}
