package series

import "errors"

// Sentinel kinds for buffer errors.
var (
	// ErrStaleReading marks a reading dated before the channel's current
	// series; accepting it would wipe fresh same-day data on rollover.
	ErrStaleReading = errors.New("reading older than current series")

	// ErrUnknownChannel marks a record call without a channel id.
	ErrUnknownChannel = errors.New("unknown channel")
)
