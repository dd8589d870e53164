package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrNotStarted            = errors.New("service not started")
)
