package mqtt

import "errors"

// Sentinel kinds for subscriber errors.
var (
	ErrConnect = errors.New("broker connect failed")
)
