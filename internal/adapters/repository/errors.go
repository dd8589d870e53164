package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrOpenStore  = errors.New("open store failed")
	ErrAppend     = errors.New("append failed")
	ErrQuery      = errors.New("query failed")
)
