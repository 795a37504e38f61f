package domain

import "errors"

// Attach errors. They end the current Start attempt and are never retried
// internally.
var (
	ErrSegmentNotFound = errors.New("shared segment not found")
	ErrAccessDenied    = errors.New("shared segment access denied")
)

// Per-cycle errors. The cycle is skipped and polling continues.
var (
	ErrSignatureMismatch  = errors.New("segment signature mismatch")
	ErrProducerInactive   = errors.New("producer marked segment inactive")
	ErrBufferTooSmall     = errors.New("buffer too small")
	ErrOutOfBounds        = errors.New("element out of bounds")
	ErrUnsupportedVersion = errors.New("unsupported layout version")
	ErrCorruptCycle       = errors.New("corrupt cycle")
)
