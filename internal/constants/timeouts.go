// Package constants defines timeout values used throughout the application.
package constants

import "time"

const (
	// DefaultHTTPTimeout is zero: a hung request hangs the session, matching the
	// blocking, cancel-free model of the tool. Override with HTTP_TIMEOUT.
	DefaultHTTPTimeout time.Duration = 0

	// BoltOpenTimeout bounds the wait for the bbolt file lock.
	BoltOpenTimeout = 1 * time.Second
)
