package remote

import "errors"

var (
	// ErrUnavailable covers transport failures, timeouts and 5xx responses.
	ErrUnavailable = errors.New("remote API unavailable")
)
