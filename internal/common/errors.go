// Package common defines shared constants and sentinel errors used across
// client and server layers of ChronoKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// ErrOffline is returned by operations that need the network before any
	// local state can be produced (e.g. assistant-backed event creation).
	ErrOffline = errors.New("offline")

	// ErrWrongPIN is returned when the entered PIN does not match the stored hash.
	ErrWrongPIN = errors.New("wrong PIN")

	// ErrNoProfile is returned when the singleton user profile has not been set up yet.
	ErrNoProfile = errors.New("profile not set up")
)
