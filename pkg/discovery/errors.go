package discovery

import "errors"

var (
	// ErrInvalidTarget is returned for a range that cannot be parsed.
	ErrInvalidTarget = errors.New("invalid target range")
	// ErrNoNetworkDetected is returned when no non-loopback IPv4 interface
	// with a netmask exists and no range was given.
	ErrNoNetworkDetected = errors.New("could not detect local network")
)
