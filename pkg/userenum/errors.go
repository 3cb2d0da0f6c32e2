package userenum

import "errors"

// ErrToolUnavailable is returned when an external helper is not installed.
var ErrToolUnavailable = errors.New("external tool unavailable")
