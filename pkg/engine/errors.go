package engine

import (
	"context"
	"errors"

	"github.com/bshnet/bsh/pkg/discovery"
	"github.com/bshnet/bsh/pkg/userenum"
)

const (
	errorCodeInvalidTarget   = "INVALID_TARGET"
	errorCodeNoNetwork       = "NO_NETWORK_DETECTED"
	errorCodeToolUnavailable = "TOOL_UNAVAILABLE"
	errorCodeCanceled        = "SCAN_CANCELED"
	errorCodeScanFailure     = "SCAN_FAILURE"
)

type errorCoder interface {
	error
	Code() string
}

type withCodeError struct {
	error
	code string
}

func (e *withCodeError) Code() string {
	return e.code
}

func (e *withCodeError) Unwrap() error {
	return e.error
}

// WithErrorCode annotates err with a scan error code.
func WithErrorCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &withCodeError{error: err, code: code}
}

// codeFor classifies err by its sentinel, ignoring explicit codes.
func codeFor(err error) string {
	switch {
	case errors.Is(err, discovery.ErrInvalidTarget):
		return errorCodeInvalidTarget
	case errors.Is(err, discovery.ErrNoNetworkDetected):
		return errorCodeNoNetwork
	case errors.Is(err, userenum.ErrToolUnavailable):
		return errorCodeToolUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errorCodeCanceled
	default:
		return errorCodeScanFailure
	}
}

// ErrorCode resolves an error to its scan error code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var coded errorCoder
	if errors.As(err, &coded) {
		if code := coded.Code(); code != "" {
			return code
		}
	}
	return codeFor(err)
}

// ExitCode maps errors to CLI exit codes.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch ErrorCode(err) {
	case errorCodeInvalidTarget:
		return 2
	case errorCodeNoNetwork:
		return 3
	case errorCodeToolUnavailable:
		return 4
	case errorCodeCanceled:
		return 130
	default:
		return 1
	}
}

// Suggestions provides human readable guidance for CLI usage.
func Suggestions(err error) []string {
	if err == nil {
		return nil
	}

	switch ErrorCode(err) {
	case errorCodeInvalidTarget:
		return []string{
			"Use a range like 192.168.1.0/24 or a single address like 192.168.1.10",
			"The prefix after / must be a whole number between 0 and 32",
		}
	case errorCodeNoNetwork:
		return []string{
			"Pass a range explicitly, e.g. bsh scan 192.168.1.0/24",
			"Run bsh interfaces to check that an IPv4 interface is up",
		}
	case errorCodeToolUnavailable:
		return []string{
			"Install smbclient (samba-client) or set scan.smbclient to its path",
		}
	default:
		return nil
	}
}
