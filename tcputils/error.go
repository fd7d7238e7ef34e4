package tcputils

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

const (
	SERVER_NO_ERR        = 600
	SERVER_IO_ERR        = 601
	SERVER_HANDLER_ERR   = 602
	SERVER_RESOURCE_ERR  = 603
	CLIENT_NO_ERR        = 700
	CLIENT_MALFORMED_ERR = 701
	CLIENT_NO_ROUTE_ERR  = 702

	RESPONSE_MALFORMED        = "MALFORMED_REQUEST"
	RESPONSE_ROUTE_NOT_FOUND  = "ROUTE_NOT_FOUND"
	RESPONSE_RESOURCE_MISSING = "RESOURCE_MISSING"
	RESPONSE_IO_FAILURE       = "IO_FAILURE"
	RESPONSE_TIMED_OUT        = "CLIENT_TIMED_OUT"
)

var (
	ErrMalformedRequest = errors.New(RESPONSE_MALFORMED)
	ErrRouteNotFound    = errors.New(RESPONSE_ROUTE_NOT_FOUND)
	ErrResourceMissing  = errors.New(RESPONSE_RESOURCE_MISSING)
	ErrIOFailure        = errors.New(RESPONSE_IO_FAILURE)
)

// Malformed wraps a parse failure reason as ErrMalformedRequest.
func Malformed(format string, args ...interface{}) error {

	return fmt.Errorf("%w: %s", ErrMalformedRequest, fmt.Sprintf(format, args...))
}

// EvalError classifies a raw socket or stream error. Errors already carrying a
// kind from this package pass through unchanged, everything else becomes ErrIOFailure.
func EvalError(err error) error {

	if err == nil {
		return nil
	}

	if errors.Is(err, ErrMalformedRequest) || errors.Is(err, ErrRouteNotFound) ||
		errors.Is(err, ErrResourceMissing) || errors.Is(err, ErrIOFailure) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", ErrIOFailure, RESPONSE_TIMED_OUT, err)
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: connection closed early: %v", ErrIOFailure, err)
	}

	return fmt.Errorf("%w: %v", ErrIOFailure, err)
}

// StatusOf returns the response status for err, or 0 when no response should be written.
func StatusOf(err error) int {

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMalformedRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrIOFailure):
		return 0
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the log code for err.
func CodeOf(err error) int {

	switch {
	case err == nil:
		return SERVER_NO_ERR
	case errors.Is(err, ErrMalformedRequest):
		return CLIENT_MALFORMED_ERR
	case errors.Is(err, ErrRouteNotFound):
		return CLIENT_NO_ROUTE_ERR
	case errors.Is(err, ErrResourceMissing):
		return SERVER_RESOURCE_ERR
	case errors.Is(err, ErrIOFailure):
		return SERVER_IO_ERR
	default:
		return SERVER_HANDLER_ERR
	}
}
