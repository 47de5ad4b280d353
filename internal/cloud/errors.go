package cloud

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// ErrorType categorizes a failed store operation.
type ErrorType int

const (
	// ErrTypeNetwork indicates a transport-level failure (refused,
	// unreachable, timeout).
	ErrTypeNetwork ErrorType = iota
	// ErrTypeAuth indicates the store rejected the auth token.
	ErrTypeAuth
	// ErrTypeHTTP indicates a non-success status code.
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response body.
	ErrTypeParse
)

func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "network error"
	case ErrTypeAuth:
		return "authentication error"
	case ErrTypeHTTP:
		return "HTTP error"
	case ErrTypeParse:
		return "parse error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is a classified failure from the remote key-value store. Retryable
// tells the polling loop whether trying again next cycle is worthwhile.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Err        error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Type, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// newNetworkError classifies a transport failure. Timeouts and transient
// conditions are retryable; every transport failure is treated as
// retryable because the device rides a flaky residential link.
func newNetworkError(message string, err error) *Error {
	retryable := true
	if os.IsTimeout(err) {
		message = message + " (timed out)"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		// A name that does not resolve will not start resolving soon.
		retryable = false
	}
	return &Error{
		Type:      ErrTypeNetwork,
		Message:   message,
		Err:       err,
		Retryable: retryable,
	}
}

// newStatusError classifies a non-2xx response.
func newStatusError(operation string, statusCode int) *Error {
	e := &Error{
		Message:    operation + " rejected",
		StatusCode: statusCode,
	}
	switch {
	case statusCode == 401 || statusCode == 403:
		e.Type = ErrTypeAuth
		e.Retryable = false
	case statusCode == 429 || statusCode >= 500:
		e.Type = ErrTypeHTTP
		e.Retryable = true
	default:
		e.Type = ErrTypeHTTP
		e.Retryable = false
	}
	return e
}

func newParseError(message string, err error) *Error {
	return &Error{
		Type:      ErrTypeParse,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}
