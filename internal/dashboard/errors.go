package dashboard

import (
	"errors"
	"fmt"
)

// OfflineMessage is shown when an upload is refused because the backend is offline.
const OfflineMessage = "Backend server is not running. Please start the backend server."

// ErrBackendOffline is wrapped by the ConnectivityError returned when the
// pre-upload health check fails.
var ErrBackendOffline = errors.New("backend offline")

// InputError reports a rejected user input: no file, wrong type, too large,
// unreadable CSV, a concurrent upload or an invalid chart request.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *InputError) Unwrap() error { return e.Err }

// ConnectivityError reports that the backend could not be used: offline probe,
// unreachable host, non-2xx answer or timeout.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	if errors.Is(e.Err, ErrBackendOffline) {
		return OfflineMessage
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// SerializationError reports an export that produced no file.
type SerializationError struct {
	Format string
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
