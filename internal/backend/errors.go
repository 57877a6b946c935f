package backend

import (
	"fmt"
	"net/http"
)

// APIError represents a non-2xx response from the analysis backend.
// Message carries the FastAPI "detail" field when the body has one.
type APIError struct {
	StatusCode int
	Message    string
	Raw        map[string]any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend error: status=%d", e.StatusCode)
}

// BadRequestError indicates the backend rejected the upload (400/422), typically
// because the file could not be read as CSV.
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return fmt.Sprintf("bad request: %s", e.APIError.Error()) }

func (e *BadRequestError) Unwrap() error { return e.APIError }

// ServerError indicates a 5xx failure inside the backend.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("server error: %s", e.APIError.Error()) }

func (e *ServerError) Unwrap() error { return e.APIError }

// UnreachableError indicates the backend could not be contacted at all.
type UnreachableError struct {
	URL string
	Err error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.URL != "" {
		return fmt.Sprintf("backend unreachable at %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("backend unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// OfflineError indicates the backend answered the health probe without reporting "online".
type OfflineError struct {
	Status string
}

func (e *OfflineError) Error() string {
	if e.Status == "" {
		return "backend did not report a status"
	}
	return fmt.Sprintf("backend reported status %q", e.Status)
}

// classifyAPIError maps a generic APIError to a typed error.
func classifyAPIError(apiErr *APIError) error {
	sc := apiErr.StatusCode
	switch {
	case sc == http.StatusBadRequest || sc == http.StatusUnprocessableEntity || sc == http.StatusRequestEntityTooLarge:
		return &BadRequestError{APIError: apiErr}
	case sc >= 500 && sc <= 599:
		return &ServerError{APIError: apiErr}
	}
	return apiErr
}
