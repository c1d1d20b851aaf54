package integrations

import (
	"errors"
	"net/http"
	"time"

	errs "github.com/artfit/artfit/pkg/errors"
)

const httpTimeout = 10 * time.Second

// uploadTimeout applies to multipart uploads, which carry print files of
// several megabytes.
const uploadTimeout = 2 * time.Minute

var (
	// ErrNotFound is returned when the resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, unexpected status).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// ErrorCode classifies an integration failure for callers that report
// structured errors.
func ErrorCode(err error) errs.Code {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return errs.ErrCodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return errs.ErrCodeUnauthorized
	case errs.GetCode(err) != "":
		return errs.GetCode(err)
	}
	return errs.ErrCodeNetwork
}
