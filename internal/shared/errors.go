package shared

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrUpstream           = fmt.Errorf("upstream request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrReleaseNotFound    = fmt.Errorf("release not found")
	ErrUnexpectedResponse = fmt.Errorf("unexpected response shape")

	// Input validation errors
	ErrValidation      = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("%w: missing required argument", ErrValidation)
	ErrInvalidArgument = fmt.Errorf("%w: invalid argument", ErrValidation)
	ErrInvalidFlag     = fmt.Errorf("%w: invalid flag value", ErrValidation)
	ErrMissingBarcode  = fmt.Errorf("%w: No barcode provided", ErrValidation)
)

// NotFoundError reports that the metadata catalog holds no release for a barcode.
//
// It matches [ErrReleaseNotFound] with [errors.Is].
type NotFoundError struct {
	Barcode string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No release found for barcode %s", e.Barcode)
}

func (e *NotFoundError) Unwrap() error {
	return ErrReleaseNotFound
}

// UpstreamError describes a failed call to an external service: a transport failure,
// a non-success status or a body that does not match the expected shape.
//
// It matches [ErrUpstream] with [errors.Is], as well as the transport error it wraps.
type UpstreamError struct {
	Service    string // "lidarr" or "musicbrainz"
	Op         string // short operation name, e.g. "list artists"
	StatusCode int    // zero when no response was received
	Body       string // truncated response body for non-success statuses
	Err        error
}

const maxErrorBody = 200

// NewUpstreamError builds an [UpstreamError] for a transport or decoding failure.
func NewUpstreamError(service, op string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Op: op, Err: err}
}

// NewStatusError builds an [UpstreamError] for a non-success HTTP status.
func NewStatusError(service, op string, status int, body []byte) *UpstreamError {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return &UpstreamError{Service: service, Op: op, StatusCode: status, Body: text}
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	b.WriteString(e.Service)
	b.WriteString(" ")
	b.WriteString(e.Op)
	switch {
	case e.StatusCode != 0:
		fmt.Fprintf(&b, " failed with status %d", e.StatusCode)
		if e.Body != "" {
			fmt.Fprintf(&b, ": %s", e.Body)
		}
	case e.Err != nil:
		fmt.Fprintf(&b, " failed: %v", e.Err)
	default:
		b.WriteString(" failed")
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// IsUpstream reports whether err came from an external service call.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}
