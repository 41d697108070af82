package geocoding

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrNoCoordinates is returned when a provider reports success without a location.
var ErrNoCoordinates = errors.New("provider returned no coordinates")

// ErrNoLocation is returned when a candidate carries no geometry location.
var ErrNoLocation = errors.New("geocoding result has no location")

// StatusError is a non-OK status reported by the geocoding service itself,
// e.g. ZERO_RESULTS, OVER_QUERY_LIMIT or REQUEST_DENIED.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "geocoding service status " + e.Status
	}

	return fmt.Sprintf("geocoding service status %s: %s", e.Status, e.Message)
}

// TransportError is a failure to obtain a usable HTTP answer: DNS and dial
// errors, timeouts and non-2xx responses.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is returned for HTTP answers outside the 2xx range.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
	}

	return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, e.Body)
}

// credentialParams lists query parameters that must never reach logs or output files.
var credentialParams = []string{"key", "client", "signature"}

// newTransportError wraps err, stripping credentials from any request URL it carries.
func newTransportError(err error) *TransportError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		redacted := *urlErr
		redacted.URL = redactURL(urlErr.URL)
		return &TransportError{Err: &redacted}
	}

	return &TransportError{Err: err}
}

func redactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	query := parsed.Query()
	for _, param := range credentialParams {
		query.Del(param)
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}
