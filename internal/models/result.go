package models

import "strings"

// Status codes recorded per row.
const (
	StatusOK          = "OK"
	StatusEmpty       = "EMPTY"
	StatusZeroResults = "ZERO_RESULTS"

	// ConnectionErrorMarker prefixes the status of rows whose request failed in transport.
	ConnectionErrorMarker = "CONNECTION_ERROR"
	// UnexpectedErrorMarker prefixes the status of rows that failed for any other reason.
	UnexpectedErrorMarker = "UNEXPECTED_ERROR"
)

// GeocodeResult is the outcome of geocoding one row. Coordinates are nil
// unless Status is StatusOK.
type GeocodeResult struct {
	Latitude  *float64
	Longitude *float64
	Status    string
}

// Located builds a successful result.
func Located(coords Coordinates) GeocodeResult {
	lat, lng := coords.Latitude, coords.Longitude
	return GeocodeResult{Latitude: &lat, Longitude: &lng, Status: StatusOK}
}

// Unlocated builds a result without coordinates.
func Unlocated(status string) GeocodeResult {
	return GeocodeResult{Status: status}
}

// ConnectionError builds the result of a transport failure.
func ConnectionError(text string) GeocodeResult {
	return Unlocated(ConnectionErrorMarker + ": " + text)
}

// UnexpectedError builds the result of any other failure.
func UnexpectedError(text string) GeocodeResult {
	return Unlocated(UnexpectedErrorMarker + ": " + text)
}

// OK reports whether the row was resolved to coordinates.
func (r GeocodeResult) OK() bool {
	return r.Status == StatusOK && r.Latitude != nil && r.Longitude != nil
}

// Class returns the status without the error text, suitable as a metric label.
func (r GeocodeResult) Class() string {
	class, _, _ := strings.Cut(r.Status, ":")
	return class
}
