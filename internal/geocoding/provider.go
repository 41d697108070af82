package geocoding

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/geosheet/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the corresponding coordinates and an error if any occurs.
//
// Implementations report a non-OK service answer as *StatusError and a
// transport failure as *TransportError, so that Classify can map them to row statuses.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
