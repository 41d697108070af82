package geocoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/UnknownOlympus/geosheet/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client   GoogleAPIClient // client is the Google Maps API client
	language string          // language is the preferred response language
	log      *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// mapsErrorPrefix starts every status error produced by the maps SDK ("maps: STATUS - message").
const mapsErrorPrefix = "maps: "

// maxErrorBody bounds how much of a non-2xx body ends up in a row status.
const maxErrorBody = 256

// NewGoogleProvider initializes a new GoogleProvider with the given client, response language and logger.
func NewGoogleProvider(client GoogleAPIClient, language string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, language: language, log: log}
}

// Geocode takes a context and an address string as input, and returns the geographical coordinates
// (longitude and latitude) of the provided address using the Google Maps Geocoding API.
// A reply without candidates is reported as a ZERO_RESULTS status, other non-OK statuses
// as *StatusError, and transport failures as *TransportError. The SDK returns an empty
// slice both for ZERO_RESULTS and for an OK reply without candidates, so the two cannot
// be told apart. A candidate without a location is an ErrNoLocation.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address, Language: gp.language}
	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, classifyGoogleError(err)
	}

	if len(geocodeResponse) == 0 {
		return nil, &StatusError{Status: models.StatusZeroResults}
	}
	coords := geocodeResponse[0].Geometry.Location
	if coords == (maps.LatLng{}) {
		return nil, fmt.Errorf("failed to geocode address: %w", ErrNoLocation)
	}

	return &models.Coordinates{Longitude: coords.Lng, Latitude: coords.Lat}, nil
}

func classifyGoogleError(err error) error {
	if status, message, ok := parseMapsStatus(err); ok {
		return &StatusError{Status: status, Message: message}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return newTransportError(err)
	}

	return fmt.Errorf("failed to geocode address: %w", err)
}

// parseMapsStatus extracts the service status from an SDK error such as
// "maps: OVER_QUERY_LIMIT - You have exceeded your daily request quota".
func parseMapsStatus(err error) (string, string, bool) {
	rest, ok := strings.CutPrefix(err.Error(), mapsErrorPrefix)
	if !ok {
		return "", "", false
	}

	status, message, _ := strings.Cut(rest, " - ")
	if status == "" || strings.IndexFunc(status, func(r rune) bool {
		return (r < 'A' || r > 'Z') && r != '_'
	}) >= 0 {
		return "", "", false
	}

	return status, strings.TrimSpace(message), true
}

// NewHTTPClient returns the HTTP client handed to the maps SDK. The SDK decodes
// any body it receives, so non-2xx answers are turned into transport errors here.
func NewHTTPClient() *http.Client {
	return &http.Client{Transport: statusTransport{next: http.DefaultTransport}}
}

type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return resp, nil
}
