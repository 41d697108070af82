package geocoding_test

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"testing"

	"github.com/UnknownOlympus/geosheet/internal/geocoding"
	"github.com/UnknownOlympus/geosheet/internal/models"
	"github.com/UnknownOlympus/geosheet/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	ctx := t.Context()

	t.Run("ok with coordinates", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		provider.On("Geocode", ctx, "Rua Augusta, 500").
			Return(&models.Coordinates{Latitude: -23.5, Longitude: -46.6}, nil).Once()

		result := geocoding.NewResolver(provider, slog.Default()).Resolve(ctx, "Rua Augusta, 500")

		require.True(t, result.OK())
		assert.Equal(t, "OK", result.Status)
		assert.InEpsilon(t, -23.5, *result.Latitude, 1e-9)
		assert.InEpsilon(t, -46.6, *result.Longitude, 1e-9)
		provider.AssertExpectations(t)
	})

	t.Run("service status is kept literally", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		provider.On("Geocode", ctx, "nowhere").
			Return(nil, &geocoding.StatusError{Status: "ZERO_RESULTS"}).Once()

		result := geocoding.NewResolver(provider, slog.Default()).Resolve(ctx, "nowhere")

		assert.Equal(t, models.GeocodeResult{Status: "ZERO_RESULTS"}, result)
		provider.AssertExpectations(t)
	})

	t.Run("transport failure carries the failure text", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		dnsErr := errors.New("dial tcp: lookup maps.googleapis.com: no such host")
		provider.On("Geocode", ctx, "Rua Augusta").
			Return(nil, &geocoding.TransportError{Err: dnsErr}).Once()

		result := geocoding.NewResolver(provider, slog.Default()).Resolve(ctx, "Rua Augusta")

		assert.Nil(t, result.Latitude)
		assert.Nil(t, result.Longitude)
		assert.Equal(t, "CONNECTION_ERROR: dial tcp: lookup maps.googleapis.com: no such host", result.Status)
	})

	t.Run("anything else is unexpected", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		provider.On("Geocode", ctx, "Rua Augusta").Return(nil, assert.AnError).Once()

		result := geocoding.NewResolver(provider, slog.Default()).Resolve(ctx, "Rua Augusta")

		assert.Equal(t, "UNEXPECTED_ERROR: "+assert.AnError.Error(), result.Status)
	})

	t.Run("success without coordinates is unexpected", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		provider.On("Geocode", ctx, "Rua Augusta").Return(nil, nil).Once()

		result := geocoding.NewResolver(provider, slog.Default()).Resolve(ctx, "Rua Augusta")

		assert.Equal(t, "UNEXPECTED_ERROR", result.Class())
	})
}

func TestClassify(t *testing.T) {
	t.Run("wrapped status error", func(t *testing.T) {
		err := fmt.Errorf("row 3: %w", &geocoding.StatusError{Status: "OVER_QUERY_LIMIT", Message: "quota"})

		assert.Equal(t, "OVER_QUERY_LIMIT", geocoding.Classify(err).Status)
	})

	t.Run("url error from google is redacted", func(t *testing.T) {
		ctx := t.Context()
		urlErr := &url.Error{
			Op:  "Get",
			URL: "https://maps.googleapis.com/maps/api/geocode/json?address=x&key=secret",
			Err: errors.New("i/o timeout"),
		}
		client := mocks.NewGoogleAPIClient(t)
		client.On("Geocode", ctx, mock.Anything).Return(nil, urlErr).Once()
		provider := geocoding.NewGoogleProvider(client, "", slog.Default())

		result := geocoding.NewResolver(provider, slog.Default()).Resolve(ctx, "x")

		assert.Equal(t, "CONNECTION_ERROR", result.Class())
		assert.Contains(t, result.Status, "i/o timeout")
		assert.Contains(t, result.Status, "address=x")
		assert.NotContains(t, result.Status, "secret")
	})
}
