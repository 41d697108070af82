package geocoding

import (
	"context"
	"errors"
	"log/slog"

	"github.com/UnknownOlympus/geosheet/internal/models"
)

// Resolver turns one composed address into a GeocodeResult. It performs exactly
// one provider call and never retries; every failure becomes a row status.
type Resolver struct {
	provider Provider
	log      *slog.Logger
}

// NewResolver creates a Resolver on top of the given provider.
func NewResolver(provider Provider, log *slog.Logger) *Resolver {
	return &Resolver{provider: provider, log: log}
}

// Resolve geocodes address and classifies the outcome.
func (r *Resolver) Resolve(ctx context.Context, address string) models.GeocodeResult {
	coords, err := r.provider.Geocode(ctx, address)
	if err != nil {
		result := Classify(err)
		r.log.DebugContext(ctx, "Address not resolved", "address", address, "status", result.Status)
		return result
	}

	if coords == nil {
		return models.UnexpectedError(ErrNoCoordinates.Error())
	}

	return models.Located(*coords)
}

// Classify maps a provider error to the row status taxonomy:
// the service's own status, a connection error, or an unexpected error.
func Classify(err error) models.GeocodeResult {
	var statusErr *StatusError
	var transportErr *TransportError

	switch {
	case errors.As(err, &statusErr):
		return models.Unlocated(statusErr.Status)
	case errors.As(err, &transportErr):
		return models.ConnectionError(transportErr.Error())
	default:
		return models.UnexpectedError(err.Error())
	}
}
