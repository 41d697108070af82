package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/geosheet/internal/geocoding"
	"github.com/UnknownOlympus/geosheet/internal/metrics"
	"github.com/UnknownOlympus/geosheet/internal/models"
	"github.com/UnknownOlympus/geosheet/internal/table"
	"github.com/UnknownOlympus/geosheet/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sourceCSV = `Endereco,Numero,Cidade,UF
Avenida Paulista,1578,São Paulo,SP
,,,
Rua Inexistente,0,Lugar Nenhum,XX
Rua Augusta,500,São Paulo,SP
`

const expectedCSV = `Endereco,Numero,Cidade,UF,Latitude,Longitude,GeocodingStatus
Avenida Paulista,1578,São Paulo,SP,-23.5614,-46.6559,OK
,,,,,,EMPTY
Rua Inexistente,0,Lugar Nenhum,XX,,,ZERO_RESULTS
Rua Augusta,500,São Paulo,SP,,,CONNECTION_ERROR: dial tcp: i/o timeout
`

func newTestService(t *testing.T, provider geocoding.Provider, journal *mocks.Interface, delay time.Duration) (*BatchService, *metrics.Metrics) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())

	bs := NewBatchService(logger, provider, "google", nil, appMetrics, delay, "_geocodificado")
	if journal != nil {
		bs.journal = journal
	}

	return bs, appMetrics
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()

	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func collect(progress chan Progress) []Progress {
	close(progress)

	var updates []Progress
	for update := range progress {
		updates = append(updates, update)
	}

	return updates
}

func phases(updates []Progress) []Phase {
	out := make([]Phase, 0, len(updates))
	for _, update := range updates {
		out = append(out, update.Phase)
	}

	return out
}

func expectRows(provider *mocks.Provider) {
	provider.On("Geocode", mock.Anything, "Avenida Paulista, 1578, São Paulo, SP").
		Return(&models.Coordinates{Latitude: -23.5614, Longitude: -46.6559}, nil).Once()
	provider.On("Geocode", mock.Anything, "Rua Inexistente, 0, Lugar Nenhum, XX").
		Return(nil, &geocoding.StatusError{Status: models.StatusZeroResults}).Once()
	provider.On("Geocode", mock.Anything, "Rua Augusta, 500, São Paulo, SP").
		Return(nil, &geocoding.TransportError{Err: errors.New("dial tcp: i/o timeout")}).Once()
}

func TestBatchService_Run(t *testing.T) {
	defer filet.CleanUp(t)

	t.Run("successful batch", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		journal := mocks.NewInterface(t)
		service, appMetrics := newTestService(t, provider, journal, 0)
		source := writeSource(t, "clientes.csv", sourceCSV)
		wantDestination := filepath.Join(filepath.Dir(source), "clientes_geocodificado.csv")

		expectRows(provider)
		journal.On("SaveRun", mock.Anything,
			mock.MatchedBy(func(run models.Run) bool {
				return run.Source == source && run.Destination == wantDestination && run.Provider == "google"
			}),
			mock.MatchedBy(func(rows []models.RunRow) bool {
				return len(rows) == 4 && rows[1].Result.Status == models.StatusEmpty && rows[3].Record.Row == 4
			}),
		).Return(int64(1), nil).Once()

		progress := make(chan Progress, 16)
		destination, err := service.Run(t.Context(), source, progress)
		require.NoError(t, err)
		assert.Equal(t, wantDestination, destination)

		content, err := os.ReadFile(destination)
		require.NoError(t, err)
		assert.Equal(t, expectedCSV, string(content))

		original, err := os.ReadFile(source)
		require.NoError(t, err)
		assert.Equal(t, sourceCSV, string(original))

		updates := collect(progress)
		assert.Equal(t, []Phase{
			PhaseLoading, PhaseProcessing, PhaseProcessing, PhaseProcessing, PhaseProcessing, PhaseSaving, PhaseDone,
		}, phases(updates))
		assert.Equal(t, Progress{Phase: PhaseProcessing, Row: 3, Total: 4}, updates[3])

		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.RowsProcessed.WithLabelValues("OK")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.RowsProcessed.WithLabelValues("EMPTY")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.RowsProcessed.WithLabelValues("ZERO_RESULTS")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.RowsProcessed.WithLabelValues("CONNECTION_ERROR")), 0)
		assert.InDelta(t, 2, testutil.ToFloat64(appMetrics.APIErrors), 0)
		assert.InDelta(t, 4, testutil.ToFloat64(appMetrics.BatchRows), 0)
		assert.Equal(t, 1, testutil.CollectAndCount(appMetrics.RequestSeconds))
	})

	t.Run("journal failure does not fail the batch", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		journal := mocks.NewInterface(t)
		service, _ := newTestService(t, provider, journal, 0)
		source := writeSource(t, "clientes.csv", sourceCSV)

		expectRows(provider)
		journal.On("SaveRun", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), assert.AnError).Once()

		destination, err := service.Run(t.Context(), source, nil)

		require.NoError(t, err)
		assert.True(t, filet.Exists(t, destination))
	})

	t.Run("blank rows never reach the provider", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		service, appMetrics := newTestService(t, provider, nil, time.Hour)
		source := writeSource(t, "vazios.csv", "Rua;Cidade\n;\n  ;\t\n")

		destination, err := service.Run(t.Context(), source, nil)
		require.NoError(t, err)

		content, err := os.ReadFile(destination)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(content), ";EMPTY\n"))
		assert.InDelta(t, 0, testutil.ToFloat64(appMetrics.APIErrors), 0)
	})

	t.Run("unreadable source", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		service, _ := newTestService(t, provider, nil, 0)
		source := filepath.Join(filet.TmpDir(t, ""), "missing.xlsx")

		progress := make(chan Progress, 4)
		destination, err := service.Run(t.Context(), source, progress)

		require.Error(t, err)
		assert.Empty(t, destination)
		assert.False(t, filet.Exists(t, table.DestinationPath(source, "_geocodificado")))
		assert.Equal(t, []Phase{PhaseLoading, PhaseFailed}, phases(collect(progress)))
	})

	t.Run("unsupported format", func(t *testing.T) {
		service, _ := newTestService(t, mocks.NewProvider(t), nil, 0)
		source := writeSource(t, "clientes.txt", sourceCSV)

		_, err := service.Run(t.Context(), source, nil)

		require.ErrorIs(t, err, table.ErrUnsupportedFormat)
	})

	t.Run("interrupted before the first row", func(t *testing.T) {
		service, _ := newTestService(t, mocks.NewProvider(t), nil, 0)
		source := writeSource(t, "clientes.csv", sourceCSV)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := service.Run(ctx, source, nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, filet.Exists(t, table.DestinationPath(source, "_geocodificado")))
	})

	t.Run("interrupted during the pause", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		service, _ := newTestService(t, provider, nil, time.Hour)
		source := writeSource(t, "clientes.csv", sourceCSV)
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		provider.On("Geocode", mock.Anything, "Avenida Paulista, 1578, São Paulo, SP").
			Run(func(mock.Arguments) { cancel() }).
			Return(&models.Coordinates{Latitude: -23.5614, Longitude: -46.6559}, nil).Once()

		_, err := service.Run(ctx, source, nil)

		require.ErrorIs(t, err, context.Canceled)
		require.ErrorContains(t, err, "row 1")
		assert.False(t, filet.Exists(t, table.DestinationPath(source, "_geocodificado")))
	})
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "processing", PhaseProcessing.String())
	assert.Equal(t, "failed", PhaseFailed.String())
	assert.Equal(t, "phase(42)", Phase(42).String())
}
