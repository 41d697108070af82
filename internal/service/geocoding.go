package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/geosheet/internal/geocoding"
	"github.com/UnknownOlympus/geosheet/internal/metrics"
	"github.com/UnknownOlympus/geosheet/internal/models"
	"github.com/UnknownOlympus/geosheet/internal/repository"
	"github.com/UnknownOlympus/geosheet/internal/table"
)

// ErrSameDestination is returned when the derived output path would overwrite the source.
var ErrSameDestination = errors.New("destination path equals source path")

// BatchService geocodes every row of a spreadsheet and writes the augmented copy.
// A single Run processes rows strictly in file order, one provider call at a time.
type BatchService struct {
	log          *slog.Logger         // Logger for logging batch activities
	resolver     *geocoding.Resolver  // Resolver turning addresses into row results
	journal      repository.Interface // Optional run journal, nil when disabled
	providerName string               // Name of the provider for metrics labeling
	metrics      *metrics.Metrics     // Metrics for tracking batch progress
	delay        time.Duration        // Pause after every provider call
	suffix       string               // Output file name suffix
	now          func() time.Time
}

// NewBatchService creates a new instance of BatchService.
// journal may be nil, in which case finished runs are not recorded.
func NewBatchService(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	journal repository.Interface,
	metrics *metrics.Metrics,
	delay time.Duration,
	suffix string,
) *BatchService {
	return &BatchService{
		log:          log,
		resolver:     geocoding.NewResolver(provider, log),
		journal:      journal,
		providerName: providerName,
		metrics:      metrics,
		delay:        delay,
		suffix:       suffix,
		now:          time.Now,
	}
}

// Run loads source, resolves every row and saves the result next to it.
// Row failures become status values; any other error aborts the batch and
// no output file is written. Updates are sent on progress when it is not nil.
func (bs *BatchService) Run(ctx context.Context, source string, progress chan<- Progress) (string, error) {
	started := bs.now()
	defer func() {
		bs.metrics.BatchSeconds.Set(bs.now().Sub(started).Seconds())
	}()

	destination, rows, err := bs.run(ctx, source, progress)
	if err != nil {
		bs.log.ErrorContext(ctx, "Batch failed", "source", source, "error", err)
		bs.emit(progress, Progress{Phase: PhaseFailed})
		return "", err
	}

	bs.journalRun(ctx, models.Run{
		Source:      source,
		Destination: destination,
		Provider:    bs.providerName,
		StartedAt:   started,
		FinishedAt:  bs.now(),
	}, rows)

	bs.emit(progress, Progress{Phase: PhaseDone, Row: len(rows), Total: len(rows)})
	bs.log.InfoContext(ctx, "Batch finished", "source", source, "destination", destination, "rows", len(rows))

	return destination, nil
}

func (bs *BatchService) run(ctx context.Context, source string, progress chan<- Progress) (string, []models.RunRow, error) {
	bs.emit(progress, Progress{Phase: PhaseLoading})

	destination := table.DestinationPath(source, bs.suffix)
	if destination == source {
		return "", nil, fmt.Errorf("%w: %s", ErrSameDestination, source)
	}

	src, err := table.Load(source)
	if err != nil {
		return "", nil, err
	}

	records := src.Records()
	total := len(records)
	bs.metrics.BatchRows.Set(float64(total))
	bs.log.InfoContext(ctx, "Spreadsheet loaded", "source", source, "rows", total)

	rows := make([]models.RunRow, 0, total)
	results := make([]models.GeocodeResult, 0, total)
	for _, record := range records {
		if err = ctx.Err(); err != nil {
			return "", nil, fmt.Errorf("batch interrupted at row %d of %d: %w", record.Row, total, err)
		}

		bs.metrics.CurrentRow.Set(float64(record.Row))
		bs.emit(progress, Progress{Phase: PhaseProcessing, Row: record.Row, Total: total})

		result, rowErr := bs.processRow(ctx, record)
		if rowErr != nil {
			return "", nil, rowErr
		}

		bs.metrics.RowsProcessed.WithLabelValues(result.Class()).Inc()
		results = append(results, result)
		rows = append(rows, models.RunRow{Record: record, Result: result})
	}

	bs.emit(progress, Progress{Phase: PhaseSaving, Row: total, Total: total})

	out, err := table.NewResultTable(src, results)
	if err != nil {
		return "", nil, err
	}
	if err = out.Save(destination); err != nil {
		return "", nil, err
	}

	return destination, rows, nil
}

// processRow resolves a single record. Rows without any address text are
// marked EMPTY without calling the provider.
func (bs *BatchService) processRow(ctx context.Context, record models.AddressRecord) (models.GeocodeResult, error) {
	address := record.Compose()
	if address == "" {
		bs.log.DebugContext(ctx, "Row has no address", "row", record.Row)
		return models.Unlocated(models.StatusEmpty), nil
	}

	startTime := time.Now()
	result := bs.resolver.Resolve(ctx, address)
	bs.metrics.ObserveRequest(bs.providerName, startTime)

	if !result.OK() {
		bs.metrics.APIErrors.Inc()
		bs.log.WarnContext(ctx, "Row not geocoded", "row", record.Row, "status", result.Status)
	} else {
		bs.log.DebugContext(ctx, "Row geocoded", "row", record.Row, "address", address)
	}

	if err := bs.pause(ctx); err != nil {
		return models.GeocodeResult{}, fmt.Errorf("batch interrupted at row %d: %w", record.Row, err)
	}

	return result, nil
}

func (bs *BatchService) pause(ctx context.Context) error {
	if bs.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(bs.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// journalRun records the finished batch. Failures are logged only: the
// output file already exists at this point.
func (bs *BatchService) journalRun(ctx context.Context, run models.Run, rows []models.RunRow) {
	if bs.journal == nil {
		return
	}

	runID, err := bs.journal.SaveRun(ctx, run, rows)
	if err != nil {
		bs.log.ErrorContext(ctx, "Failed to journal run", "source", run.Source, "error", err)
		return
	}

	bs.log.InfoContext(ctx, "Run journaled", "run_id", runID)
}

func (bs *BatchService) emit(progress chan<- Progress, update Progress) {
	if progress != nil {
		progress <- update
	}
}
