package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/geosheet/internal/config"
	"github.com/UnknownOlympus/geosheet/internal/geocoding"
	"github.com/UnknownOlympus/geosheet/internal/metrics"
	"github.com/UnknownOlympus/geosheet/internal/repository"
	"github.com/UnknownOlympus/geosheet/internal/service"
	"github.com/UnknownOlympus/geosheet/internal/shell"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

var errMissingInput = errors.New("please provide the API key and select a spreadsheet")

// reportedError is a batch failure the console has already shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// main is the entry point of the application.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geosheet [flags] <spreadsheet>",
		Short: "Geocode every address of a spreadsheet",
		Long: `
geosheet reads an .xlsx or .csv spreadsheet of postal addresses, resolves each
row to latitude/longitude with a geocoding service and writes a copy of the
spreadsheet with Latitude, Longitude and GeocodingStatus columns appended.
`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	flags := cmd.Flags()
	flags.String("env", envProd, "logging environment: local, development, production")
	flags.String("provider", string(geocoding.ProviderTypeGoogle), "geocoding provider: google, nominatim")
	flags.String("key", "", "API key of the geocoding service")
	flags.String("language", "pt-BR", "preferred response language")
	flags.Duration("delay", 100*time.Millisecond, "pause after every geocoding request")
	flags.Int("rate-limit", 0, "client-side requests per second, 0 disables it")
	flags.String("suffix", "_geocodificado", "suffix inserted before the extension of the output file")
	flags.String("metrics-file", "", "write Prometheus metrics to this textfile after the run")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Env)

	providerType := geocoding.ProviderType(cfg.ProviderType)
	if len(args) == 0 || (providerType == geocoding.ProviderTypeGoogle && cfg.APIKey == "") {
		return errMissingInput
	}
	source := args[0]

	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(reg)

	// Create geocoding provider using factory pattern based on configuration
	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      providerType,
		APIKey:    cfg.APIKey,
		Language:  cfg.Language,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create geocoding provider: %w", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.ProviderType)

	var journal repository.Interface
	if cfg.Database.Enabled() {
		dtb, dbErr := repository.NewDatabase(ctx, cfg.Database)
		if dbErr != nil {
			logger.ErrorContext(ctx, "Run journal disabled", "error", dbErr)
		} else {
			defer dtb.Close()
			repo := repository.NewRepository(dtb, logger)
			if dbErr = repo.EnsureSchema(ctx); dbErr != nil {
				logger.ErrorContext(ctx, "Run journal disabled", "error", dbErr)
			} else {
				journal = repo
			}
		}
	}

	batch := service.NewBatchService(
		logger,
		geoProvider,
		cfg.ProviderType, // Provider name for metrics
		journal,
		appMetrics,
		cfg.Delay,
		cfg.Suffix,
	)

	runErr := shell.NewTerminalConsole().Run(ctx, batch, source)

	if cfg.MetricsFile != "" {
		if err = metrics.WriteTextfile(reg, cfg.MetricsFile); err != nil {
			logger.ErrorContext(ctx, "Failed to write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	if runErr != nil {
		return &reportedError{err: runErr}
	}

	return nil
}

// setupLogger initializes and returns a logger based on the environment provided.
// Logs go to stderr, stdout carries the outcome of the batch.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				AddSource:   false,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:       slog.LevelError,
				AddSource:   false,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
