package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/geosheet/internal/models"
	"github.com/jackc/pgx/v5"
)

const schemaQuery = `
	CREATE TABLE IF NOT EXISTS geocoding_runs (
		run_id      BIGSERIAL PRIMARY KEY,
		source      TEXT NOT NULL,
		destination TEXT NOT NULL,
		provider    TEXT NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		total_rows  INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS geocoding_results (
		run_id     BIGINT NOT NULL REFERENCES geocoding_runs (run_id) ON DELETE CASCADE,
		row_number INTEGER NOT NULL,
		address    TEXT NOT NULL,
		latitude   DOUBLE PRECISION,
		longitude  DOUBLE PRECISION,
		status     TEXT NOT NULL,
		PRIMARY KEY (run_id, row_number)
	);
`

const insertRunQuery = `
	INSERT INTO geocoding_runs (source, destination, provider, started_at, finished_at, total_rows)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING run_id;
`

var resultColumns = []string{"run_id", "row_number", "address", "latitude", "longitude", "status"}

// EnsureSchema creates the journal tables when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaQuery); err != nil {
		return fmt.Errorf("failed to create journal schema: %w", err)
	}

	return nil
}

// SaveRun stores a finished batch and the result of each of its rows in a
// single transaction. It returns the identifier assigned to the run.
func (r *Repository) SaveRun(ctx context.Context, run models.Run, rows []models.RunRow) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var runID int64
	err = tx.QueryRow(ctx, insertRunQuery,
		run.Source, run.Destination, run.Provider, run.StartedAt, run.FinishedAt, len(rows),
	).Scan(&runID)
	if err != nil {
		return 0, r.rollback(ctx, tx, fmt.Errorf("failed to insert run: %w", err))
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"geocoding_results"}, resultColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			row := rows[i]
			return []any{
				runID, row.Record.Row, row.Record.Compose(),
				row.Result.Latitude, row.Result.Longitude, row.Result.Status,
			}, nil
		}),
	)
	if err != nil {
		return 0, r.rollback(ctx, tx, fmt.Errorf("failed to copy run results: %w", err))
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	r.log.DebugContext(ctx, "Run journaled", "run_id", runID, "rows", copied)

	return runID, nil
}

func (r *Repository) rollback(ctx context.Context, tx pgx.Tx, cause error) error {
	if err := tx.Rollback(ctx); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to rollback: %w", err))
	}

	return cause
}
