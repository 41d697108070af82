package shell_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/UnknownOlympus/geosheet/internal/service"
	"github.com/UnknownOlympus/geosheet/internal/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	updates     []service.Progress
	destination string
	err         error
}

func (j *fakeJob) Run(_ context.Context, _ string, progress chan<- service.Progress) (string, error) {
	for _, update := range j.updates {
		progress <- update
	}
	return j.destination, j.err
}

func batchUpdates() []service.Progress {
	return []service.Progress{
		{Phase: service.PhaseLoading},
		{Phase: service.PhaseProcessing, Row: 1, Total: 2},
		{Phase: service.PhaseProcessing, Row: 2, Total: 2},
		{Phase: service.PhaseSaving, Row: 2, Total: 2},
		{Phase: service.PhaseDone, Row: 2, Total: 2},
	}
}

func TestConsole_Run(t *testing.T) {
	t.Run("success with status lines", func(t *testing.T) {
		var out, status bytes.Buffer
		console := shell.NewConsole(&out, &status, false)
		job := &fakeJob{updates: batchUpdates(), destination: "/data/clientes_geocodificado.xlsx"}

		err := console.Run(t.Context(), job, "/data/clientes.xlsx")

		require.NoError(t, err)
		assert.Equal(t,
			"Process completed! File saved as: /data/clientes_geocodificado.xlsx\nProcess finished.\n",
			out.String())
		assert.Equal(t,
			"Loading spreadsheet...\nProcessing row 1 of 2...\nProcessing row 2 of 2...\nSaving results...\n",
			status.String())
	})

	t.Run("failure is reported once", func(t *testing.T) {
		var out, status bytes.Buffer
		console := shell.NewConsole(&out, &status, false)
		job := &fakeJob{
			updates: []service.Progress{{Phase: service.PhaseLoading}, {Phase: service.PhaseFailed}},
			err:     assert.AnError,
		}

		err := console.Run(t.Context(), job, "/data/missing.xlsx")

		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, "An error occurred: "+assert.AnError.Error()+"\nProcess finished.\n", out.String())
	})

	t.Run("interactive bar does not leak into the outcome", func(t *testing.T) {
		var out, status bytes.Buffer
		console := shell.NewConsole(&out, &status, true)
		job := &fakeJob{updates: batchUpdates(), destination: "/data/out.csv"}

		err := console.Run(t.Context(), job, "/data/in.csv")

		require.NoError(t, err)
		assert.Equal(t, "Process completed! File saved as: /data/out.csv\nProcess finished.\n", out.String())
		assert.Contains(t, status.String(), "Processing row 1 of 2")
	})
}
