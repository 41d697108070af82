package table

import (
	"fmt"
	"io"

	"github.com/UnknownOlympus/geosheet/internal/models"
)

// Names of the columns appended to every output table.
const (
	LatitudeColumn  = "Latitude"
	LongitudeColumn = "Longitude"
	StatusColumn    = "GeocodingStatus"
)

// ResultTable is the source table plus the latitude, longitude and status
// columns, row-aligned with the source.
type ResultTable struct {
	Source  *Table
	Results []models.GeocodeResult
}

// NewResultTable pairs a table with one result per data row.
func NewResultTable(source *Table, results []models.GeocodeResult) (*ResultTable, error) {
	if len(results) != len(source.Rows) {
		return nil, fmt.Errorf("%w: %d results for %d rows", ErrRowMismatch, len(results), len(source.Rows))
	}

	return &ResultTable{Source: source, Results: results}, nil
}

// Header returns the source header followed by the three result columns.
func (rt *ResultTable) Header() []string {
	header := make([]string, 0, len(rt.Source.Header)+3)
	header = append(header, rt.Source.Header...)
	return append(header, LatitudeColumn, LongitudeColumn, StatusColumn)
}

// rows renders the header and data rows as cell values: source cells as
// strings, coordinates as float64 and blanks for missing coordinates.
func (rt *ResultTable) rows() [][]any {
	out := make([][]any, 0, len(rt.Source.Rows)+1)
	out = append(out, toCells(rt.Header()))

	for i, row := range rt.Source.Rows {
		result := rt.Results[i]
		cells := toCells(row)
		cells = append(cells, coordinate(result.Latitude), coordinate(result.Longitude), result.Status)
		out = append(out, cells)
	}

	return out
}

func toCells(values []string) []any {
	cells := make([]any, len(values), len(values)+3)
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func coordinate(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

// Save writes the result table to path in the format given by its extension.
// The file appears only once it has been written completely.
func (rt *ResultTable) Save(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatXLSX:
		return writeAtomic(path, func(w io.Writer) error { return writeXLSX(w, rt) })
	default:
		return writeAtomic(path, func(w io.Writer) error { return writeCSV(w, rt) })
	}
}
