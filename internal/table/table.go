// Package table reads and writes the tabular files processed by a batch:
// Excel workbooks (.xlsx) and delimited text (.csv). Every cell is handled as text.
package table

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Common errors for table loading and saving.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoSheet           = errors.New("workbook has no sheets")
	ErrRowMismatch       = errors.New("result count does not match row count")
)

// Format identifies a supported file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatOf derives the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Table is the content of a source file: a header row and data rows.
// All rows are padded to the header width, blank cells are empty strings.
type Table struct {
	Sheet     string     // Sheet is the worksheet name (xlsx only).
	Delimiter rune       // Delimiter is the field separator (csv only).
	Header    []string   // Header holds the column names from the first row.
	Rows      [][]string // Rows holds the data rows in file order.
}

// New builds a table from raw rows, the first of which is the header.
func New(sheet string, raw [][]string) *Table {
	tbl := &Table{Sheet: sheet, Delimiter: ','}
	if len(raw) == 0 {
		return tbl
	}

	width := 0
	for _, row := range raw {
		width = max(width, len(row))
	}

	tbl.Header = pad(raw[0], width)
	tbl.Rows = make([][]string, 0, len(raw)-1)
	for _, row := range raw[1:] {
		tbl.Rows = append(tbl.Rows, pad(row, width))
	}

	return tbl
}

func pad(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// Load reads the first sheet of an xlsx workbook or a csv file.
func Load(path string) (*Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return loadXLSX(path)
	default:
		return loadCSV(path)
	}
}

// DestinationPath inserts suffix between the base name and the extension:
// "addresses.xlsx" with "_geocodificado" gives "addresses_geocodificado.xlsx".
func DestinationPath(source, suffix string) string {
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + suffix + ext
}

// writeAtomic writes into a temporary sibling of path and renames it into place,
// so a failed write never leaves a partial file at path.
func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}
