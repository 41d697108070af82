package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// utf8BOM is prepended by spreadsheet programs when exporting CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func loadCSV(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	delimiter := sniffDelimiter(data)
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV rows: %w", err)
	}

	tbl := New("", rows)
	tbl.Delimiter = delimiter

	return tbl, nil
}

// sniffDelimiter picks ';' when the header line uses it and has no comma,
// as spreadsheets in comma-decimal locales export that way.
func sniffDelimiter(data []byte) rune {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.ContainsRune(line, ';') && !bytes.ContainsRune(line, ',') {
		return ';'
	}

	return ','
}

func writeCSV(w io.Writer, rt *ResultTable) error {
	buffered := bufio.NewWriter(w)
	writer := csv.NewWriter(buffered)
	if rt.Source.Delimiter != 0 {
		writer.Comma = rt.Source.Delimiter
	}

	for _, row := range rt.rows() {
		record := make([]string, len(row))
		for i, cell := range row {
			switch v := cell.(type) {
			case float64:
				record[i] = strconv.FormatFloat(v, 'f', -1, 64)
			case string:
				record[i] = v
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}

	return buffered.Flush()
}
