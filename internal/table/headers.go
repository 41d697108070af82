package table

import (
	"strings"
	"unicode"

	"github.com/UnknownOlympus/geosheet/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field is one of the address columns, in composition order.
type Field int

const (
	FieldStreet Field = iota
	FieldNumber
	FieldNeighborhood
	FieldCity
	FieldState
	FieldPostalCode
	fieldCount
)

// fieldAliases lists the accepted headers per field, already in HeaderKey form.
var fieldAliases = [fieldCount][]string{
	FieldStreet:       {"address", "street", "endereco", "logradouro", "rua"},
	FieldNumber:       {"number", "numero", "num"},
	FieldNeighborhood: {"neighborhood", "neighbourhood", "district", "bairro"},
	FieldCity:         {"city", "cidade", "municipio"},
	FieldState:        {"state", "uf", "estado"},
	FieldPostalCode:   {"postalcode", "zipcode", "zip", "postcode", "cep"},
}

// HeaderKey folds a header for alias matching: accents are stripped, case is
// lowered and spaces, underscores and hyphens are dropped ("Endereço" -> "endereco",
// "Postal Code" -> "postalcode").
func HeaderKey(header string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, header)
	if err != nil {
		folded = header
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			return -1
		}
		return unicode.ToLower(r)
	}, folded)
}

// columns maps every address field to its column index, -1 when the column is missing.
// The first matching header wins.
func (t *Table) columns() [fieldCount]int {
	var idx [fieldCount]int
	for field := range idx {
		idx[field] = -1
	}

	for col, header := range t.Header {
		key := HeaderKey(header)
		for field, aliases := range fieldAliases {
			if idx[field] >= 0 {
				continue
			}
			for _, alias := range aliases {
				if key == alias {
					idx[field] = col
				}
			}
		}
	}

	return idx
}

// Records extracts the address fields of every data row, in row order.
// Missing columns yield empty fields.
func (t *Table) Records() []models.AddressRecord {
	idx := t.columns()
	cell := func(row []string, field Field) string {
		if col := idx[field]; col >= 0 && col < len(row) {
			return row[col]
		}
		return ""
	}

	records := make([]models.AddressRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		records = append(records, models.AddressRecord{
			Row:          i + 1,
			Street:       cell(row, FieldStreet),
			Number:       cell(row, FieldNumber),
			Neighborhood: cell(row, FieldNeighborhood),
			City:         cell(row, FieldCity),
			State:        cell(row, FieldState),
			PostalCode:   cell(row, FieldPostalCode),
		})
	}

	return records
}
