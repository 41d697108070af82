package models

import "strings"

// AddressDelimiter separates the non-empty address fields of a composed address.
const AddressDelimiter = ", "

// AddressRecord is one input row reduced to its address fields.
// All fields are free text and may be blank.
type AddressRecord struct {
	Row          int    // Row is the 1-based data row position in the source table.
	Street       string // Street name, "Address"/"Endereço" column.
	Number       string // Number is the house number.
	Neighborhood string // Neighborhood ("Bairro").
	City         string // City ("Cidade").
	State        string // State is the state code ("UF").
	PostalCode   string // PostalCode ("CEP").
}

// Fields returns the address fields in composition order:
// street, number, neighborhood, city, state, postal code.
func (a AddressRecord) Fields() []string {
	return []string{a.Street, a.Number, a.Neighborhood, a.City, a.State, a.PostalCode}
}

// Compose joins the non-blank fields with AddressDelimiter. Fields are trimmed,
// so a record made only of whitespace composes to the empty string.
func (a AddressRecord) Compose() string {
	parts := make([]string, 0, len(a.Fields()))
	for _, field := range a.Fields() {
		if field = strings.TrimSpace(field); field != "" {
			parts = append(parts, field)
		}
	}

	return strings.Join(parts, AddressDelimiter)
}
