package model

import (
	"fmt"
	"strings"

	"github.com/baltgc/gomotel/internal/apperr"
)

// Address is the immutable postal address of a motel.  All components are
// required.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// NewAddress validates and constructs an Address.
func NewAddress(street, city, state, zipCode, country string) (Address, error) {
	fields := []struct{ name, value string }{
		{"street", street},
		{"city", city},
		{"state", state},
		{"zip code", zipCode},
		{"country", country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return Address{}, apperr.InvalidInput("%s cannot be empty", f.name)
		}
	}
	return Address{Street: street, City: city, State: state, ZipCode: zipCode, Country: country}, nil
}

func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s %s, %s", a.Street, a.City, a.State, a.ZipCode, a.Country)
}
