// Package identity generates locale-aware fake personal data.
// All generation uses crypto/rand.
package identity

import (
	"time"

	"github.com/zarlcorp/zprofile/internal/country"
)

// BirthDateLayout renders birth dates as dd/mm/yyyy.
const BirthDateLayout = "02/01/2006"

// Identity holds a generated persona for one country.
type Identity struct {
	ID         string       `json:"id"`
	Country    country.Code `json:"country"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	Female     bool         `json:"female"`
	DOB        time.Time    `json:"dob"`
	Street     string       `json:"street"`
	PostalCode string       `json:"postal_code"`
	City       string       `json:"city"`
	Phone      string       `json:"phone"`
	CreatedAt  time.Time    `json:"created_at"`
}

// BirthDate returns the DOB formatted with BirthDateLayout.
func (id Identity) BirthDate() string {
	return id.DOB.Format(BirthDateLayout)
}

// Address returns a single-line postal address in the country's layout.
func (id Identity) Address() string {
	return id.Street + ", " + id.PostalCode + " " + id.City
}
