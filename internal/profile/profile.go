// Package profile assembles synthetic profiles from identity data, allocated
// IBANs and, optionally, provisioned mailboxes.
package profile

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/zarlcorp/zprofile/internal/country"
	"github.com/zarlcorp/zprofile/internal/mailbox"
)

// Field names one column of a profile.
type Field string

const (
	Name      Field = "Name"
	Surname   Field = "Surname"
	BirthDate Field = "Birth Date"
	Address   Field = "Address"
	IBAN      Field = "IBAN"
	Country   Field = "Country"
	Email     Field = "Email"
	Phone     Field = "Phone"
	TaxID     Field = "Tax ID"
	VatID     Field = "VAT ID"
)

// Base fields are present in every profile, in this order.
var Base = []Field{Name, Surname, BirthDate, Address, IBAN, Country}

// Extras are the optional fields, in column order.
var Extras = []Field{Email, Phone, TaxID, VatID}

// MaxCount bounds the number of profiles per batch.
const MaxCount = 50

// Placeholders for capability fields a country does not have.
const (
	TaxIDUnavailable = "N/A (IT only)"
	VatIDUnavailable = "N/A"
)

var (
	// ErrUnsupportedCountry is returned for countries without locale data.
	ErrUnsupportedCountry = errors.New("unsupported country")

	// ErrInvalidCount is returned when the batch size is out of range.
	ErrInvalidCount = errors.New("profile count out of range")

	// ErrInvalidField is returned for unknown or non-optional extras.
	ErrInvalidField = errors.New("invalid optional field")
)

var fieldAliases = map[string]Field{
	"email":          Email,
	"mail":           Email,
	"phone":          Phone,
	"telefono":       Phone,
	"tax id":         TaxID,
	"taxid":          TaxID,
	"tax_id":         TaxID,
	"codice fiscale": TaxID,
	"cf":             TaxID,
	"vat id":         VatID,
	"vatid":          VatID,
	"vat_id":         VatID,
	"vat":            VatID,
	"partita iva":    VatID,
}

// ParseField resolves an optional field name, case-insensitively.
func ParseField(s string) (Field, error) {
	if f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidField, s)
}

// ParseFields parses a comma-separated list of optional fields.
func ParseFields(s string) ([]Field, error) {
	var out []Field
	for part := range strings.SplitSeq(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseField(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Options selects what a batch contains.
type Options struct {
	Country country.Code
	Count   int
	Extras  []Field
}

// Validate checks country, count and extras.
func (o Options) Validate() error {
	if !o.Country.Valid() {
		return fmt.Errorf("country %q: %w", o.Country, ErrUnsupportedCountry)
	}
	if o.Count < 1 || o.Count > MaxCount {
		return fmt.Errorf("count %d (want 1-%d): %w", o.Count, MaxCount, ErrInvalidCount)
	}
	for _, f := range o.Extras {
		if !slices.Contains(Extras, f) {
			return fmt.Errorf("%w: %q", ErrInvalidField, f)
		}
	}
	return nil
}

// Has reports whether the optional field f is selected.
func (o Options) Has(f Field) bool {
	return slices.Contains(o.Extras, f)
}

// Fields returns the columns of a batch built with o: the base fields followed
// by the selected extras in canonical order.
func (o Options) Fields() []Field {
	fields := slices.Clone(Base)
	for _, f := range Extras {
		if o.Has(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// Value is one field of a profile.
type Value struct {
	Field Field  `json:"field"`
	Value string `json:"value"`
}

// Profile is an ordered field to value mapping.
type Profile struct {
	ID        string       `json:"id"`
	Country   country.Code `json:"country"`
	MailboxID string       `json:"mailbox_id,omitempty"`
	Values    []Value      `json:"values"`
}

// Get returns the value of f.
func (p Profile) Get(f Field) (string, bool) {
	for _, v := range p.Values {
		if v.Field == f {
			return v.Value, true
		}
	}
	return "", false
}

func (p *Profile) set(f Field, value string) {
	p.Values = append(p.Values, Value{Field: f, Value: value})
}

// Notice reports a non-fatal problem with one profile.
type Notice struct {
	Index   int    `json:"index"`
	Field   Field  `json:"field"`
	Message string `json:"message"`
	// Forbidden marks provider 403 responses.
	Forbidden bool `json:"forbidden,omitempty"`
}

func (n Notice) String() string {
	return fmt.Sprintf("profile %d: %s: %s", n.Index+1, n.Field, n.Message)
}

// Batch is the result of one generation request.
type Batch struct {
	Country   country.Code      `json:"country"`
	Fields    []Field           `json:"fields"`
	Profiles  []Profile         `json:"profiles"`
	Mailboxes []mailbox.Mailbox `json:"-"`
	Notices   []Notice          `json:"notices,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
