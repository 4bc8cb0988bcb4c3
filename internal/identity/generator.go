package identity

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/zarlcorp/zprofile/internal/country"
)

// ErrUnsupportedCountry is returned for countries without locale data.
var ErrUnsupportedCountry = errors.New("unsupported country")

// age bounds for generated birth dates
const (
	minAge = 18
	maxAge = 80
)

// Generator produces random identity data using crypto/rand.
type Generator struct {
	now func() time.Time
}

// New creates a generator.
func New() *Generator {
	return &Generator{now: time.Now}
}

// Generate produces a complete random identity for country c.
func (g *Generator) Generate(c country.Code) (Identity, error) {
	loc, ok := locales[c]
	if !ok {
		return Identity{}, fmt.Errorf("generate %q: %w", c, ErrUnsupportedCountry)
	}

	female := randIntn(2) == 1
	first := pick(loc.maleNames)
	if female {
		first = pick(loc.femaleNames)
	}

	ct := loc.cities[randIntn(len(loc.cities))]

	return Identity{
		ID:         hexID(),
		Country:    c,
		FirstName:  first,
		LastName:   pick(loc.lastNames),
		Female:     female,
		DOB:        g.dob(),
		Street:     street(loc),
		PostalCode: postalCode(ct.postal, loc.postalLen),
		City:       ct.name,
		Phone:      loc.phone(),
		CreatedAt:  g.now(),
	}, nil
}

// dob generates a date of birth between minAge and maxAge years ago.
func (g *Generator) dob() time.Time {
	now := g.now()
	age := minAge + randIntn(maxAge-minAge)
	base := now.AddDate(-age, 0, 0)
	// stay inside the age bracket: at most 364 extra days back
	return base.AddDate(0, 0, -randIntn(365)).Truncate(24 * time.Hour)
}

func street(loc localeData) string {
	num := 1 + randIntn(199)
	name := pick(loc.streets)
	if loc.streetFirst {
		return fmt.Sprintf("%s %d", name, num)
	}
	return fmt.Sprintf("%d %s", num, name)
}

func postalCode(prefix string, length int) string {
	var b strings.Builder
	b.WriteString(prefix)
	for b.Len() < length {
		b.WriteByte(byte('0' + randIntn(10)))
	}
	return b.String()
}

// hexID generates an 8-character hex string.
func hexID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// pick returns a random element from a string slice.
func pick(s []string) string {
	return s[randIntn(len(s))]
}

// randIntn returns a cryptographically random int in [0, n).
func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failure is unrecoverable
		panic("crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}
