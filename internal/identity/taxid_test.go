package identity

import (
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/zarlcorp/zprofile/internal/country"
)

func TestCodiceFiscaleKnownValue(t *testing.T) {
	id := Identity{
		Country:   country.IT,
		FirstName: "Mario",
		LastName:  "Rossi",
		DOB:       time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		City:      "Roma",
	}

	got, ok := New().TaxID(id)
	if !ok {
		t.Fatal("IT should have a tax id")
	}
	if got != "RSSMRA80A01H501U" {
		t.Errorf("TaxID = %q, want RSSMRA80A01H501U", got)
	}
}

func TestCodiceFiscaleFemaleDay(t *testing.T) {
	id := Identity{
		Country:   country.IT,
		FirstName: "Giulia",
		LastName:  "Bianchi",
		Female:    true,
		DOB:       time.Date(1992, 7, 15, 0, 0, 0, 0, time.UTC),
		City:      "Milano",
	}

	got, _ := New().TaxID(id)
	// day 15 + 40 for women, July is L, Milano is F205
	if got[8:15] != "L55F205" {
		t.Errorf("TaxID %q: date/place segment = %q, want L55F205", got, got[8:15])
	}
}

func TestCodiceFiscaleShortNames(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"surname with vowels", surnameCode, "Rossi", "RSS"},
		{"short surname padded", surnameCode, "Fo", "FOX"},
		{"surname with space", surnameCode, "De Luca", "DLC"},
		{"name four consonants", nameCode, "Francesco", "FNC"},
		{"name few consonants", nameCode, "Luca", "LCU"},
		{"accented name", nameCode, "Nicolò", "NCL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGeneratedTaxIDShape(t *testing.T) {
	g := New()
	re := regexp.MustCompile(`^[A-Z]{6}\d{2}[ABCDEHLMPRST]\d{2}[A-Z]\d{3}[A-Z]$`)
	for range 50 {
		id, _ := g.Generate(country.IT)
		cf, ok := g.TaxID(id)
		if !ok {
			t.Fatal("IT should have a tax id")
		}
		if !re.MatchString(cf) {
			t.Errorf("tax id %q has unexpected shape", cf)
		}
	}
}

func TestTaxIDOnlyItaly(t *testing.T) {
	g := New()
	for _, c := range []country.Code{country.FR, country.DE, country.LU} {
		id, _ := g.Generate(c)
		if _, ok := g.TaxID(id); ok {
			t.Errorf("%s should not have a tax id", c)
		}
	}
}

func TestVATID(t *testing.T) {
	patterns := map[country.Code]*regexp.Regexp{
		country.IT: regexp.MustCompile(`^IT\d{11}$`),
		country.FR: regexp.MustCompile(`^FR\d{11}$`),
		country.DE: regexp.MustCompile(`^DE\d{9}$`),
		country.LU: regexp.MustCompile(`^LU\d{8}$`),
	}

	g := New()
	for c, re := range patterns {
		v, ok := g.VATID(c)
		if !ok {
			t.Errorf("%s should have a VAT id", c)
			continue
		}
		if !re.MatchString(v) {
			t.Errorf("%s VAT id %q does not match %s", c, v, re)
		}
	}

	if _, ok := g.VATID(country.Code("ES")); ok {
		t.Error("unsupported country should have no VAT id")
	}
}

func TestItalianVATCheckDigit(t *testing.T) {
	for range 50 {
		v := italianVAT()[2:]
		sum := 0
		for i := 0; i < 11; i++ {
			n, _ := strconv.Atoi(string(v[i]))
			if i%2 == 1 {
				n *= 2
				if n > 9 {
					n -= 9
				}
			}
			sum += n
		}
		if sum%10 != 0 {
			t.Errorf("VAT %q fails check digit", v)
		}
	}
}

func TestFrenchVATKey(t *testing.T) {
	for range 50 {
		v := frenchVAT()
		key, _ := strconv.Atoi(v[2:4])
		siren, _ := strconv.Atoi(v[4:])
		if want := (12 + 3*(siren%97)) % 97; key != want {
			t.Errorf("VAT %q key = %d, want %d", v, key, want)
		}
	}
}
