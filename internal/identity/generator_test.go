package identity

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/zarlcorp/zprofile/internal/country"
)

func TestGenerate(t *testing.T) {
	g := New()

	for _, c := range country.All {
		t.Run(string(c), func(t *testing.T) {
			id, err := g.Generate(c)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}

			tests := []struct {
				name  string
				check func() bool
			}{
				{"ID is hex", func() bool { return regexp.MustCompile(`^[0-9a-f]{8}$`).MatchString(id.ID) }},
				{"Country set", func() bool { return id.Country == c }},
				{"FirstName non-empty", func() bool { return id.FirstName != "" }},
				{"LastName non-empty", func() bool { return id.LastName != "" }},
				{"Street non-empty", func() bool { return id.Street != "" }},
				{"City non-empty", func() bool { return id.City != "" }},
				{"Phone non-empty", func() bool { return id.Phone != "" }},
				{"DOB non-zero", func() bool { return !id.DOB.IsZero() }},
				{"CreatedAt non-zero", func() bool { return !id.CreatedAt.IsZero() }},
				{"Address single line", func() bool { return !strings.Contains(id.Address(), "\n") }},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					if !tt.check() {
						t.Errorf("check failed for identity: %+v", id)
					}
				})
			}
		})
	}
}

func TestGenerateUnsupported(t *testing.T) {
	g := New()
	_, err := g.Generate(country.Code("ES"))
	if err == nil {
		t.Fatal("expected error for unsupported country")
	}
	if !strings.Contains(err.Error(), "unsupported country") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPhoneFormats(t *testing.T) {
	patterns := map[country.Code]*regexp.Regexp{
		country.IT: regexp.MustCompile(`^\+39 3\d{2} \d{3} \d{4}$`),
		country.FR: regexp.MustCompile(`^\+33 [67]( \d{2}){4}$`),
		country.DE: regexp.MustCompile(`^\+49 1\d{2} \d{7}$`),
		country.LU: regexp.MustCompile(`^\+352 \d{3} \d{3} \d{3}$`),
	}

	g := New()
	for c, re := range patterns {
		for range 20 {
			id, _ := g.Generate(c)
			if !re.MatchString(id.Phone) {
				t.Errorf("%s phone %q does not match %s", c, id.Phone, re)
			}
		}
	}
}

func TestPostalCodes(t *testing.T) {
	patterns := map[country.Code]*regexp.Regexp{
		country.IT: regexp.MustCompile(`^\d{5}$`),
		country.FR: regexp.MustCompile(`^\d{5}$`),
		country.DE: regexp.MustCompile(`^\d{5}$`),
		country.LU: regexp.MustCompile(`^L-\d{4}$`),
	}

	g := New()
	for c, re := range patterns {
		for range 20 {
			id, _ := g.Generate(c)
			if !re.MatchString(id.PostalCode) {
				t.Errorf("%s postal code %q does not match %s", c, id.PostalCode, re)
			}
		}
	}
}

func TestStreetLayout(t *testing.T) {
	g := New()

	numberLast := regexp.MustCompile(` \d+$`)
	numberFirst := regexp.MustCompile(`^\d+ `)

	for range 20 {
		it, _ := g.Generate(country.IT)
		if !numberLast.MatchString(it.Street) {
			t.Errorf("IT street %q should end with the house number", it.Street)
		}
		fr, _ := g.Generate(country.FR)
		if !numberFirst.MatchString(fr.Street) {
			t.Errorf("FR street %q should start with the house number", fr.Street)
		}
	}
}

func TestDOBRange(t *testing.T) {
	g := New()
	now := time.Now()
	minDOB := now.AddDate(-maxAge-1, 0, 0)
	maxDOB := now.AddDate(-minAge, 0, 1)

	for range 200 {
		id, _ := g.Generate(country.DE)
		if id.DOB.Before(minDOB) || id.DOB.After(maxDOB) {
			t.Errorf("DOB %s out of range", id.DOB.Format("2006-01-02"))
		}
	}
}

func TestBirthDateLayout(t *testing.T) {
	id := Identity{DOB: time.Date(1985, 3, 7, 0, 0, 0, 0, time.UTC)}
	if got := id.BirthDate(); got != "07/03/1985" {
		t.Errorf("BirthDate = %q, want 07/03/1985", got)
	}
}

func TestAddress(t *testing.T) {
	id := Identity{Street: "Via Roma 12", PostalCode: "00184", City: "Roma"}
	if got := id.Address(); got != "Via Roma 12, 00184 Roma" {
		t.Errorf("Address = %q", got)
	}
}

func TestGenerateRandomness(t *testing.T) {
	g := New()
	a, _ := g.Generate(country.IT)
	b, _ := g.Generate(country.IT)
	if a.ID == b.ID {
		t.Errorf("consecutive IDs should differ: got %q twice", a.ID)
	}
}
