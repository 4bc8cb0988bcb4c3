package profile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/zarlcorp/zprofile/internal/country"
	"github.com/zarlcorp/zprofile/internal/iban"
	"github.com/zarlcorp/zprofile/internal/identity"
	"github.com/zarlcorp/zprofile/internal/mailbox"
)

// fakeProvisioner counts calls and hands out numbered mailboxes, failing with
// err when set.
type fakeProvisioner struct {
	calls atomic.Int32
	err   error
}

func (f *fakeProvisioner) Provision(ctx context.Context) (mailbox.Mailbox, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return mailbox.Mailbox{}, f.err
	}
	return mailbox.Mailbox{
		ID:      "mb-" + string(rune('0'+n)),
		Address: "user" + string(rune('0'+n)) + "@example.org",
	}, nil
}

func newTestGenerator(p Provisioner) *Generator {
	return NewGenerator(identity.New(), iban.New(), p, nil)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"valid", Options{Country: country.IT, Count: 1}, nil},
		{"max count", Options{Country: country.LU, Count: MaxCount, Extras: Extras}, nil},
		{"unknown country", Options{Country: "ES", Count: 1}, ErrUnsupportedCountry},
		{"zero count", Options{Country: country.FR, Count: 0}, ErrInvalidCount},
		{"too many", Options{Country: country.FR, Count: MaxCount + 1}, ErrInvalidCount},
		{"base field as extra", Options{Country: country.DE, Count: 1, Extras: []Field{IBAN}}, ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOptionsFieldsOrder(t *testing.T) {
	opts := Options{Country: country.IT, Count: 1, Extras: []Field{VatID, Email}}
	got := opts.Fields()
	want := []Field{Name, Surname, BirthDate, Address, IBAN, Country, Email, VatID}

	if len(got) != len(want) {
		t.Fatalf("fields: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fields[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseFields(t *testing.T) {
	got, err := ParseFields("email, Phone,codice fiscale,vat,email")
	if err != nil {
		t.Fatal(err)
	}
	want := []Field{Email, Phone, TaxID, VatID}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d]: got %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := ParseFields("email,fax"); !errors.Is(err, ErrInvalidField) {
		t.Errorf("err = %v, want ErrInvalidField", err)
	}
	if got, err := ParseFields(""); err != nil || len(got) != 0 {
		t.Errorf("empty list: got %v, %v", got, err)
	}
}

func TestGenerateBaseFields(t *testing.T) {
	g := newTestGenerator(nil)

	for _, c := range country.All {
		t.Run(string(c), func(t *testing.T) {
			b, err := g.Generate(context.Background(), Options{Country: c, Count: 3})
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if len(b.Profiles) != 3 {
				t.Fatalf("profiles: got %d, want 3", len(b.Profiles))
			}

			for _, p := range b.Profiles {
				if len(p.Values) != len(Base) {
					t.Errorf("values: got %d, want %d", len(p.Values), len(Base))
				}
				for i, f := range Base {
					if p.Values[i].Field != f {
						t.Errorf("values[%d]: got %q, want %q", i, p.Values[i].Field, f)
					}
					if p.Values[i].Value == "" {
						t.Errorf("%s is empty", f)
					}
				}
				if v, _ := p.Get(Country); v != c.Name() {
					t.Errorf("country: got %q", v)
				}
				if _, ok := p.Get(Email); ok {
					t.Error("email should be absent when not selected")
				}
			}
		})
	}
}

func TestGenerateIBANsDoNotRepeatWithinCycle(t *testing.T) {
	g := NewGenerator(identity.New(), iban.NewWithPools(map[string][]string{
		"DE": {"DE-A", "DE-B"},
	}), nil, nil)

	b, err := g.Generate(context.Background(), Options{Country: country.DE, Count: 3})
	if err != nil {
		t.Fatal(err)
	}

	first, _ := b.Profiles[0].Get(IBAN)
	second, _ := b.Profiles[1].Get(IBAN)
	third, _ := b.Profiles[2].Get(IBAN)

	if first == second {
		t.Errorf("first cycle repeated %q", first)
	}
	for _, v := range []string{first, second, third} {
		if v != "DE-A" && v != "DE-B" {
			t.Errorf("unexpected iban %q", v)
		}
	}
}

func TestGenerateWithoutEmailNeverProvisions(t *testing.T) {
	p := &fakeProvisioner{}
	g := newTestGenerator(p)

	b, err := g.Generate(context.Background(), Options{
		Country: country.FR,
		Count:   5,
		Extras:  []Field{Phone, TaxID, VatID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if n := p.calls.Load(); n != 0 {
		t.Errorf("provider called %d times", n)
	}
	if len(b.Mailboxes) != 0 {
		t.Errorf("mailboxes: got %d", len(b.Mailboxes))
	}
	if len(b.Profiles) != 5 {
		t.Errorf("profiles: got %d", len(b.Profiles))
	}
}

func TestGenerateEmailPerProfile(t *testing.T) {
	p := &fakeProvisioner{}
	g := newTestGenerator(p)

	b, err := g.Generate(context.Background(), Options{Country: country.IT, Count: 3, Extras: []Field{Email}})
	if err != nil {
		t.Fatal(err)
	}

	if n := p.calls.Load(); n != 3 {
		t.Errorf("provider calls: got %d, want 3", n)
	}
	if len(b.Mailboxes) != 3 {
		t.Fatalf("mailboxes: got %d, want 3", len(b.Mailboxes))
	}

	seen := map[string]bool{}
	for i, prof := range b.Profiles {
		addr, ok := prof.Get(Email)
		if !ok || addr == "" {
			t.Errorf("profile %d: missing email", i)
		}
		if seen[addr] {
			t.Errorf("mailbox %q shared between profiles", addr)
		}
		seen[addr] = true
		if prof.MailboxID != b.Mailboxes[i].ID {
			t.Errorf("profile %d: mailbox id %q, want %q", i, prof.MailboxID, b.Mailboxes[i].ID)
		}
	}
	if len(b.Notices) != 0 {
		t.Errorf("notices: %v", b.Notices)
	}
}

func TestGenerateEmailFailureDegrades(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantForbidden bool
	}{
		{
			name: "network",
			err:  &mailbox.Error{Provider: "secmail", Op: "provision", Err: errors.New("connection refused")},
		},
		{
			name:          "forbidden",
			err:           &mailbox.Error{Provider: "secmail", Op: "provision", StatusCode: 403, Err: errors.New("Forbidden")},
			wantForbidden: true,
		},
		{
			name: "no domains",
			err:  mailbox.Wrap("mailtm", "provision", mailbox.ErrNoDomains),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvisioner{err: tt.err}
			g := newTestGenerator(p)

			b, err := g.Generate(context.Background(), Options{Country: country.DE, Count: 2, Extras: []Field{Email}})
			if err != nil {
				t.Fatalf("batch should not fail: %v", err)
			}

			if len(b.Profiles) != 2 {
				t.Fatalf("profiles: got %d, want 2", len(b.Profiles))
			}
			for _, prof := range b.Profiles {
				addr, ok := prof.Get(Email)
				if !ok || addr != "" {
					t.Errorf("email: got %q (present=%v), want empty", addr, ok)
				}
				if v, _ := prof.Get(IBAN); v == "" {
					t.Error("rest of the profile should be intact")
				}
			}

			if len(b.Notices) != 2 {
				t.Fatalf("notices: got %d, want 2", len(b.Notices))
			}
			for _, n := range b.Notices {
				if n.Field != Email || n.Message == "" {
					t.Errorf("notice: %+v", n)
				}
				if n.Forbidden != tt.wantForbidden {
					t.Errorf("forbidden: got %v, want %v", n.Forbidden, tt.wantForbidden)
				}
			}
			if tt.wantForbidden && !strings.Contains(b.Notices[0].Message, "User-Agent") {
				t.Errorf("403 notice should carry advice: %q", b.Notices[0].Message)
			}
		})
	}
}

func TestGenerateNoProvider(t *testing.T) {
	g := newTestGenerator(nil)

	b, err := g.Generate(context.Background(), Options{Country: country.LU, Count: 1, Extras: []Field{Email}})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := b.Profiles[0].Get(Email); v != "" {
		t.Errorf("email: got %q", v)
	}
	if len(b.Notices) != 1 {
		t.Errorf("notices: got %d, want 1", len(b.Notices))
	}
}

func TestGenerateCapabilityFields(t *testing.T) {
	g := newTestGenerator(nil)
	opts := func(c country.Code) Options {
		return Options{Country: c, Count: 1, Extras: []Field{TaxID, VatID}}
	}

	it, err := g.Generate(context.Background(), opts(country.IT))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := it.Profiles[0].Get(TaxID); len(v) != 16 {
		t.Errorf("IT tax id: got %q", v)
	}

	fr, err := g.Generate(context.Background(), opts(country.FR))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := fr.Profiles[0].Get(TaxID); v != TaxIDUnavailable {
		t.Errorf("FR tax id: got %q", v)
	}
	if v, _ := fr.Profiles[0].Get(VatID); !strings.HasPrefix(v, "FR") {
		t.Errorf("FR vat id: got %q", v)
	}
}

func TestGenerateInvalidOptions(t *testing.T) {
	p := &fakeProvisioner{}
	g := newTestGenerator(p)

	b, err := g.Generate(context.Background(), Options{Country: "XX", Count: 1, Extras: []Field{Email}})
	if !errors.Is(err, ErrUnsupportedCountry) {
		t.Fatalf("err = %v, want ErrUnsupportedCountry", err)
	}
	if len(b.Profiles) != 0 {
		t.Error("no profiles expected")
	}
	if p.calls.Load() != 0 {
		t.Error("provider should not be called")
	}
}

func TestGenerateProgress(t *testing.T) {
	g := newTestGenerator(nil)

	var calls [][2]int
	g.OnProgress = func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}

	if _, err := g.Generate(context.Background(), Options{Country: country.IT, Count: 4}); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 4 {
		t.Fatalf("progress calls: got %d, want 4", len(calls))
	}
	for i, c := range calls {
		if c[0] != i+1 || c[1] != 4 {
			t.Errorf("call %d: got %v", i, c)
		}
	}
}

func TestGenerateCancelled(t *testing.T) {
	g := newTestGenerator(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := g.Generate(ctx, Options{Country: country.IT, Count: 3})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(b.Profiles) != 0 {
		t.Errorf("profiles: got %d", len(b.Profiles))
	}
}

func TestWriteCSV(t *testing.T) {
	b := Batch{
		Country: country.IT,
		Fields:  []Field{Name, Surname, Address, Email},
		Profiles: []Profile{
			{ID: "a", Values: []Value{{Name, "Mario"}, {Surname, "Rossi"}, {Address, "Via Roma 1, 00100 Roma"}, {Email, "m@example.org"}}},
			{ID: "b", Values: []Value{{Name, "Lucia"}, {Surname, "Bianchi"}, {Address, "Via Po 2, 10100 Torino"}, {Email, ""}}},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, b); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	want := [][]string{
		{"Name", "Surname", "Address", "Email"},
		{"Mario", "Rossi", "Via Roma 1, 00100 Roma", "m@example.org"},
		{"Lucia", "Bianchi", "Via Po 2, 10100 Torino", ""},
	}
	if len(records) != len(want) {
		t.Fatalf("rows: got %d, want %d", len(records), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if records[i][j] != want[i][j] {
				t.Errorf("[%d][%d]: got %q, want %q", i, j, records[i][j], want[i][j])
			}
		}
	}
}

func TestWriteCSVUTF8(t *testing.T) {
	b := Batch{
		Fields:   []Field{Name},
		Profiles: []Profile{{Values: []Value{{Name, "Zoë Müller"}}}},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Zoë Müller") {
		t.Errorf("got %q", buf.String())
	}
}

func TestExportName(t *testing.T) {
	if got := ExportName(country.LU); got != "profiles_lu.csv" {
		t.Errorf("got %q", got)
	}
}
