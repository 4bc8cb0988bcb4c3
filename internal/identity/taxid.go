package identity

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/zarlcorp/zprofile/internal/country"
)

// capability generators keyed by country; a missing key means the country
// has no such identifier.
var (
	taxIDs = map[country.Code]func(Identity) string{
		country.IT: codiceFiscale,
	}

	vatIDs = map[country.Code]func() string{
		country.IT: italianVAT,
		country.FR: frenchVAT,
		country.DE: func() string { return "DE" + digits(9) },
		country.LU: func() string { return "LU" + digits(8) },
	}
)

// TaxID returns a personal tax identifier for id, if its country has one.
func (g *Generator) TaxID(id Identity) (string, bool) {
	fn, ok := taxIDs[id.Country]
	if !ok {
		return "", false
	}
	return fn(id), true
}

// VATID returns a VAT number for country c, if one can be generated.
func (g *Generator) VATID(c country.Code) (string, bool) {
	fn, ok := vatIDs[c]
	if !ok {
		return "", false
	}
	return fn(), true
}

const monthCodes = "ABCDEHLMPRST"

// codiceFiscale builds an Italian fiscal code: surname, name, birth date,
// birthplace and check character.
func codiceFiscale(id Identity) string {
	day := id.DOB.Day()
	if id.Female {
		day += 40
	}

	var b strings.Builder
	b.WriteString(surnameCode(id.LastName))
	b.WriteString(nameCode(id.FirstName))
	fmt.Fprintf(&b, "%02d", id.DOB.Year()%100)
	b.WriteByte(monthCodes[id.DOB.Month()-1])
	fmt.Fprintf(&b, "%02d", day)
	b.WriteString(belfioreFor(id.City))

	code := b.String()
	return code + string(checkChar(code))
}

func surnameCode(s string) string {
	cons, vows := splitLetters(s)
	return pad3(cons + vows)
}

func nameCode(s string) string {
	cons, vows := splitLetters(s)
	if len(cons) >= 4 {
		return string([]byte{cons[0], cons[2], cons[3]})
	}
	return pad3(cons + vows)
}

// splitLetters upper-cases s, folds accents and returns consonants and vowels
// in order of appearance.
func splitLetters(s string) (cons, vows string) {
	var c, v strings.Builder
	for _, r := range norm.NFD.String(strings.ToUpper(s)) {
		if r < 'A' || r > 'Z' {
			continue
		}
		if strings.ContainsRune("AEIOU", r) {
			v.WriteRune(r)
		} else {
			c.WriteRune(r)
		}
	}
	return c.String(), v.String()
}

func pad3(s string) string {
	s += "XXX"
	return s[:3]
}

func belfioreFor(name string) string {
	for _, c := range locales[country.IT].cities {
		if c.name == name {
			return c.belfiore
		}
	}
	return "H501"
}

// oddValues maps 0-9 then A-Z to their value in odd positions.
var oddValues = [36]int{
	1, 0, 5, 7, 9, 13, 15, 17, 19, 21,
	1, 0, 5, 7, 9, 13, 15, 17, 19, 21, 2, 4, 18, 20, 11, 3, 6, 8, 12, 14, 16, 10, 22, 25, 24, 23,
}

func checkChar(code string) byte {
	sum := 0
	for i, r := range code {
		idx, even := charIndex(r)
		if i%2 == 0 {
			// 1-based odd position
			sum += oddValues[idx]
			continue
		}
		sum += even
	}
	return byte('A' + sum%26)
}

// charIndex returns the odd-table index and the even-position value of r.
func charIndex(r rune) (idx, even int) {
	if unicode.IsDigit(r) {
		return int(r - '0'), int(r - '0')
	}
	return 10 + int(r-'A'), int(r - 'A')
}

// italianVAT returns "IT" + 10 random digits + Luhn-style check digit.
func italianVAT() string {
	d := digits(10)
	sum := 0
	for i := 0; i < len(d); i++ {
		n := int(d[i] - '0')
		if i%2 == 1 {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
	}
	check := (10 - sum%10) % 10
	return fmt.Sprintf("IT%s%d", d, check)
}

// frenchVAT returns "FR" + 2-digit key + 9-digit SIREN.
func frenchVAT() string {
	siren := 100000000 + randIntn(900000000)
	key := (12 + 3*(siren%97)) % 97
	return fmt.Sprintf("FR%02d%d", key, siren)
}

func digits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + randIntn(10))
	}
	return string(b)
}
