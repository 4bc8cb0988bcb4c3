// Package codes finds verification codes in received mail.
package codes

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/zarlcorp/zprofile/internal/mailbox"
)

// Kind classifies a candidate code.
type Kind string

const (
	Numeric      Kind = "numeric"
	Alphanumeric Kind = "alphanumeric"
)

// Code is a candidate verification code.
type Code struct {
	Value string
	Kind  Kind
	Score int
}

// keywords that mark a nearby token as a code, in the languages of the
// supported countries
var keywords = []string{
	"verification", "verify", "code", "otp", "one-time", "confirm", "pin", "2fa",
	"codice", "verifica", "conferma",
	"vérification", "confirmation", "valider",
	"bestätigung", "bestätigen", "sicherheitscode",
}

// words that mark a nearby 4-digit number as a year
var yearWords = []string{"copyright", "©", "(c)", "year", "since", "founded", "anno", "année", "jahr"}

var (
	numericRe = regexp.MustCompile(`\b(\d{4}|\d{6}|\d{8})\b`)
	mixedRe   = regexp.MustCompile(`\b([A-Za-z0-9]{6,8})\b`)
	yearRe    = regexp.MustCompile(`^(19|20)\d{2}$`)
	urlRe     = regexp.MustCompile(`https?://\S+`)
	emailRe   = regexp.MustCompile(`\S+@\S+\.\S+`)
)

const radius = 60

// FromMessage extracts candidates from a message, reading the subject first
// and stripping HTML from the body.
func FromMessage(msg mailbox.Message) []Code {
	return Extract(msg.Subject + "\n" + mailbox.PlainText(msg.Body))
}

// Best returns the highest ranked candidate in msg.
func Best(msg mailbox.Message) (Code, bool) {
	found := FromMessage(msg)
	if len(found) == 0 {
		return Code{}, false
	}
	return found[0], true
}

// Extract returns candidate codes in text, most likely first.
func Extract(text string) []Code {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	s := scanner{text: urlRe.ReplaceAllString(text, " ")}
	s.text = emailRe.ReplaceAllString(s.text, " ")
	s.lower = strings.ToLower(s.text)
	s.seen = make(map[string]bool)

	for _, m := range numericRe.FindAllStringIndex(s.text, -1) {
		if s.rejectNumber(m[0], m[1]) {
			continue
		}
		s.add(m[0], m[1], Numeric)
	}

	for _, m := range mixedRe.FindAllStringIndex(s.text, -1) {
		if !mixed(s.text[m[0]:m[1]]) {
			continue
		}
		s.add(m[0], m[1], Alphanumeric)
	}

	slices.SortStableFunc(s.found, func(a, b Code) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return s.found
}

type scanner struct {
	text  string
	lower string
	seen  map[string]bool
	found []Code
}

func (s *scanner) add(start, end int, kind Kind) {
	v := s.text[start:end]
	if s.seen[v] {
		return
	}
	s.seen[v] = true
	s.found = append(s.found, Code{Value: v, Kind: kind, Score: s.score(start, end, kind)})
}

// rejectNumber filters years, prices, times and fragments of longer numbers.
func (s *scanner) rejectNumber(start, end int) bool {
	v := s.text[start:end]
	before := byteAt(s.text, start-1)
	after := byteAt(s.text, end)

	switch {
	case strings.ContainsAny(s.text[max(0, start-2):start], "$£") || strings.HasSuffix(s.text[:start], "€"):
		return true
	case strings.HasPrefix(s.text[end:], "€") || strings.HasPrefix(s.text[end:], " €"):
		return true
	case len(v) == 4 && (before == ':' || after == ':'):
		return true
	case isDigit(before) || isDigit(after):
		return true
	case (after == '.' || after == ',') && isDigit(byteAt(s.text, end+1)):
		return true
	case (before == '.' || before == ',') && isDigit(byteAt(s.text, start-2)):
		return true
	}

	if len(v) == 4 && yearRe.MatchString(v) {
		near := s.window(start, end, 30)
		for _, w := range yearWords {
			if strings.Contains(near, w) {
				return true
			}
		}
		if !s.keywordNear(start, end) {
			return true
		}
	}
	return false
}

func (s *scanner) score(start, end int, kind Kind) int {
	n := 0
	switch l := end - start; {
	case kind == Numeric && l == 6:
		n += 30
	case kind == Numeric && l == 8:
		n += 20
	case kind == Numeric && l == 4:
		n += 15
	default:
		n += 10
	}

	if s.keywordNear(start, end) {
		n += 50
	}

	lead := strings.TrimRight(s.lowerSlice(start-10, start), " ")
	if strings.HasSuffix(lead, ":") || strings.HasSuffix(lead, "-") ||
		strings.HasSuffix(lead, " is") || strings.HasSuffix(lead, " è") || strings.HasSuffix(lead, " est") || strings.HasSuffix(lead, " lautet") {
		n += 20
	}

	if isSpace(byteAt(s.text, start-1)) && isSpace(byteAt(s.text, end)) {
		n += 10
	}
	return n
}

func (s *scanner) keywordNear(start, end int) bool {
	near := s.window(start, end, radius)
	for _, kw := range keywords {
		if strings.Contains(near, kw) {
			return true
		}
	}
	return false
}

func (s *scanner) window(start, end, r int) string {
	return s.lowerSlice(start-r, end+r)
}

// lowerSlice clamps to the lowered text, which can be shorter than the
// original for some scripts.
func (s *scanner) lowerSlice(lo, hi int) string {
	hi = min(hi, len(s.lower))
	lo = min(max(0, lo), hi)
	return s.lower[lo:hi]
}

// byteAt returns text[i], or 0 outside the string.
func byteAt(text string, i int) byte {
	if i < 0 || i >= len(text) {
		return 0
	}
	return text[i]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// isSpace treats string boundaries as whitespace.
func isSpace(b byte) bool { return b == 0 || b == ' ' || b == '\n' || b == '\t' || b == '\r' }

// mixed reports whether v has both letters and digits.
func mixed(v string) bool {
	return strings.ContainsFunc(v, unicode.IsLetter) && strings.ContainsFunc(v, unicode.IsDigit)
}
