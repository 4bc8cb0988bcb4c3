package mailbox

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// NoSubject replaces empty subjects in summaries and messages.
const NoSubject = "(no subject)"

// Subject returns s trimmed, or NoSubject when empty.
func Subject(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoSubject
	}
	return s
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

// ParseDate tries the timestamp layouts used by the supported providers.
// Unparseable input yields the zero time.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// WrapPlain escapes plain text and wraps it in <pre> for HTML display.
func WrapPlain(text string) string {
	return "<pre>" + html.EscapeString(text) + "</pre>"
}

// SplitAddress splits local@domain.
func SplitAddress(addr string) (login, domain string, err error) {
	login, domain, ok := strings.Cut(strings.TrimSpace(addr), "@")
	if !ok || login == "" || domain == "" || strings.Contains(domain, "@") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return login, domain, nil
}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	breakRe  = regexp.MustCompile(`(?i)<(br|/p|/div|/tr|/li|/h[1-6])[^>]*>`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	spaceRe  = regexp.MustCompile(`[ \t]+`)
	blankRe  = regexp.MustCompile(`\n{3,}`)
)

// PlainText converts an HTML body into readable text.
func PlainText(body string) string {
	s := scriptRe.ReplaceAllString(body, "")
	s = breakRe.ReplaceAllString(s, "\n")
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = spaceRe.ReplaceAllString(s, " ")
	s = blankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Preview collapses whitespace and truncates text to n runes.
func Preview(text string, n int) string {
	s := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
