package codes

import (
	"testing"

	"github.com/zarlcorp/zprofile/internal/mailbox"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		kind  Kind
	}{
		{"code after text", "Your verification code is 123456", "123456", Numeric},
		{"code before text", "123456 is your code", "123456", Numeric},
		{"code after colon", "Code: 482913", "482913", Numeric},
		{"four digit pin", "Your PIN: 4821", "4821", Numeric},
		{"eight digits", "Use 12345678 to verify your account", "12345678", Numeric},
		{"alphanumeric", "Enter A1B2C3 to confirm", "A1B2C3", Alphanumeric},
		{"after dash", "Security code - 567890", "567890", Numeric},
		{"italian", "Il tuo codice di verifica è 731904", "731904", Numeric},
		{"french", "Votre code de vérification est 650213", "650213", Numeric},
		{"german", "Ihr Bestätigungscode lautet 998877", "998877", Numeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.input)
			if len(got) == 0 {
				t.Fatal("expected at least one code")
			}
			if got[0].Value != tt.want {
				t.Errorf("top code: got %q, want %q (all: %v)", got[0].Value, tt.want, got)
			}
			if got[0].Kind != tt.kind {
				t.Errorf("kind: got %q, want %q", got[0].Kind, tt.kind)
			}
		})
	}
}

func TestExtractRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \n "},
		{"copyright year", "Copyright 2024 Example Inc."},
		{"bare year", "We were founded in 1999 and grew fast"},
		{"price dollars", "Total: $1234"},
		{"price euro", "Totale 1234 € IVA inclusa"},
		{"time", "Meeting at 10:30 tomorrow, room 12:45"},
		{"long number", "Call 0612345678901 for help"},
		{"decimal", "The rate is 1234.56 today"},
		{"url", "Visit https://example.com/confirm/123456 now"},
		{"words only", "Please review the attached report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.input); len(got) != 0 {
				t.Errorf("expected no codes, got %v", got)
			}
		})
	}
}

func TestExtractRanking(t *testing.T) {
	text := "Order 4455 shipped.\n\nYour verification code is 902731.\nRef A7B8C9"
	got := Extract(text)
	if len(got) < 2 {
		t.Fatalf("expected several candidates, got %v", got)
	}
	if got[0].Value != "902731" {
		t.Errorf("top: got %q", got[0].Value)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("candidates not sorted by score: %v", got)
		}
	}
}

func TestExtractDeduplicates(t *testing.T) {
	got := Extract("Code: 123456. Again, your code is 123456")
	if len(got) != 1 {
		t.Errorf("expected one candidate, got %v", got)
	}
}

func TestFromMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  mailbox.Message
		want string
	}{
		{
			name: "html body",
			msg: mailbox.Message{
				Summary: mailbox.Summary{Subject: "Welcome"},
				Body:    `<div style="font-size:14px">Your code is <b>318204</b></div>`,
				HTML:    true,
			},
			want: "318204",
		},
		{
			name: "wrapped plain body",
			msg: mailbox.Message{
				Summary: mailbox.Summary{Subject: "Hi"},
				Body:    mailbox.WrapPlain("Codice: 774411"),
			},
			want: "774411",
		},
		{
			name: "code in subject",
			msg: mailbox.Message{
				Summary: mailbox.Summary{Subject: "605118 is your verification code"},
				Body:    "<p>Thanks for signing up</p>",
				HTML:    true,
			},
			want: "605118",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Best(tt.msg)
			if !ok {
				t.Fatal("expected a code")
			}
			if c.Value != tt.want {
				t.Errorf("got %q, want %q", c.Value, tt.want)
			}
		})
	}
}

func TestBestNone(t *testing.T) {
	if _, ok := Best(mailbox.Message{Body: "<p>nothing here</p>", HTML: true}); ok {
		t.Error("expected no code")
	}
}
