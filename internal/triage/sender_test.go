package triage_test

import (
	"testing"

	"mailsweep/internal/triage"
)

func TestParseSender(t *testing.T) {
	tests := []struct {
		name      string
		from      string
		wantName  string
		wantEmail string
	}{
		{
			name:      "quoted display name",
			from:      `"Tech Digest" <digest@news.example.com>`,
			wantName:  "Tech Digest",
			wantEmail: "digest@news.example.com",
		},
		{
			name:      "unquoted display name",
			from:      "Alice Smith <alice@mail.example.com>",
			wantName:  "Alice Smith",
			wantEmail: "alice@mail.example.com",
		},
		{
			name:      "bare address",
			from:      "bob@mail.example.com",
			wantName:  "",
			wantEmail: "bob@mail.example.com",
		},
		{
			name:      "bare address with whitespace",
			from:      "  bob@mail.example.com  ",
			wantName:  "",
			wantEmail: "bob@mail.example.com",
		},
		{
			name:      "empty input",
			from:      "",
			wantName:  "",
			wantEmail: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := triage.ParseSender(tt.from)
			if got.Name != tt.wantName || got.Email != tt.wantEmail {
				t.Fatalf("ParseSender(%q) = %+v, want name=%q email=%q",
					tt.from, got, tt.wantName, tt.wantEmail)
			}
		})
	}
}

// A non-empty header always yields a non-empty address, even when the angle
// bracket pattern does not match.
func TestParseSenderEmailNeverEmpty(t *testing.T) {
	inputs := []string{"plain-string", "a@b", "Weird Header Value"}
	for _, in := range inputs {
		if got := triage.ParseSender(in); got.Email == "" {
			t.Fatalf("ParseSender(%q) returned empty email", in)
		}
	}
}
