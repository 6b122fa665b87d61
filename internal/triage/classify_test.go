package triage_test

import (
	"testing"

	"mailsweep/internal/triage"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		sender  string
		content string
		want    triage.Category
	}{
		{
			name:    "newsletter subject",
			subject: "Your weekly digest is here",
			sender:  "news@site.example.com",
			want:    triage.CategorySubscription,
		},
		{
			name:    "unsubscribe in content",
			subject: "Hello",
			sender:  "someone@site.example.com",
			content: "Click here to unsubscribe from future emails",
			want:    triage.CategorySubscription,
		},
		{
			name:    "newsletter sender",
			subject: "March issue",
			sender:  "newsletter@site.example.com",
			want:    triage.CategorySubscription,
		},
		{
			name:    "sale subject",
			subject: "50% off your next order!",
			sender:  "promo@shop.example.com",
			want:    triage.CategoryPromotional,
		},
		{
			name:    "percent off pattern in content",
			subject: "Hello",
			sender:  "shop@store.example.com",
			content: "get 30% discount today",
			want:    triage.CategoryPromotional,
		},
		{
			name:    "social mention",
			subject: "Alice mentioned you in a comment",
			sender:  "no-reply@site.example.com",
			want:    triage.CategorySocial,
		},
		{
			name:    "social platform sender",
			subject: "New activity",
			sender:  "alerts@facebook.example.com",
			want:    triage.CategorySocial,
		},
		{
			name:    "urgent spam subject",
			subject: "URGENT: claim your prize",
			sender:  "x@y.example.com",
			want:    triage.CategorySpam,
		},
		{
			name:    "dollar amount in subject",
			subject: "You won $500",
			sender:  "x@y.example.com",
			want:    triage.CategorySpam,
		},
		{
			name:    "plain mail",
			subject: "Lunch tomorrow?",
			sender:  "friend@mail.example.com",
			content: "See you at noon",
			want:    triage.CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := triage.Categorize(tt.subject, tt.sender, tt.content)
			if got != tt.want {
				t.Fatalf("Categorize() = %q, want %q", got, tt.want)
			}
		})
	}
}

// An email matching both subscription and promotional keywords must land in
// subscription: rule order is the tie-break.
func TestCategorizePrecedence(t *testing.T) {
	got := triage.Categorize(
		"Weekly newsletter: exclusive sale inside",
		"promo@shop.example.com",
		"huge discount, unsubscribe below",
	)
	if got != triage.CategorySubscription {
		t.Fatalf("expected subscription to win precedence, got %q", got)
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	first := triage.Categorize("50% off everything", "promo@shop.example.com", "sale ends soon")
	for i := 0; i < 50; i++ {
		if got := triage.Categorize("50% off everything", "promo@shop.example.com", "sale ends soon"); got != first {
			t.Fatalf("call %d returned %q, first call returned %q", i, got, first)
		}
	}
}

func TestSpamScore(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		sender  string
		content string
		want    int
	}{
		{
			name:   "clean email",
			sender: "friend@mail.example.com",
			want:   0,
		},
		{
			name:    "urgent subject",
			subject: "urgent matter",
			sender:  "a@b.example.com",
			want:    20,
		},
		{
			name:    "congratulations winner",
			subject: "Congratulations!",
			sender:  "a@b.example.com",
			content: "you are a winner",
			want:    40,
		},
		{
			name:   "sender without domain dot",
			sender: "bob@localhost",
			want:   30,
		},
		{
			name:   "sender with long digit run",
			sender: "user1234567@mail.example.com",
			want:   15,
		},
		{
			name:    "noreply with click here",
			sender:  "noreply@mail.example.com",
			content: "click here now",
			want:    20, // noreply+click-here combo plus the content signal
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := triage.SpamScore(tt.subject, tt.sender, tt.content)
			if got != tt.want {
				t.Fatalf("SpamScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSpamScoreBounded(t *testing.T) {
	// Every signal at once has to clamp at 100.
	got := triage.SpamScore(
		"urgent act now limited time free $ congratulations",
		"noreply12345@spam",
		"click here winner $1000",
	)
	if got != 100 {
		t.Fatalf("expected score capped at 100, got %d", got)
	}

	inputs := [][3]string{
		{"", "", ""},
		{"urgent", "x@y.example.com", ""},
		{"hello", "friend@mail.example.com", "see you"},
	}
	for _, in := range inputs {
		got := triage.SpamScore(in[0], in[1], in[2])
		if got < 0 || got > 100 {
			t.Fatalf("SpamScore(%q, %q, %q) = %d out of [0,100]", in[0], in[1], in[2], got)
		}
	}
}
