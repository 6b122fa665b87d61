package triage_test

import (
	"testing"

	gmail "google.golang.org/api/gmail/v1"

	"mailsweep/internal/triage"
)

func promoMessage(id, subject, from string) *gmail.Message {
	return &gmail.Message{
		Id:       id,
		ThreadId: "t-" + id,
		Snippet:  "snippet for " + subject,
		LabelIds: []string{"INBOX", "CATEGORY_PROMOTIONS"},
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmail.MessagePartHeader{
				header("Subject", subject),
				header("From", from),
				header("To", "me@mail.example.com"),
				header("Date", "Mon, 02 Jan 2006 15:04:05 -0700"),
			},
			Parts: []*gmail.MessagePart{
				{MimeType: "text/plain", Body: encodeBody("spring sale, no strings attached")},
				{MimeType: "text/html", Body: encodeBody(`<a href="https://shop.example.com/unsubscribe">opt out</a>`)},
			},
		},
	}
}

func TestClassifyMessagePromotional(t *testing.T) {
	engine := triage.NewEngine(nil, nil)

	email, err := engine.ClassifyMessage(promoMessage("m1", "50% off your next order!", "promo@shop.example.com"))
	if err != nil {
		t.Fatal(err)
	}

	if email.Category != triage.CategoryPromotional {
		t.Fatalf("Category = %q, want promotional", email.Category)
	}
	if !email.IsSafe {
		t.Fatalf("expected safe, got reason %q", email.SafetyReason)
	}
	if email.Priority != triage.PriorityLow {
		t.Fatalf("Priority = %q, want low", email.Priority)
	}
	if !email.IsDeletable {
		t.Fatal("expected deletable")
	}
	if email.SenderEmail != "promo@shop.example.com" {
		t.Fatalf("SenderEmail = %q", email.SenderEmail)
	}
	if len(email.UnsubscribeLinks) != 1 || email.UnsubscribeLinks[0] != "https://shop.example.com/unsubscribe" {
		t.Fatalf("UnsubscribeLinks = %v", email.UnsubscribeLinks)
	}
	if email.Date.IsZero() {
		t.Fatal("expected parsed date")
	}
}

func TestClassifyMessageProtectedBilling(t *testing.T) {
	engine := triage.NewEngine(nil, nil)

	email, err := engine.ClassifyMessage(promoMessage("m2", "Your invoice #1234 is ready", "billing@company.example.com"))
	if err != nil {
		t.Fatal(err)
	}

	if email.IsSafe {
		t.Fatal("billing sender must be gated")
	}
	if !email.RequiresConfirmation {
		t.Fatal("gated email must require confirmation")
	}
	if email.IsDeletable {
		t.Fatal("gated email must not be deletable")
	}
	if email.Priority != triage.PriorityHigh {
		t.Fatalf("Priority = %q, want high", email.Priority)
	}
}

// IsDeletable is derived from the verdict, never set independently.
func TestClassifyMessageDeletableInvariant(t *testing.T) {
	engine := triage.NewEngine(nil, nil)

	msgs := []*gmail.Message{
		promoMessage("m1", "50% off your next order!", "promo@shop.example.com"),
		promoMessage("m2", "Your invoice #1234 is ready", "billing@company.example.com"),
		promoMessage("m3", "Weekly digest", "newsletter@news.example.com"),
	}
	for _, msg := range msgs {
		email, err := engine.ClassifyMessage(msg)
		if err != nil {
			t.Fatal(err)
		}
		want := email.IsSafe && !email.RequiresConfirmation
		if email.IsDeletable != want {
			t.Fatalf("IsDeletable = %v, want %v for %q", email.IsDeletable, want, email.Subject)
		}
	}
}

func TestClassifyMessageNewsletterHeader(t *testing.T) {
	engine := triage.NewEngine(nil, nil)

	msg := promoMessage("m1", "Quarterly report", "team@corp.example.com")
	msg.Payload.Headers = append(msg.Payload.Headers,
		header("List-Unsubscribe", "<https://list.example.com/u/9>"))

	email, err := engine.ClassifyMessage(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !email.IsNewsletter {
		t.Fatal("List-Unsubscribe header alone should mark a newsletter")
	}
	if len(email.UnsubscribeLinks) == 0 || email.UnsubscribeLinks[0] != "https://list.example.com/u/9" {
		t.Fatalf("header link should be first candidate, got %v", email.UnsubscribeLinks)
	}
}

func TestClassifyMessageNoPayload(t *testing.T) {
	engine := triage.NewEngine(nil, nil)

	if _, err := engine.ClassifyMessage(nil); err == nil {
		t.Fatal("expected error for nil message")
	}
	if _, err := engine.ClassifyMessage(&gmail.Message{Id: "m9"}); err == nil {
		t.Fatal("expected error for message without payload")
	}
}

func TestClassifyBatchDedup(t *testing.T) {
	engine := triage.NewEngine(nil, nil)

	// Two distinct provider messages with identical sender+subject collapse
	// to one record; the first encountered wins.
	msgs := []*gmail.Message{
		promoMessage("m1", "50% off your next order!", "promo@shop.example.com"),
		promoMessage("m2", "50% off your next order!", "promo@shop.example.com"),
		promoMessage("m3", "Something else", "promo@shop.example.com"),
	}

	got := engine.ClassifyBatch(msgs)
	if len(got) != 2 {
		t.Fatalf("expected 2 records after dedup, got %d", len(got))
	}
	if got[0].MessageID != "m1" {
		t.Fatalf("first-seen record should win, got %q", got[0].MessageID)
	}
}

func TestClassifyBatchSkipsMalformed(t *testing.T) {
	engine := triage.NewEngine(nil, nil)

	msgs := []*gmail.Message{
		promoMessage("m1", "Subject A", "a@mail.example.com"),
		{Id: "broken"}, // no payload
		nil,
		promoMessage("m2", "Subject B", "b@mail.example.com"),
	}

	got := engine.ClassifyBatch(msgs)
	if len(got) != 2 {
		t.Fatalf("malformed messages must be skipped, got %d records", len(got))
	}
	if got[0].MessageID != "m1" || got[1].MessageID != "m2" {
		t.Fatalf("unexpected records: %q, %q", got[0].MessageID, got[1].MessageID)
	}
}
