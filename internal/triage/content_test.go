package triage_test

import (
	"encoding/base64"
	"testing"

	gmail "google.golang.org/api/gmail/v1"

	"mailsweep/internal/triage"
)

func encodeBody(s string) *gmail.MessagePartBody {
	return &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte(s))}
}

func TestExtractContentNestedMultipart(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/plain", Body: encodeBody("hello ")},
					{MimeType: "text/html", Body: encodeBody("<p>hello</p>")},
				},
			},
			{MimeType: "text/plain", Body: encodeBody("world")},
			{MimeType: "application/pdf", Body: encodeBody("%PDF-")},
		},
	}

	got := triage.ExtractContent(payload)
	if got.Text != "hello world" {
		t.Fatalf("Text = %q, want %q", got.Text, "hello world")
	}
	if got.HTML != "<p>hello</p>" {
		t.Fatalf("HTML = %q, want %q", got.HTML, "<p>hello</p>")
	}
}

func TestExtractContentIdempotent(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: encodeBody("plain body")},
			{MimeType: "text/html", Body: encodeBody("<b>html body</b>")},
		},
	}

	first := triage.ExtractContent(payload)
	second := triage.ExtractContent(payload)
	if first.Text != second.Text || first.HTML != second.HTML {
		t.Fatalf("extraction not idempotent: %+v vs %+v", first, second)
	}
}

func TestExtractContentDegradesOnBadInput(t *testing.T) {
	tests := []struct {
		name    string
		payload *gmail.MessagePart
	}{
		{name: "nil payload", payload: nil},
		{name: "no body no parts", payload: &gmail.MessagePart{MimeType: "text/plain"}},
		{
			name: "malformed base64",
			payload: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: "%%%not-base64%%%"},
			},
		},
		{
			name: "nil child among parts",
			payload: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts:    []*gmail.MessagePart{nil, {MimeType: "text/plain"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := triage.ExtractContent(tt.payload)
			if got.Text != "" || got.HTML != "" {
				t.Fatalf("expected empty content, got %+v", got)
			}
		})
	}
}

func TestExtractContentPaddedBase64(t *testing.T) {
	// Some providers pad their base64url payloads; both forms must decode.
	payload := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("padded!"))},
	}
	got := triage.ExtractContent(payload)
	if got.Text != "padded!" {
		t.Fatalf("Text = %q, want %q", got.Text, "padded!")
	}
}
