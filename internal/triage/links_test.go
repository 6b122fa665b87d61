package triage_test

import (
	"reflect"
	"testing"

	gmail "google.golang.org/api/gmail/v1"

	"mailsweep/internal/triage"
)

func header(name, value string) *gmail.MessagePartHeader {
	return &gmail.MessagePartHeader{Name: name, Value: value}
}

func TestExtractUnsubscribeLinks(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		headers []*gmail.MessagePartHeader
		want    []string
	}{
		{
			name: "header only",
			headers: []*gmail.MessagePartHeader{
				header("List-Unsubscribe", "<https://list.example.com/u/123>"),
			},
			html: "<p>no anchors here</p>",
			want: []string{"https://list.example.com/u/123"},
		},
		{
			name: "header with multiple urls",
			headers: []*gmail.MessagePartHeader{
				header("List-Unsubscribe", "<https://a.example.com/u>, <https://b.example.com/u>"),
			},
			want: []string{"https://a.example.com/u", "https://b.example.com/u"},
		},
		{
			name: "mailto in header ignored",
			headers: []*gmail.MessagePartHeader{
				header("List-Unsubscribe", "<mailto:leave@list.example.com>"),
			},
			want: []string{},
		},
		{
			name: "html anchor",
			html: `<a href="https://shop.example.com/unsubscribe?id=7">opt out</a>`,
			want: []string{"https://shop.example.com/unsubscribe?id=7"},
		},
		{
			name: "opt-out and remove anchors",
			html: `<a href="https://x.example.com/opt-out">a</a><a href='https://x.example.com/remove-me'>b</a>`,
			want: []string{"https://x.example.com/opt-out", "https://x.example.com/remove-me"},
		},
		{
			name: "relative href rejected",
			html: `<a href="/unsubscribe">opt out</a>`,
			want: []string{},
		},
		{
			name: "case-insensitive keyword match",
			html: `<a HREF="https://x.example.com/UNSUBSCRIBE">opt out</a>`,
			want: []string{"https://x.example.com/UNSUBSCRIBE"},
		},
		{
			name: "header and body deduplicated",
			headers: []*gmail.MessagePartHeader{
				header("List-Unsubscribe", "<https://x.example.com/unsubscribe>"),
			},
			html: `<a href="https://x.example.com/unsubscribe">opt out</a>`,
			want: []string{"https://x.example.com/unsubscribe"},
		},
		{
			name: "no sources",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := triage.ExtractUnsubscribeLinks(tt.html, tt.headers)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExtractUnsubscribeLinks() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Header URLs come before body URLs and order within each source is
// discovery order.
func TestExtractUnsubscribeLinksOrder(t *testing.T) {
	headers := []*gmail.MessagePartHeader{
		header("List-Unsubscribe", "<https://first.example.com/u>"),
	}
	html := `<a href="https://second.example.com/unsubscribe">a</a>` +
		`<a href="https://third.example.com/opt-out">b</a>`

	got := triage.ExtractUnsubscribeLinks(html, headers)
	want := []string{
		"https://first.example.com/u",
		"https://second.example.com/unsubscribe",
		"https://third.example.com/opt-out",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order mismatch: got %v, want %v", got, want)
	}
}
