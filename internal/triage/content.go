package triage

import (
	"encoding/base64"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// ParsedContent holds the concatenated plain-text and HTML bodies of a
// message. Either field may be empty.
type ParsedContent struct {
	Text string
	HTML string
}

// ExtractContent walks a message payload tree and collects every text/plain
// leaf into Text and every text/html leaf into HTML, in tree order. A part
// with a malformed or absent payload contributes nothing; extraction never
// fails on structurally odd input.
func ExtractContent(payload *gmail.MessagePart) ParsedContent {
	var text, html strings.Builder
	extractPart(payload, &text, &html)
	return ParsedContent{Text: text.String(), HTML: html.String()}
}

func extractPart(part *gmail.MessagePart, text, html *strings.Builder) {
	if part == nil {
		return
	}

	switch part.MimeType {
	case "text/plain":
		if data := decodeBody(part); data != "" {
			text.WriteString(data)
		}
	case "text/html":
		if data := decodeBody(part); data != "" {
			html.WriteString(data)
		}
	}

	for _, child := range part.Parts {
		extractPart(child, text, html)
	}
}

// decodeBody decodes the base64url payload of a part. Gmail omits padding,
// but some providers include it, so both variants are accepted.
func decodeBody(part *gmail.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}
	data, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		data, err = base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
	}
	return string(data)
}
