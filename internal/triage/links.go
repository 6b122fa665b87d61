package triage

import (
	"regexp"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

var (
	// RFC 2369 angle-bracket syntax: <url1>, <url2>
	listUnsubscribeRe = regexp.MustCompile(`<(https?://[^>]+)>`)
	unsubscribeHrefRe = regexp.MustCompile(`(?i)href=["']([^"']*(?:unsubscribe|opt-out|remove)[^"']*)["']`)
)

// ExtractUnsubscribeLinks returns every candidate opt-out URL found in the
// List-Unsubscribe header and in HTML anchors, in discovery order with exact
// duplicates removed. Header URLs come first since they are the most
// trustworthy source. An empty result is valid: not every message advertises
// an opt-out mechanism.
func ExtractUnsubscribeLinks(htmlContent string, headers []*gmail.MessagePartHeader) []string {
	links := []string{}
	seen := map[string]bool{}

	add := func(url string) {
		if !seen[url] {
			seen[url] = true
			links = append(links, url)
		}
	}

	if lu := headerValue(headers, "List-Unsubscribe"); lu != "" {
		for _, m := range listUnsubscribeRe.FindAllStringSubmatch(lu, -1) {
			add(m[1])
		}
	}

	if htmlContent != "" {
		for _, m := range unsubscribeHrefRe.FindAllStringSubmatch(htmlContent, -1) {
			if strings.HasPrefix(m[1], "http") {
				add(m[1])
			}
		}
	}

	return links
}

// headerValue returns the first header with the given name, matched
// case-insensitively. Gmail preserves the original casing from the wire.
func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
