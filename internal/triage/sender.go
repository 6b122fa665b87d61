package triage

import (
	"regexp"
	"strings"
)

// SenderInfo is the display name and address parsed out of a From header.
type SenderInfo struct {
	Name  string
	Email string
}

var fromHeaderRe = regexp.MustCompile(`^(.+?)\s*<(.+)>$`)

// ParseSender splits a raw From header value of the form
// `"Display Name" <address>` into its parts. Surrounding quotes are stripped
// from the display name. Input without angle brackets is treated as a bare
// address with an empty name.
func ParseSender(from string) SenderInfo {
	if m := fromHeaderRe.FindStringSubmatch(from); m != nil {
		name := strings.ReplaceAll(strings.TrimSpace(m[1]), `"`, "")
		return SenderInfo{
			Name:  name,
			Email: strings.TrimSpace(m[2]),
		}
	}
	return SenderInfo{Email: strings.TrimSpace(from)}
}
