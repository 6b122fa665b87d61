package triage

import (
	"regexp"
	"strings"
)

var (
	freeDollarRe = regexp.MustCompile(`free\s*\$`)
	manyDigitsRe = regexp.MustCompile(`\d{5,}`)
)

// SpamScore computes a suspicion score in [0,100] from independent additive
// heuristics over subject, sender and body text. Each signal contributes a
// fixed weight; the sum is capped at 100.
func SpamScore(subject, senderEmail, content string) int {
	score := 0

	subjectLower := strings.ToLower(subject)
	senderLower := strings.ToLower(senderEmail)
	contentLower := strings.ToLower(content)

	// Subject signals
	if strings.Contains(subjectLower, "urgent") {
		score += 20
	}
	if strings.Contains(subjectLower, "act now") {
		score += 20
	}
	if strings.Contains(subjectLower, "limited time") {
		score += 10
	}
	if freeDollarRe.MatchString(subjectLower) {
		score += 15
	}
	if strings.Contains(subjectLower, "congratulations") {
		score += 25
	}

	// Sender signals
	if !strings.Contains(senderLower, ".") {
		// 地址里没有域名点号，非常可疑
		score += 30
	}
	if manyDigitsRe.MatchString(senderLower) {
		score += 15
	}
	if strings.Contains(senderLower, "noreply") && strings.Contains(contentLower, "click here") {
		score += 10
	}

	// Content signals
	if strings.Contains(contentLower, "click here") {
		score += 10
	}
	if dollarAmountRe.MatchString(contentLower) {
		score += 5
	}
	if strings.Contains(contentLower, "winner") {
		score += 15
	}

	if score > 100 {
		score = 100
	}
	return score
}
