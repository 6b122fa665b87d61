package triage

import (
	"regexp"
	"strings"
)

// Category is the closed set of buckets an email can land in.
type Category string

const (
	CategorySubscription Category = "subscription"
	CategoryPromotional  Category = "promotional"
	CategorySocial       Category = "social"
	CategorySpam         Category = "spam"
	CategoryImportant    Category = "important"
	CategoryOther        Category = "other"
)

var subscriptionKeywords = []string{
	"newsletter", "digest", "weekly", "monthly", "subscription",
	"update", "bulletin", "roundup", "briefing",
}

var promotionalKeywords = []string{
	"sale", "discount", "offer", "deal", "promotion", "coupon",
	"save", "% off", "limited time", "exclusive", "special",
}

var socialKeywords = []string{
	"notification", "mentioned you", "tagged you", "commented",
	"liked your", "shared your", "friend request",
}

var socialPlatforms = []string{
	"facebook", "twitter", "instagram", "linkedin", "youtube",
}

var (
	percentOffRe   = regexp.MustCompile(`\d+%\s*(off|discount)`)
	dollarAmountRe = regexp.MustCompile(`\$\d+`)
)

// Categorize assigns exactly one category to an email. Matching is
// case-insensitive substring/regex over subject, sender address and body text.
// Rule order is fixed: subscription wins over promotional, promotional over
// social, social over spam. An email matching nothing is "other".
//
// Pure function: same inputs always produce the same category.
func Categorize(subject, senderEmail, content string) Category {
	subjectLower := strings.ToLower(subject)
	senderLower := strings.ToLower(senderEmail)
	contentLower := strings.ToLower(content)

	if containsAny(subjectLower, contentLower, subscriptionKeywords) ||
		strings.Contains(senderLower, "newsletter") ||
		strings.Contains(senderLower, "digest") ||
		strings.Contains(contentLower, "unsubscribe") {
		return CategorySubscription
	}

	if containsAny(subjectLower, contentLower, promotionalKeywords) ||
		percentOffRe.MatchString(contentLower) ||
		strings.Contains(senderLower, "promo") ||
		strings.Contains(senderLower, "offer") {
		return CategoryPromotional
	}

	if containsAny(subjectLower, contentLower, socialKeywords) ||
		containsPlatform(senderLower) {
		return CategorySocial
	}

	if strings.Contains(subjectLower, "urgent") ||
		strings.Contains(subjectLower, "act now") ||
		strings.Contains(subjectLower, "congratulations") ||
		dollarAmountRe.MatchString(subjectLower) {
		return CategorySpam
	}

	return CategoryOther
}

func containsAny(subject, content string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(subject, kw) || strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

func containsPlatform(sender string) bool {
	for _, p := range socialPlatforms {
		if strings.Contains(sender, p) {
			return true
		}
	}
	return false
}
