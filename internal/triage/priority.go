package triage

import "strings"

// Priority is the display priority of a classified email.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// AssignPriority derives a display priority from the subject, sender and
// category. The keyword list is the same one the safety gate uses: anything
// touching money, legal matters or account security is high priority no
// matter how it was categorized. Promotional mail with obvious sale language
// is low; everything else is medium.
func (rs *RuleSet) AssignPriority(subject, from string, category Category) Priority {
	text := strings.ToLower(subject + " " + from)

	if rs.protectedKeywordHit(text) {
		return PriorityHigh
	}

	if category == CategoryPromotional && hasSaleLanguage(text) {
		return PriorityLow
	}

	return PriorityMedium
}

func hasSaleLanguage(text string) bool {
	for _, kw := range []string{"sale", "offer", "deal", "% off"} {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
