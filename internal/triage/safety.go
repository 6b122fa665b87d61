package triage

import (
	"fmt"
	"regexp"
	"strings"
)

// Verdict is the safety gate's decision for one email. The two flags are
// always coupled: anything unsafe requires human confirmation, anything safe
// does not.
type Verdict struct {
	IsSafe               bool
	Reason               string
	RequiresConfirmation bool
}

// DomainRule pairs a sender-address pattern with a human-readable label used
// in the refusal reason.
type DomainRule struct {
	Pattern string
	Label   string
}

// RuleSet holds the ordered protected-domain and protected-keyword rules the
// safety gate evaluates. Rules are supplied as data so deployments can swap
// the lists without touching gate logic.
type RuleSet struct {
	domains  []compiledDomainRule
	keywords []string
}

type compiledDomainRule struct {
	re    *regexp.Regexp
	label string
}

// NewRuleSet compiles domain patterns and returns a gate over them. Pattern
// order is evaluation order.
func NewRuleSet(domains []DomainRule, keywords []string) (*RuleSet, error) {
	rs := &RuleSet{keywords: keywords}
	for _, d := range domains {
		re, err := regexp.Compile("(?i)" + d.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid domain pattern %q: %w", d.Pattern, err)
		}
		rs.domains = append(rs.domains, compiledDomainRule{re: re, label: d.Label})
	}
	return rs, nil
}

// Sender addresses that must never be auto-processed: banks, government,
// role addresses, health and medical senders.
var defaultDomainRules = []DomainRule{
	{Pattern: `noreply@.*bank.*`, Label: "bank"},
	{Pattern: `.*@.*gov`, Label: "government"},
	{Pattern: `security@.*`, Label: "security"},
	{Pattern: `billing@.*`, Label: "billing"},
	{Pattern: `legal@.*`, Label: "legal"},
	{Pattern: `payroll@.*`, Label: "payroll"},
	{Pattern: `hr@.*`, Label: "hr"},
	{Pattern: `.*@.*health.*`, Label: "health"},
	{Pattern: `.*@.*medical.*`, Label: "medical"},
}

var defaultProtectedKeywords = []string{
	"invoice", "receipt", "payment", "bill", "statement",
	"tax", "legal", "court", "urgent", "security alert",
	"password", "verification", "confirm", "activate",
}

// DefaultRuleSet returns the built-in protected-domain and keyword lists.
func DefaultRuleSet() *RuleSet {
	rs, err := NewRuleSet(defaultDomainRules, defaultProtectedKeywords)
	if err != nil {
		panic(err)
	}
	return rs
}

// Check decides whether an email may be auto-processed. The protected-domain
// check runs first against the From header and short-circuits; only when no
// domain matches are the keywords evaluated against the combined text. The
// gate is deliberately independent of the classifier: a promotional-looking
// email can still carry a bill.
func (rs *RuleSet) Check(subject, from, snippet string) Verdict {
	for _, d := range rs.domains {
		if d.re.MatchString(from) {
			return Verdict{
				IsSafe:               false,
				Reason:               fmt.Sprintf("protected %s sender - contains financial, legal, or security content", d.label),
				RequiresConfirmation: true,
			}
		}
	}

	text := strings.ToLower(subject + " " + from + " " + snippet)
	for _, kw := range rs.keywords {
		if strings.Contains(text, kw) {
			return Verdict{
				IsSafe:               false,
				Reason:               fmt.Sprintf("contains protected keyword: %s", kw),
				RequiresConfirmation: true,
			}
		}
	}

	return Verdict{IsSafe: true, RequiresConfirmation: false}
}

// protectedKeywordHit reports whether any protected keyword appears in the
// given lower-cased text. Shared with the priority assigner.
func (rs *RuleSet) protectedKeywordHit(text string) bool {
	for _, kw := range rs.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
