package triage_test

import (
	"strings"
	"testing"

	"mailsweep/internal/triage"
)

func TestRuleSetCheckProtectedDomains(t *testing.T) {
	rules := triage.DefaultRuleSet()

	tests := []struct {
		name string
		from string
	}{
		{name: "billing role address", from: "billing@company.example.com"},
		{name: "security role address", from: "security@service.example.com"},
		{name: "government domain", from: "notices@agency.example.gov"},
		{name: "bank noreply", from: "noreply@mybank.example.com"},
		{name: "health domain", from: "info@cityhealth.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := rules.Check("A subject", tt.from, "a snippet")
			if v.IsSafe {
				t.Fatalf("expected %q to be gated", tt.from)
			}
			if !v.RequiresConfirmation {
				t.Fatal("unsafe verdict must require confirmation")
			}
			if v.Reason == "" {
				t.Fatal("unsafe verdict must carry a reason")
			}
		})
	}
}

func TestRuleSetCheckProtectedKeywords(t *testing.T) {
	rules := triage.DefaultRuleSet()

	v := rules.Check("Your invoice #1234 is ready", "shop@store.example.com", "")
	if v.IsSafe {
		t.Fatal("invoice subject must be gated")
	}
	if !strings.Contains(v.Reason, "invoice") {
		t.Fatalf("reason should name the keyword, got %q", v.Reason)
	}
}

// Domain rules take precedence: when both a protected domain and a protected
// keyword match, only the domain reason is reported.
func TestRuleSetCheckDomainShortCircuits(t *testing.T) {
	rules := triage.DefaultRuleSet()

	v := rules.Check("Your invoice is ready", "billing@company.example.com", "")
	if v.IsSafe {
		t.Fatal("expected unsafe verdict")
	}
	if !strings.Contains(v.Reason, "billing") {
		t.Fatalf("expected domain reason to win, got %q", v.Reason)
	}
}

func TestRuleSetCheckSafe(t *testing.T) {
	rules := triage.DefaultRuleSet()

	v := rules.Check("50% off your next order!", "promo@shop.example.com", "big spring sale")
	if !v.IsSafe {
		t.Fatalf("expected safe verdict, got reason %q", v.Reason)
	}
	if v.RequiresConfirmation {
		t.Fatal("safe verdict must not require confirmation")
	}
	if v.Reason != "" {
		t.Fatalf("safe verdict should carry no reason, got %q", v.Reason)
	}
}

// The gate never produces unsafe-but-unconfirmed or safe-but-confirmation-
// required verdicts, whatever the input.
func TestVerdictCoupling(t *testing.T) {
	rules := triage.DefaultRuleSet()

	inputs := [][3]string{
		{"", "", ""},
		{"hello", "friend@mail.example.com", "see you"},
		{"Your invoice", "shop@store.example.com", ""},
		{"subject", "billing@company.example.com", "snippet"},
		{"password reset", "robot@service.example.com", "click to confirm"},
		{"50% off", "promo@shop.example.com", "sale"},
	}

	for _, in := range inputs {
		v := rules.Check(in[0], in[1], in[2])
		if v.RequiresConfirmation != !v.IsSafe {
			t.Fatalf("coupling violated for %v: %+v", in, v)
		}
	}
}

func TestNewRuleSetRejectsBadPattern(t *testing.T) {
	_, err := triage.NewRuleSet([]triage.DomainRule{{Pattern: "([", Label: "broken"}}, nil)
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestAssignPriority(t *testing.T) {
	rules := triage.DefaultRuleSet()

	tests := []struct {
		name     string
		subject  string
		from     string
		category triage.Category
		want     triage.Priority
	}{
		{
			name:     "protected keyword forces high",
			subject:  "Your payment is due",
			from:     "shop@store.example.com",
			category: triage.CategoryPromotional,
			want:     triage.PriorityHigh,
		},
		{
			name:     "promotional sale language is low",
			subject:  "Huge sale this weekend",
			from:     "promo@shop.example.com",
			category: triage.CategoryPromotional,
			want:     triage.PriorityLow,
		},
		{
			name:     "promotional without sale language is medium",
			subject:  "New arrivals",
			from:     "shop@store.example.com",
			category: triage.CategoryPromotional,
			want:     triage.PriorityMedium,
		},
		{
			name:     "other category is medium",
			subject:  "Lunch tomorrow?",
			from:     "friend@mail.example.com",
			category: triage.CategoryOther,
			want:     triage.PriorityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.AssignPriority(tt.subject, tt.from, tt.category)
			if got != tt.want {
				t.Fatalf("AssignPriority() = %q, want %q", got, tt.want)
			}
		})
	}
}
