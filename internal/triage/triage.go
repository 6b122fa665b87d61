// Package triage turns raw Gmail messages into decision-ready records: a
// category, a spam score, a safety verdict, a display priority and the
// message's unsubscribe mechanisms. Every function in the package is pure and
// safe for concurrent callers; failures degrade to empty values instead of
// errors, so a structurally odd message never takes down a batch.
package triage

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	gmail "google.golang.org/api/gmail/v1"
)

// ClassifiedEmail is the per-message output of the orchestrator. It is
// constructed once and immutable afterwards; unsubscribe/delete state is
// owned by the storage layer.
type ClassifiedEmail struct {
	MessageID      string
	ThreadID       string
	Subject        string
	SenderName     string
	SenderEmail    string
	RecipientEmail string
	Date           time.Time
	Snippet        string
	BodyText       string
	BodyHTML       string
	Labels         []string

	Category         Category
	SpamScore        int
	UnsubscribeLinks []string
	Priority         Priority
	IsNewsletter     bool

	IsSafe               bool
	SafetyReason         string
	RequiresConfirmation bool
	// IsDeletable is derived: safe and not requiring confirmation.
	IsDeletable bool
}

// ErrNoPayload is returned for a message the provider handed over without a
// body structure; such messages are skipped in batch mode.
var ErrNoPayload = errors.New("message has no payload")

// Engine composes the extraction, classification and gating steps. It holds
// only immutable rule data, so one engine can serve all goroutines.
type Engine struct {
	rules  *RuleSet
	logger *zap.Logger
}

func NewEngine(rules *RuleSet, logger *zap.Logger) *Engine {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{rules: rules, logger: logger}
}

// ClassifyMessage builds a ClassifiedEmail from one raw Gmail message:
// sender → content → unsubscribe links → category → score/safety → priority.
func (e *Engine) ClassifyMessage(msg *gmail.Message) (*ClassifiedEmail, error) {
	if msg == nil || msg.Payload == nil {
		return nil, ErrNoPayload
	}

	headers := msg.Payload.Headers
	subject := headerValue(headers, "Subject")
	from := headerValue(headers, "From")
	to := headerValue(headers, "To")
	rawDate := headerValue(headers, "Date")
	listUnsubscribe := headerValue(headers, "List-Unsubscribe")

	sender := ParseSender(from)
	content := ExtractContent(msg.Payload)
	links := ExtractUnsubscribeLinks(content.HTML, headers)

	category := Categorize(subject, sender.Email, content.Text)
	score := SpamScore(subject, sender.Email, content.Text)
	verdict := e.rules.Check(subject, from, msg.Snippet)
	priority := e.rules.AssignPriority(subject, from, category)

	return &ClassifiedEmail{
		MessageID:      msg.Id,
		ThreadID:       msg.ThreadId,
		Subject:        subject,
		SenderName:     sender.Name,
		SenderEmail:    sender.Email,
		RecipientEmail: to,
		Date:           parseDate(rawDate, msg.InternalDate),
		Snippet:        msg.Snippet,
		BodyText:       content.Text,
		BodyHTML:       content.HTML,
		Labels:         msg.LabelIds,

		Category:         category,
		SpamScore:        score,
		UnsubscribeLinks: links,
		Priority:         priority,
		IsNewsletter:     isNewsletter(subject, from, listUnsubscribe),

		IsSafe:               verdict.IsSafe,
		SafetyReason:         verdict.Reason,
		RequiresConfirmation: verdict.RequiresConfirmation,
		IsDeletable:          verdict.IsSafe && !verdict.RequiresConfirmation,
	}, nil
}

// ClassifyBatch classifies a batch and de-duplicates by sender address plus
// subject, keeping the first occurrence. Repeated sends of the same
// newsletter issue collapse to one record even though their message IDs
// differ. A message that cannot be parsed is logged and skipped; it never
// aborts the batch.
func (e *Engine) ClassifyBatch(msgs []*gmail.Message) []*ClassifiedEmail {
	out := []*ClassifiedEmail{}
	seen := map[string]bool{}

	for _, msg := range msgs {
		email, err := e.ClassifyMessage(msg)
		if err != nil {
			id := ""
			if msg != nil {
				id = msg.Id
			}
			e.logger.Warn("skipping unparseable message",
				zap.String("message_id", id),
				zap.Error(err),
			)
			continue
		}

		key := strings.ToLower(email.SenderEmail) + "\x00" + strings.ToLower(email.Subject)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, email)
	}

	return out
}

// isNewsletter reports whether a message looks like recurring list mail. A
// List-Unsubscribe header alone is sufficient.
func isNewsletter(subject, from, listUnsubscribe string) bool {
	if listUnsubscribe != "" {
		return true
	}
	text := strings.ToLower(subject + " " + from)
	return strings.Contains(text, "newsletter") ||
		strings.Contains(text, "digest") ||
		strings.Contains(text, "weekly") ||
		strings.Contains(text, "monthly") ||
		strings.Contains(strings.ToLower(from), "noreply")
}

// parseDate parses an RFC 5322 Date header, falling back to the provider's
// internal timestamp (milliseconds) when the header is missing or malformed.
func parseDate(raw string, internalDate int64) time.Time {
	if raw != "" {
		if t, err := mail.ParseDate(raw); err == nil {
			return t
		}
	}
	if internalDate > 0 {
		return time.UnixMilli(internalDate)
	}
	return time.Time{}
}
