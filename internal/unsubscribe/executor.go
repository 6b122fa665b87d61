// Package unsubscribe owns the one network-facing step of the cleanup flow:
// validating a candidate opt-out URL and issuing the actual request. Link
// validation is synchronous and never touches the network; execution is
// bounded by a timeout, a fixed attempt ceiling and a circuit breaker.
package unsubscribe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"mailsweep/pkg/circuitbreaker"
	"mailsweep/pkg/metrics"
)

const userAgent = "mailsweep-unsubscribe/1.0"

// Hosts we refuse to follow: URL shorteners hide the real destination, which
// defeats link validation entirely.
var denylistedHosts = []string{
	"bit.ly", "tinyurl.com", "t.co", "goo.gl", "ow.ly",
}

// ValidateLink reports whether an opt-out URL is safe to fetch: it must
// parse, use https, and not point at a denylisted host. Refusal is a plain
// boolean; a bad link is an expected input, not an error.
func ValidateLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	for _, bad := range denylistedHosts {
		if strings.Contains(host, bad) {
			return false
		}
	}
	return true
}

// LabelModifier relabels a message after a successful opt-out. Implemented by
// the Gmail provider client.
type LabelModifier interface {
	ModifyLabels(ctx context.Context, messageID string, addLabels, removeLabels []string) error
}

// Executor performs the unsubscribe request for one message. A failed
// execution is a per-item outcome; callers record it and move on.
type Executor struct {
	client      *http.Client
	labels      LabelModifier
	breaker     *circuitbreaker.CircuitBreaker
	maxAttempts int
	logger      *zap.Logger
}

func NewExecutor(labels LabelModifier, timeout time.Duration, maxAttempts int, logger *zap.Logger) *Executor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Executor{
		client:      &http.Client{Timeout: timeout},
		labels:      labels,
		breaker:     circuitbreaker.New(circuitbreaker.DefaultConfig()),
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Execute validates the link, fetches it with at most maxAttempts tries, and
// on success moves the message out of the inbox. The boolean reports whether
// the opt-out went through; the error is diagnostic only and never fatal to
// a batch.
func (ex *Executor) Execute(ctx context.Context, messageID, rawURL string) (bool, error) {
	if !ValidateLink(rawURL) {
		metrics.IncrementUnsubscribeAttempt("rejected")
		ex.logger.Warn("rejected unsafe unsubscribe link",
			zap.String("message_id", messageID),
			zap.String("url", rawURL),
		)
		return false, nil
	}

	var lastErr error
	for attempt := 1; attempt <= ex.maxAttempts; attempt++ {
		err := ex.breaker.Execute(func() error {
			return ex.fetch(ctx, rawURL)
		})
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
		ex.logger.Warn("unsubscribe request failed",
			zap.String("message_id", messageID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if err == circuitbreaker.ErrOpen || ctx.Err() != nil {
			break
		}
	}
	if lastErr != nil {
		metrics.IncrementUnsubscribeAttempt("failed")
		return false, lastErr
	}

	// 成功退订后把邮件移出收件箱
	if err := ex.labels.ModifyLabels(ctx, messageID,
		[]string{"CATEGORY_PROMOTIONS"}, []string{"INBOX"}); err != nil {
		ex.logger.Warn("unsubscribed but failed to relabel message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}

	metrics.IncrementUnsubscribeAttempt("success")
	return true, nil
}

func (ex *Executor) fetch(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := ex.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unsubscribe endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
