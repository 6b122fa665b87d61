package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantRetryable bool
		wantType      string
	}{
		{"nil", nil, false, ""},
		{"json syntax", &json.SyntaxError{}, false, "json_decode_error"},
		{"no rows", pgx.ErrNoRows, false, "email_not_found"},
		{"duplicate key", errors.New(`duplicate key value violates unique constraint "emails_pkey"`), false, "duplicate_key"},
		{"db connection", errors.New("failed to connect to database: connection refused"), true, "db_connection_error"},
		{"gmail rate limit", errors.New("googleapi: Error 429: rateLimitExceeded"), true, "gmail_rate_limited"},
		{"gmail auth expired", errors.New(`oauth2: "invalid_grant" token expired`), false, "gmail_auth_expired"},
		{"gmail server error", errors.New("googleapi: Error 503: backend error"), true, "gmail_server_error"},
		{"url error", &url.Error{Op: "Get", URL: "https://example.com", Err: errors.New("dial tcp: refused")}, true, "network_error"},
		{"context deadline", context.DeadlineExceeded, true, "timeout"},
		{"wrapped context deadline", fmt.Errorf("fetch unsubscribe link: %w", context.DeadlineExceeded), true, "timeout"},
		{"context canceled", context.Canceled, false, "context_canceled"},
		{"unknown", errors.New("something odd"), false, "unknown_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotRetryable, gotType := IsRetryableError(tt.err)
			if gotRetryable != tt.wantRetryable || gotType != tt.wantType {
				t.Errorf("IsRetryableError(%v) = (%v, %q), want (%v, %q)",
					tt.err, gotRetryable, gotType, tt.wantRetryable, tt.wantType)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	if ShouldRetry(1, 3, false) {
		t.Error("non-retryable error should never retry")
	}
	if !ShouldRetry(3, 3, true) {
		t.Error("retry count at ceiling should still retry")
	}
	if ShouldRetry(4, 3, true) {
		t.Error("retry count past ceiling should not retry")
	}
}
