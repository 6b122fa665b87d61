// Package gmailclient wraps the Gmail API for mailbox scanning and cleanup.
package gmailclient

import (
	"context"
	"fmt"
	"time"

	"mailsweep/config"
	"mailsweep/internal/model"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	user          = "me"
	maxRetryCount = 3
	retrySleep    = 1 * time.Second
)

// scanQueries cover the mail that is worth triaging: the promotions and
// updates tabs plus the usual bulk-sender address patterns.
var scanQueries = []string{
	"category:promotions",
	"category:updates",
	"from:noreply OR from:newsletter OR from:marketing",
}

type Client struct {
	srv       *gmail.Service
	throttler *rate.Limiter
	logger    *zap.Logger
}

// OAuthConfig builds the oauth2 config used for the consent flow and for
// refreshing stored tokens.
func OAuthConfig(cfg config.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailModifyScope},
	}
}

// NewClient builds a Gmail client for one user's mailbox. The oauth2
// transport refreshes the access token from the stored refresh token as
// needed.
func NewClient(ctx context.Context, cfg config.GoogleConfig, scan config.ScanConfig, tokens *model.GmailTokens, logger *zap.Logger) (*Client, error) {
	oauthCfg := OAuthConfig(cfg)
	tok := &oauth2.Token{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Expiry:       tokens.Expiry,
	}
	srv, err := gmail.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Client{
		srv:       srv,
		throttler: rate.NewLimiter(rate.Limit(scan.RatePerSecond), scan.RateBurst),
		logger:    logger,
	}, nil
}

// Profile returns the mailbox address, used to verify the connection.
func (c *Client) Profile(ctx context.Context) (string, error) {
	profile, err := c.srv.Users.GetProfile(user).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get gmail profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// ScanPromotionalEmails lists candidate messages across the scan queries and
// fetches each in full format. Duplicate IDs across queries are fetched once.
// A message that cannot be fetched is logged and skipped.
func (c *Client) ScanPromotionalEmails(ctx context.Context, maxResults int64) ([]*gmail.Message, error) {
	seen := make(map[string]struct{})
	var messages []*gmail.Message

	for _, query := range scanQueries {
		ids, err := c.listWithRetry(ctx, query, maxResults)
		if err != nil {
			return nil, fmt.Errorf("failed to list messages for query %q: %w", query, err)
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			if err := c.throttler.Wait(ctx); err != nil {
				return nil, err
			}
			msg, err := c.srv.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
			if err != nil {
				// 单条消息失败不影响整批扫描
				c.logger.Warn("failed to fetch message, skipping",
					zap.String("message_id", id),
					zap.Error(err))
				continue
			}
			messages = append(messages, msg)
		}
	}

	return messages, nil
}

func (c *Client) listWithRetry(ctx context.Context, query string, maxResults int64) ([]string, error) {
	var lastErr error
	for i := 0; i < maxRetryCount; i++ {
		if err := c.throttler.Wait(ctx); err != nil {
			return nil, err
		}
		list, err := c.srv.Users.Messages.List(user).Q(query).MaxResults(maxResults).Context(ctx).Do()
		if err == nil {
			ids := make([]string, 0, len(list.Messages))
			for _, m := range list.Messages {
				ids = append(ids, m.Id)
			}
			return ids, nil
		}
		lastErr = err
		c.logger.Warn("gmail list failed, retrying",
			zap.String("query", query),
			zap.Int("attempt", i+1),
			zap.Error(err))
		time.Sleep(retrySleep)
	}
	return nil, lastErr
}

// ModifyLabels adds and removes labels on a message.
func (c *Client) ModifyLabels(ctx context.Context, messageID string, addLabels, removeLabels []string) error {
	req := &gmail.ModifyMessageRequest{
		AddLabelIds:    addLabels,
		RemoveLabelIds: removeLabels,
	}
	_, err := c.srv.Users.Messages.Modify(user, messageID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to modify labels on message %s: %w", messageID, err)
	}
	return nil
}

// TrashMessage moves a message to the trash. Trash is recoverable for 30
// days, which is why cleanup never uses permanent delete.
func (c *Client) TrashMessage(ctx context.Context, messageID string) error {
	if err := c.throttler.Wait(ctx); err != nil {
		return err
	}
	_, err := c.srv.Users.Messages.Trash(user, messageID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to trash message %s: %w", messageID, err)
	}
	return nil
}

// CreateLabel creates a user label if it does not already exist and returns
// its ID.
func (c *Client) CreateLabel(ctx context.Context, name string) (string, error) {
	labels, err := c.srv.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to list labels: %w", err)
	}
	for _, l := range labels.Labels {
		if l.Name == name {
			return l.Id, nil
		}
	}

	created, err := c.srv.Users.Labels.Create(user, &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create label %s: %w", name, err)
	}
	return created.Id, nil
}
