package repository

import (
	"context"
	"mailsweep/internal/model"
	"mailsweep/internal/triage"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EmailRepository struct {
	db *pgxpool.Pool
}

func NewEmailRepository(db *pgxpool.Pool) *EmailRepository {
	return &EmailRepository{db: db}
}

// UpsertClassified stores a triage result keyed by (user_id, message_id).
// A rescan overwrites the classification but keeps cleanup state
// (is_unsubscribed, is_deleted) intact.
func (r *EmailRepository) UpsertClassified(ctx context.Context, userID int, e *triage.ClassifiedEmail) error {
	query := `
        INSERT INTO emails (
            user_id, message_id, thread_id, subject, sender_name, sender_email,
            recipient_email, date, snippet, labels, category, spam_score,
            priority, unsubscribe_links, is_newsletter, is_safe, safety_reason,
            requires_confirmation, is_deletable, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())
        ON CONFLICT (user_id, message_id) DO UPDATE SET
            thread_id = EXCLUDED.thread_id,
            subject = EXCLUDED.subject,
            sender_name = EXCLUDED.sender_name,
            sender_email = EXCLUDED.sender_email,
            recipient_email = EXCLUDED.recipient_email,
            date = EXCLUDED.date,
            snippet = EXCLUDED.snippet,
            labels = EXCLUDED.labels,
            category = EXCLUDED.category,
            spam_score = EXCLUDED.spam_score,
            priority = EXCLUDED.priority,
            unsubscribe_links = EXCLUDED.unsubscribe_links,
            is_newsletter = EXCLUDED.is_newsletter,
            is_safe = EXCLUDED.is_safe,
            safety_reason = EXCLUDED.safety_reason,
            requires_confirmation = EXCLUDED.requires_confirmation,
            is_deletable = EXCLUDED.is_deletable,
            updated_at = NOW()
    `
	_, err := r.db.Exec(ctx, query,
		userID, e.MessageID, e.ThreadID, e.Subject, e.SenderName, e.SenderEmail,
		e.RecipientEmail, e.Date, e.Snippet, e.Labels, string(e.Category), e.SpamScore,
		string(e.Priority), e.UnsubscribeLinks, e.IsNewsletter, e.IsSafe, e.SafetyReason,
		e.RequiresConfirmation, e.IsDeletable,
	)
	return err
}

// FindByMessageID returns a stored email for a user, or pgx.ErrNoRows.
func (r *EmailRepository) FindByMessageID(ctx context.Context, userID int, messageID string) (*model.StoredEmail, error) {
	query := `
        SELECT id, user_id, message_id, thread_id, subject, sender_name, sender_email,
               recipient_email, date, snippet, labels, category, spam_score,
               priority, unsubscribe_links, is_newsletter, is_safe, safety_reason,
               requires_confirmation, is_deletable, is_unsubscribed, is_deleted,
               created_at, updated_at
        FROM emails
        WHERE user_id = $1 AND message_id = $2
    `
	var e model.StoredEmail
	err := r.db.QueryRow(ctx, query, userID, messageID).Scan(
		&e.ID, &e.UserID, &e.MessageID, &e.ThreadID, &e.Subject, &e.SenderName, &e.SenderEmail,
		&e.RecipientEmail, &e.Date, &e.Snippet, &e.Labels, &e.Category, &e.SpamScore,
		&e.Priority, &e.UnsubscribeLinks, &e.IsNewsletter, &e.IsSafe, &e.SafetyReason,
		&e.RequiresConfirmation, &e.IsDeletable, &e.IsUnsubscribed, &e.IsDeleted,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByUser returns stored emails for a user, optionally filtered by category.
func (r *EmailRepository) ListByUser(ctx context.Context, userID int, category string, limit int) ([]model.StoredEmail, error) {
	query := `
        SELECT id, user_id, message_id, thread_id, subject, sender_name, sender_email,
               recipient_email, date, snippet, labels, category, spam_score,
               priority, unsubscribe_links, is_newsletter, is_safe, safety_reason,
               requires_confirmation, is_deletable, is_unsubscribed, is_deleted,
               created_at, updated_at
        FROM emails
        WHERE user_id = $1
          AND is_deleted = FALSE
          AND ($2 = '' OR category = $2)
        ORDER BY date DESC
        LIMIT $3
    `
	rows, err := r.db.Query(ctx, query, userID, category, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := []model.StoredEmail{}

	for rows.Next() {
		var e model.StoredEmail
		err := rows.Scan(
			&e.ID, &e.UserID, &e.MessageID, &e.ThreadID, &e.Subject, &e.SenderName, &e.SenderEmail,
			&e.RecipientEmail, &e.Date, &e.Snippet, &e.Labels, &e.Category, &e.SpamScore,
			&e.Priority, &e.UnsubscribeLinks, &e.IsNewsletter, &e.IsSafe, &e.SafetyReason,
			&e.RequiresConfirmation, &e.IsDeletable, &e.IsUnsubscribed, &e.IsDeleted,
			&e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}

	return emails, rows.Err()
}

// MarkUnsubscribed flags an email as successfully unsubscribed.
func (r *EmailRepository) MarkUnsubscribed(ctx context.Context, userID int, messageID string) error {
	query := `
        UPDATE emails
        SET is_unsubscribed = TRUE, updated_at = NOW()
        WHERE user_id = $1 AND message_id = $2
    `
	_, err := r.db.Exec(ctx, query, userID, messageID)
	return err
}

// MarkDeleted flags emails as cleaned up. Only deletable, ungated rows are
// touched; the returned count tells the caller how many actually qualified.
func (r *EmailRepository) MarkDeleted(ctx context.Context, userID int, messageIDs []string) (int64, error) {
	query := `
        UPDATE emails
        SET is_deleted = TRUE, updated_at = NOW()
        WHERE user_id = $1
          AND message_id = ANY($2)
          AND is_deletable = TRUE
          AND requires_confirmation = FALSE
    `
	tag, err := r.db.Exec(ctx, query, userID, messageIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Stats aggregates cleanup progress for a user's mailbox.
func (r *EmailRepository) Stats(ctx context.Context, userID int) (*model.EmailStats, error) {
	query := `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE category = 'subscription'),
            COUNT(*) FILTER (WHERE category = 'promotional'),
            COUNT(*) FILTER (WHERE array_length(unsubscribe_links, 1) > 0),
            COUNT(*) FILTER (WHERE is_deleted OR is_unsubscribed),
            MAX(updated_at)
        FROM emails
        WHERE user_id = $1
    `
	var s model.EmailStats
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.TotalEmails,
		&s.SubscriptionEmails,
		&s.PromotionalEmails,
		&s.UnsubscribableEmails,
		&s.CleanedUp,
		&s.LastSync,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
