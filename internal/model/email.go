package model

import "time"

// StoredEmail 表示 emails 表的完整结构（分诊结果 + 处理状态）
type StoredEmail struct {
	ID                   int       `json:"id"`
	UserID               int       `json:"user_id"`
	MessageID            string    `json:"message_id"`
	ThreadID             string    `json:"thread_id"`
	Subject              string    `json:"subject"`
	SenderName           string    `json:"sender_name"`
	SenderEmail          string    `json:"sender_email"`
	RecipientEmail       string    `json:"recipient_email"`
	Date                 time.Time `json:"date"`
	Snippet              string    `json:"snippet"`
	Labels               []string  `json:"labels"`
	Category             string    `json:"category"`
	SpamScore            int       `json:"spam_score"`
	Priority             string    `json:"priority"`
	UnsubscribeLinks     []string  `json:"unsubscribe_links"`
	IsNewsletter         bool      `json:"is_newsletter"`
	IsSafe               bool      `json:"is_safe"`
	SafetyReason         string    `json:"safety_reason,omitempty"`
	RequiresConfirmation bool      `json:"requires_confirmation"`
	IsDeletable          bool      `json:"is_deletable"`
	IsUnsubscribed       bool      `json:"is_unsubscribed"`
	IsDeleted            bool      `json:"is_deleted"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// EmailStats 汇总一个用户邮箱的清理情况
type EmailStats struct {
	TotalEmails          int        `json:"total_emails"`
	SubscriptionEmails   int        `json:"subscription_emails"`
	PromotionalEmails    int        `json:"promotional_emails"`
	UnsubscribableEmails int        `json:"unsubscribable_emails"`
	CleanedUp            int        `json:"cleaned_up"`
	LastSync             *time.Time `json:"last_sync,omitempty"`
}

// CleanupRule is a user-defined filter mapped to actions, optionally on a
// recurring schedule. The triage engine does not execute rules; they are
// configuration consumed by future cleanup automation.
type CleanupRule struct {
	ID         int               `json:"id"`
	UserID     int               `json:"user_id"`
	Name       string            `json:"name"`
	Conditions CleanupConditions `json:"conditions"`
	Actions    CleanupActions    `json:"actions"`
	IsActive   bool              `json:"is_active"`
	Schedule   *CleanupSchedule  `json:"schedule,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

type CleanupConditions struct {
	SenderDomains []string `json:"sender_domains,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	OlderThanDays int      `json:"older_than_days,omitempty"`
}

type CleanupActions struct {
	Delete      bool     `json:"delete,omitempty"`
	Archive     bool     `json:"archive,omitempty"`
	AddLabels   []string `json:"add_labels,omitempty"`
	Unsubscribe bool     `json:"unsubscribe,omitempty"`
}

type CleanupSchedule struct {
	Frequency  string `json:"frequency"` // daily, weekly, monthly
	DayOfWeek  int    `json:"day_of_week,omitempty"`
	DayOfMonth int    `json:"day_of_month,omitempty"`
}

// UsageLog 记录计费用的操作量
type UsageLog struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Action    string    `json:"action"` // scan, delete, unsubscribe
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}
