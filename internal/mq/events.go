package mq

import "time"

// Routing keys carried on the events exchange.
const (
	RoutingKeyScanRequested        = "scan.requested"
	RoutingKeyEmailClassified      = "email.classified"
	RoutingKeyUnsubscribeRequested = "unsubscribe.requested"
)

// 请求扫描邮箱事件的 payload
type ScanRequestedPayload struct {
	UserID      int       `json:"user_id"`
	MaxResults  int64     `json:"max_results"`
	RequestedAt time.Time `json:"requested_at"`
}

// 邮件完成分诊事件的 payload
type EmailClassifiedPayload struct {
	UserID       int       `json:"user_id"`
	MessageID    string    `json:"message_id"`
	Category     string    `json:"category"`
	Priority     string    `json:"priority"`
	IsDeletable  bool      `json:"is_deletable"`
	ClassifiedAt time.Time `json:"classified_at"`
}

// 请求退订事件的 payload
type UnsubscribeRequestedPayload struct {
	UserID      int       `json:"user_id"`
	MessageID   string    `json:"message_id"`
	Links       []string  `json:"links"`
	RequestedAt time.Time `json:"requested_at"`
}
