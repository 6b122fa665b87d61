package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"mailsweep/internal/mq"
	"mailsweep/internal/service"
	"mailsweep/internal/util"
	"mailsweep/pkg/metrics"
)

const unsubscribeMaxRetries = 3

// UnsubscribeRequestedHandler consumes unsubscribe.requested events and runs
// the bounded unsubscribe flow for one message.
type UnsubscribeRequestedHandler struct {
	unsub        *service.UnsubscribeService
	producer     *mq.Producer
	retryCounter *util.RetryCounter
	deduper      *util.Deduper
	logger       *zap.Logger
}

func NewUnsubscribeRequestedHandler(
	unsub *service.UnsubscribeService,
	producer *mq.Producer,
	retryCounter *util.RetryCounter,
	deduper *util.Deduper,
	logger *zap.Logger,
) *UnsubscribeRequestedHandler {
	return &UnsubscribeRequestedHandler{
		unsub:        unsub,
		producer:     producer,
		retryCounter: retryCounter,
		deduper:      deduper,
		logger:       logger,
	}
}

func (h *UnsubscribeRequestedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	defer h.recoverPanic()

	var payload mq.UnsubscribeRequestedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Error("Invalid UnsubscribeRequestedPayload, sending to DLQ",
			zap.String("raw", string(raw)),
			zap.Error(err),
		)
		_ = h.producer.PublishToDLQ(mq.RoutingKeyUnsubscribeRequested, raw, err.Error())
		return nil
	}

	h.logger.Info("UnsubscribeRequestedHandler: received request",
		zap.Int("user_id", payload.UserID),
		zap.String("message_id", payload.MessageID),
		zap.Int("links", len(payload.Links)),
	)

	// Redis 去重（同一封邮件只退订一次）
	if !h.deduper.AcquireOnce(ctx, "unsubscribe", payload.MessageID) {
		h.logger.Info("Duplicated unsubscribe request, skip",
			zap.String("message_id", payload.MessageID),
		)
		return nil
	}

	retryKey := util.FormatRetryKey("unsubscribe", payload.MessageID)
	retryCount, _ := h.retryCounter.IncrementAndGet(ctx, retryKey)

	err := h.unsub.ProcessUnsubscribe(ctx, payload.UserID, payload.MessageID, payload.Links)
	if err != nil {
		isRetryable, errType := util.IsRetryableError(err)
		h.logger.Warn("Unsubscribe failed",
			zap.String("message_id", payload.MessageID),
			zap.String("error_type", errType),
			zap.Bool("retryable", isRetryable),
			zap.Int64("retry", retryCount),
			zap.Error(err),
		)

		if !util.ShouldRetry(retryCount, unsubscribeMaxRetries, isRetryable) {
			metrics.IncrementUnsubscribeAttempt("failed")
			_ = h.producer.PublishToDLQ(mq.RoutingKeyUnsubscribeRequested, raw, err.Error())
			h.retryCounter.Reset(ctx, retryKey)
			return nil
		}
		return err // nack → 重试
	}

	h.retryCounter.Reset(ctx, retryKey)
	h.logger.Info("Unsubscribe processed successfully",
		zap.String("message_id", payload.MessageID),
	)
	return nil
}

func (h *UnsubscribeRequestedHandler) recoverPanic() {
	if r := recover(); r != nil {
		h.logger.Error("panic recovered in handler", zap.Any("panic", r))
	}
}
