package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"mailsweep/internal/mq"
	"mailsweep/internal/service"
	"mailsweep/internal/util"
)

const scanMaxRetries = 3

// ScanRequestedHandler consumes scan.requested events and runs the mailbox
// scan for the user.
type ScanRequestedHandler struct {
	sweep        *service.SweepService
	producer     *mq.Producer
	retryCounter *util.RetryCounter
	deduper      *util.Deduper
	logger       *zap.Logger
}

func NewScanRequestedHandler(
	sweep *service.SweepService,
	producer *mq.Producer,
	retryCounter *util.RetryCounter,
	deduper *util.Deduper,
	logger *zap.Logger,
) *ScanRequestedHandler {
	return &ScanRequestedHandler{
		sweep:        sweep,
		producer:     producer,
		retryCounter: retryCounter,
		deduper:      deduper,
		logger:       logger,
	}
}

func (h *ScanRequestedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	defer h.recoverPanic()

	var payload mq.ScanRequestedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Error("Invalid ScanRequestedPayload, sending to DLQ",
			zap.String("raw", string(raw)),
			zap.Error(err),
		)
		_ = h.producer.PublishToDLQ(mq.RoutingKeyScanRequested, raw, err.Error())
		return nil // ack：格式错误重试无意义
	}

	h.logger.Info("ScanRequestedHandler: received scan request",
		zap.Int("user_id", payload.UserID),
		zap.Int64("max_results", payload.MaxResults),
	)

	// Redis 去重（避免并发重复消费）
	dedupID := fmt.Sprintf("%d:%d", payload.UserID, payload.RequestedAt.Unix())
	if !h.deduper.AcquireOnce(ctx, "scan", dedupID) {
		h.logger.Info("Duplicated scan request, skip",
			zap.Int("user_id", payload.UserID),
		)
		return nil
	}

	retryKey := util.FormatRetryKey("scan", dedupID)
	retryCount, _ := h.retryCounter.IncrementAndGet(ctx, retryKey)

	count, err := h.sweep.ScanAndClassify(ctx, payload.UserID, payload.MaxResults)
	if err != nil {
		isRetryable, errType := util.IsRetryableError(err)
		h.logger.Warn("Scan failed",
			zap.Int("user_id", payload.UserID),
			zap.String("error_type", errType),
			zap.Bool("retryable", isRetryable),
			zap.Int64("retry", retryCount),
			zap.Error(err),
		)

		if !util.ShouldRetry(retryCount, scanMaxRetries, isRetryable) {
			_ = h.producer.PublishToDLQ(mq.RoutingKeyScanRequested, raw, err.Error())
			h.retryCounter.Reset(ctx, retryKey)
			return nil // ack：已进死信队列
		}
		return err // nack → 重试
	}

	h.retryCounter.Reset(ctx, retryKey)
	h.logger.Info("Scan processed successfully",
		zap.Int("user_id", payload.UserID),
		zap.Int("classified", count),
	)
	return nil
}

func (h *ScanRequestedHandler) recoverPanic() {
	if r := recover(); r != nil {
		h.logger.Error("panic recovered in handler", zap.Any("panic", r))
	}
}
