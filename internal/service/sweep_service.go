package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mailsweep/config"
	"mailsweep/internal/gmailclient"
	"mailsweep/internal/mq"
	"mailsweep/internal/repository"
	"mailsweep/internal/triage"
	"mailsweep/pkg/metrics"
)

// SweepService drives mailbox scans: fetch candidate mail, run it through
// the triage engine, persist results and publish events.
type SweepService struct {
	emailRepo *repository.EmailRepository
	userRepo  *repository.UserRepository
	usageRepo *repository.UsageRepository
	producer  *mq.Producer
	engine    *triage.Engine
	googleCfg config.GoogleConfig
	scanCfg   config.ScanConfig
	logger    *zap.Logger
}

func NewSweepService(
	emailRepo *repository.EmailRepository,
	userRepo *repository.UserRepository,
	usageRepo *repository.UsageRepository,
	producer *mq.Producer,
	engine *triage.Engine,
	googleCfg config.GoogleConfig,
	scanCfg config.ScanConfig,
	logger *zap.Logger,
) *SweepService {
	return &SweepService{
		emailRepo: emailRepo,
		userRepo:  userRepo,
		usageRepo: usageRepo,
		producer:  producer,
		engine:    engine,
		googleCfg: googleCfg,
		scanCfg:   scanCfg,
		logger:    logger,
	}
}

// RequestScan publishes a scan.requested event. The actual scan runs in the
// worker so the API returns immediately.
func (s *SweepService) RequestScan(ctx context.Context, userID int, maxResults int64) error {
	if maxResults <= 0 || maxResults > s.scanCfg.MaxResults {
		maxResults = s.scanCfg.MaxResults
	}

	// 确认用户已绑定邮箱，否则扫描注定失败
	if _, err := s.userRepo.FindGmailTokens(ctx, userID); err != nil {
		return err
	}

	return s.producer.Publish(mq.RoutingKeyScanRequested, mq.ScanRequestedPayload{
		UserID:      userID,
		MaxResults:  maxResults,
		RequestedAt: time.Now(),
	})
}

// ScanAndClassify performs a full scan for one user: fetch, triage, store,
// publish. Returns the number of emails classified.
func (s *SweepService) ScanAndClassify(ctx context.Context, userID int, maxResults int64) (int, error) {
	tokens, err := s.userRepo.FindGmailTokens(ctx, userID)
	if err != nil {
		metrics.IncrementScan("failed")
		return 0, err
	}

	client, err := gmailclient.NewClient(ctx, s.googleCfg, s.scanCfg, tokens, s.logger)
	if err != nil {
		metrics.IncrementScan("failed")
		return 0, err
	}

	messages, err := client.ScanPromotionalEmails(ctx, maxResults)
	if err != nil {
		metrics.IncrementScan("failed")
		return 0, err
	}

	classifyStart := time.Now()
	classified := s.engine.ClassifyBatch(messages)
	if len(classified) > 0 {
		// 平均单条分诊耗时
		metrics.RecordTriageLatency(time.Since(classifyStart) / time.Duration(len(classified)))
	}

	stored := 0
	for _, e := range classified {
		if err := s.emailRepo.UpsertClassified(ctx, userID, e); err != nil {
			s.logger.Error("failed to store classified email",
				zap.Int("user_id", userID),
				zap.String("message_id", e.MessageID),
				zap.Error(err))
			continue
		}
		metrics.IncrementEmailClassified(string(e.Category))
		if e.RequiresConfirmation {
			metrics.SafetyGateBlockCount.Inc()
		}
		stored++

		if err := s.producer.Publish(mq.RoutingKeyEmailClassified, mq.EmailClassifiedPayload{
			UserID:       userID,
			MessageID:    e.MessageID,
			Category:     string(e.Category),
			Priority:     string(e.Priority),
			IsDeletable:  e.IsDeletable,
			ClassifiedAt: time.Now(),
		}); err != nil {
			s.logger.Error("failed to publish email.classified",
				zap.String("message_id", e.MessageID),
				zap.Error(err))
		}
	}

	if err := s.usageRepo.Record(ctx, userID, "scan", stored); err != nil {
		s.logger.Warn("failed to record scan usage",
			zap.Int("user_id", userID),
			zap.Error(err))
	}

	metrics.IncrementScan("success")
	s.logger.Info("scan complete",
		zap.Int("user_id", userID),
		zap.Int("fetched", len(messages)),
		zap.Int("classified", stored))
	return stored, nil
}

// BulkDelete trashes deletable emails both in Gmail and in storage. Emails
// gated by the safety check are refused rather than silently skipped so the
// caller learns which IDs did not qualify.
func (s *SweepService) BulkDelete(ctx context.Context, userID int, messageIDs []string) (int, []string, error) {
	tokens, err := s.userRepo.FindGmailTokens(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	client, err := gmailclient.NewClient(ctx, s.googleCfg, s.scanCfg, tokens, s.logger)
	if err != nil {
		return 0, nil, err
	}

	deleted := 0
	var refused []string
	for _, id := range messageIDs {
		email, err := s.emailRepo.FindByMessageID(ctx, userID, id)
		if err != nil {
			refused = append(refused, id)
			continue
		}
		if !email.IsDeletable || email.RequiresConfirmation {
			refused = append(refused, id)
			continue
		}
		if err := client.TrashMessage(ctx, id); err != nil {
			s.logger.Error("failed to trash message",
				zap.String("message_id", id),
				zap.Error(err))
			refused = append(refused, id)
			continue
		}
		if _, err := s.emailRepo.MarkDeleted(ctx, userID, []string{id}); err != nil {
			s.logger.Error("failed to mark message deleted",
				zap.String("message_id", id),
				zap.Error(err))
		}
		deleted++
	}

	if deleted > 0 {
		if err := s.usageRepo.Record(ctx, userID, "delete", deleted); err != nil {
			s.logger.Warn("failed to record delete usage",
				zap.Int("user_id", userID),
				zap.Error(err))
		}
	}

	return deleted, refused, nil
}
