package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"mailsweep/config"
	"mailsweep/internal/gmailclient"
	"mailsweep/internal/mq"
	"mailsweep/internal/repository"
	"mailsweep/internal/unsubscribe"
)

var ErrNoUnsubscribeLinks = errors.New("email has no unsubscribe links")

// unsubscribedLabelName is applied in the user's mailbox after a successful
// opt-out so the result is visible outside of this service.
const unsubscribedLabelName = "MailSweep/Unsubscribed"

// UnsubscribeService executes unsubscribe requests against stored emails.
type UnsubscribeService struct {
	emailRepo *repository.EmailRepository
	userRepo  *repository.UserRepository
	usageRepo *repository.UsageRepository
	producer  *mq.Producer
	googleCfg config.GoogleConfig
	scanCfg   config.ScanConfig
	unsubCfg  config.UnsubscribeConfig
	logger    *zap.Logger
}

func NewUnsubscribeService(
	emailRepo *repository.EmailRepository,
	userRepo *repository.UserRepository,
	usageRepo *repository.UsageRepository,
	producer *mq.Producer,
	googleCfg config.GoogleConfig,
	scanCfg config.ScanConfig,
	unsubCfg config.UnsubscribeConfig,
	logger *zap.Logger,
) *UnsubscribeService {
	return &UnsubscribeService{
		emailRepo: emailRepo,
		userRepo:  userRepo,
		usageRepo: usageRepo,
		producer:  producer,
		googleCfg: googleCfg,
		scanCfg:   scanCfg,
		unsubCfg:  unsubCfg,
		logger:    logger,
	}
}

// RequestUnsubscribe publishes an unsubscribe.requested event for the worker.
func (s *UnsubscribeService) RequestUnsubscribe(ctx context.Context, userID int, messageID string) error {
	email, err := s.emailRepo.FindByMessageID(ctx, userID, messageID)
	if err != nil {
		return err
	}
	if len(email.UnsubscribeLinks) == 0 {
		return ErrNoUnsubscribeLinks
	}

	return s.producer.Publish(mq.RoutingKeyUnsubscribeRequested, mq.UnsubscribeRequestedPayload{
		UserID:      userID,
		MessageID:   messageID,
		Links:       email.UnsubscribeLinks,
		RequestedAt: time.Now(),
	})
}

// ProcessUnsubscribe attempts each candidate link in order until one
// succeeds. On success the email is marked unsubscribed.
func (s *UnsubscribeService) ProcessUnsubscribe(ctx context.Context, userID int, messageID string, links []string) error {
	tokens, err := s.userRepo.FindGmailTokens(ctx, userID)
	if err != nil {
		return err
	}
	client, err := gmailclient.NewClient(ctx, s.googleCfg, s.scanCfg, tokens, s.logger)
	if err != nil {
		return err
	}

	ex := unsubscribe.NewExecutor(
		client,
		time.Duration(s.unsubCfg.TimeoutSeconds)*time.Second,
		s.unsubCfg.MaxAttempts,
		s.logger,
	)

	var lastErr error
	for _, link := range links {
		ok, err := ex.Execute(ctx, messageID, link)
		if err != nil {
			lastErr = err
			continue
		}
		if !ok {
			// 链接未通过校验，尝试下一个
			continue
		}

		// 打上退订标签,方便用户在邮箱里核对
		if labelID, err := client.CreateLabel(ctx, unsubscribedLabelName); err != nil {
			s.logger.Warn("failed to ensure unsubscribed label",
				zap.Int("user_id", userID),
				zap.Error(err))
		} else if err := client.ModifyLabels(ctx, messageID, []string{labelID}, nil); err != nil {
			s.logger.Warn("failed to apply unsubscribed label",
				zap.String("message_id", messageID),
				zap.Error(err))
		}

		if err := s.emailRepo.MarkUnsubscribed(ctx, userID, messageID); err != nil {
			return err
		}
		if err := s.usageRepo.Record(ctx, userID, "unsubscribe", 1); err != nil {
			s.logger.Warn("failed to record unsubscribe usage",
				zap.Int("user_id", userID),
				zap.Error(err))
		}
		return nil
	}

	if lastErr != nil {
		return lastErr
	}
	return ErrNoUnsubscribeLinks
}
