package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"mailsweep/config"
	"mailsweep/internal/gmailclient"
	"mailsweep/internal/model"
	"mailsweep/internal/repository"
	"mailsweep/internal/util"
)

type AuthService struct {
	userRepo  *repository.UserRepository
	googleCfg config.GoogleConfig
	scanCfg   config.ScanConfig
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	googleCfg config.GoogleConfig,
	scanCfg config.ScanConfig,
	jwtSecret string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		googleCfg: googleCfg,
		scanCfg:   scanCfg,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Register creates a new user.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email already exists")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login checks user credentials and returns JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", errors.New("invalid email or password")
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", errors.New("invalid email or password")
	}

	token, err := util.GenerateJWT(u.ID, s.jwtSecret)
	if err != nil {
		return "", err
	}

	return token, nil
}

// GmailAuthURL returns the Google consent page URL for connecting a mailbox.
// offline access is required to receive a refresh token.
func (s *AuthService) GmailAuthURL(state string) string {
	cfg := gmailclient.OAuthConfig(s.googleCfg)
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ConnectGmail exchanges the consent code for tokens, verifies the mailbox
// is reachable, then stores the tokens.
func (s *AuthService) ConnectGmail(ctx context.Context, userID int, code string) error {
	cfg := gmailclient.OAuthConfig(s.googleCfg)
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return err
	}
	if tok.RefreshToken == "" {
		return errors.New("google did not return a refresh token, revoke access and retry")
	}

	tokens := &model.GmailTokens{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}

	// 入库前先验证 token 真的能访问邮箱
	client, err := gmailclient.NewClient(ctx, s.googleCfg, s.scanCfg, tokens, s.logger)
	if err != nil {
		return err
	}
	address, err := client.Profile(ctx)
	if err != nil {
		return errors.New("gmail connection check failed, revoke access and retry")
	}
	s.logger.Info("gmail mailbox connected",
		zap.Int("user_id", userID),
		zap.String("address", address))

	return s.userRepo.SaveGmailTokens(ctx, tokens)
}
