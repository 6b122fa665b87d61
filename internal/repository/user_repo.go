package repository

import (
	"context"
	"mailsweep/internal/model"
	"mailsweep/internal/util"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db     *pgxpool.Pool
	cipher *util.TokenCipher
}

func NewUserRepository(db *pgxpool.Pool, cipher *util.TokenCipher) *UserRepository {
	return &UserRepository{db: db, cipher: cipher}
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (email, password_hash, created_at)
        VALUES ($1, $2, NOW())
        RETURNING id
    `
	return r.db.QueryRow(ctx, query, u.Email, u.PasswordHash).Scan(&u.ID)
}

// FindByEmail returns user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
        SELECT id, email, password_hash, created_at
        FROM users
        WHERE email = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveGmailTokens stores the OAuth token pair for a user's mailbox. Tokens
// are sealed before they touch the database.
func (r *UserRepository) SaveGmailTokens(ctx context.Context, t *model.GmailTokens) error {
	access, err := r.cipher.Encrypt(t.AccessToken)
	if err != nil {
		return err
	}
	refresh, err := r.cipher.Encrypt(t.RefreshToken)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO gmail_tokens (user_id, access_token, refresh_token, expiry, updated_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (user_id) DO UPDATE SET
            access_token = EXCLUDED.access_token,
            refresh_token = EXCLUDED.refresh_token,
            expiry = EXCLUDED.expiry,
            updated_at = NOW()
    `
	_, err = r.db.Exec(ctx, query, t.UserID, access, refresh, t.Expiry)
	return err
}

// FindGmailTokens returns the decrypted token pair, or pgx.ErrNoRows when
// the user never connected a mailbox.
func (r *UserRepository) FindGmailTokens(ctx context.Context, userID int) (*model.GmailTokens, error) {
	query := `
        SELECT user_id, access_token, refresh_token, expiry
        FROM gmail_tokens
        WHERE user_id = $1
    `
	var t model.GmailTokens
	var access, refresh string
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&t.UserID, &access, &refresh, &t.Expiry,
	)
	if err != nil {
		return nil, err
	}

	if t.AccessToken, err = r.cipher.Decrypt(access); err != nil {
		return nil, err
	}
	if t.RefreshToken, err = r.cipher.Decrypt(refresh); err != nil {
		return nil, err
	}
	return &t, nil
}
