package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/malawadd/qisati/pkg/apperr"
	"github.com/malawadd/qisati/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx, `
		SELECT id, handle, avatar_url, about, wallet_address, created_at
		FROM users
		WHERE id = ?
	`, id), "get user by id")
}

func (r *Repo) GetUserByWallet(ctx context.Context, address string) (*models.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx, `
		SELECT id, handle, avatar_url, about, wallet_address, created_at
		FROM users
		WHERE LOWER(wallet_address) = LOWER(?)
	`, address), "get user by wallet")
}

func (r *Repo) GetUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx, `
		SELECT id, handle, avatar_url, about, wallet_address, created_at
		FROM users
		WHERE handle = ?
	`, handle), "get user by handle")
}

func (r *Repo) scanUser(row *sql.Row, op string) (*models.User, error) {
	var (
		u      models.User
		wallet sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Handle, &u.AvatarURL, &u.About, &wallet, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.WalletAddress = wallet.String
	return &u, nil
}

// EnsureUser resolves a wallet address to a user, creating one on first
// contact. This is the single implicit-creation path in the system; it runs
// only inside login so that queries stay side-effect-free.
func (r *Repo) EnsureUser(ctx context.Context, address string) (*models.User, error) {
	if u, err := r.GetUserByWallet(ctx, address); err != nil {
		return nil, err
	} else if u != nil {
		return u, nil
	}

	handle, err := r.freeHandle(ctx, defaultHandle(address))
	if err != nil {
		return nil, err
	}

	u := models.User{
		ID:            uuid.NewString(),
		Handle:        handle,
		AvatarURL:     "https://api.dicebear.com/7.x/identicon/svg?seed=" + address,
		About:         "Connected via wallet",
		WalletAddress: address,
	}

	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, handle, avatar_url, about, wallet_address)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Handle, u.AvatarURL, u.About, u.WalletAddress); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return r.GetUserByID(ctx, u.ID)
}

// defaultHandle derives a handle from the address: first six characters
// (including the 0x prefix) plus the last four.
func defaultHandle(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + address[len(address)-4:]
}

func (r *Repo) freeHandle(ctx context.Context, base string) (string, error) {
	handle := base
	for i := 2; ; i++ {
		existing, err := r.GetUserByHandle(ctx, handle)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return handle, nil
		}
		handle = fmt.Sprintf("%s_%d", base, i)
	}
}

func (r *Repo) CreateSession(ctx context.Context, userID, address string, ttl time.Duration) (*models.WalletSession, error) {
	s := models.WalletSession{
		ID:            uuid.NewString(),
		UserID:        userID,
		WalletAddress: address,
		CreatedAt:     time.Now().UTC(),
		ExpiresAt:     time.Now().UTC().Add(ttl),
	}

	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO wallet_sessions (id, user_id, wallet_address, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.UserID, s.WalletAddress, s.CreatedAt, s.ExpiresAt); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &s, nil
}

func (r *Repo) GetSession(ctx context.Context, id string) (*models.WalletSession, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, wallet_address, created_at, expires_at
		FROM wallet_sessions
		WHERE id = ?
	`, id)

	var s models.WalletSession
	if err := row.Scan(&s.ID, &s.UserID, &s.WalletAddress, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// ResolveSession fails with ErrUnauthenticated for absent or expired
// sessions. Expired rows are left in place; only logout deletes them.
func (r *Repo) ResolveSession(ctx context.Context, id string) (*models.WalletSession, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.ErrUnauthenticated
	}
	s, err := r.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil || s.Expired(time.Now().UTC()) {
		return nil, apperr.ErrUnauthenticated
	}
	return s, nil
}

func (r *Repo) DeleteSession(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM wallet_sessions
		WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
