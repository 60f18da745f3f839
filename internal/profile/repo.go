package profile

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"
)

// Handles are 3 to 20 characters of letters, digits and underscore.
var handleRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

func ValidHandle(h string) bool {
	return handleRe.MatchString(h)
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// HandleAvailable reports whether handle is unused, ignoring excludeUserID
// so a user keeping their own handle counts as available.
func (r *Repo) HandleAvailable(ctx context.Context, handle, excludeUserID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE LOWER(handle) = LOWER(?) AND id != ?",
		handle, excludeUserID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check handle: %w", err)
	}
	return n == 0, nil
}

type UpdateParams struct {
	Handle    string
	About     string
	AvatarURL string
}

func (r *Repo) UpdateProfile(ctx context.Context, userID string, p UpdateParams) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET handle = ?, about = ?, avatar_url = ? WHERE id = ?",
		p.Handle, p.About, p.AvatarURL, userID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (r *Repo) FollowerCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM follows WHERE following_id = ?", userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count followers: %w", err)
	}
	return n, nil
}

func (r *Repo) FollowingCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM follows WHERE follower_id = ?", userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count following: %w", err)
	}
	return n, nil
}

func (r *Repo) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM follows WHERE follower_id = ? AND following_id = ?",
		followerID, followingID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return n > 0, nil
}

// ToggleFollow flips the follow edge and returns the resulting state.
func (r *Repo) ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	following, err := r.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}

	if following {
		_, err = r.db.ExecContext(ctx,
			"DELETE FROM follows WHERE follower_id = ? AND following_id = ?",
			followerID, followingID,
		)
		if err != nil {
			return false, fmt.Errorf("unfollow: %w", err)
		}
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)",
		followerID, followingID, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("follow: %w", err)
	}
	return true, nil
}
