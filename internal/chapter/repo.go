package chapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

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

const selectChapter = `
	SELECT id, series_id, idx, title, word_count, status, price_eth, supply, remaining,
	       token_id, draft_md, body_md, audio_generation_count, created_at
	FROM chapters`

// Create appends a draft chapter at the next sequential index.
func (r *Repo) Create(ctx context.Context, seriesID, title string) (*models.Chapter, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chapters WHERE series_id = ?
	`, seriesID).Scan(&count); err != nil {
		return nil, fmt.Errorf("count chapters: %w", err)
	}

	id := uuid.NewString()
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO chapters (id, series_id, idx, title, status, price_eth, supply, remaining)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, seriesID, count+1, title, models.StatusDraft,
		models.DefaultPriceEth, models.DefaultSupply, models.DefaultSupply); err != nil {
		return nil, fmt.Errorf("create chapter: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Chapter, error) {
	row := r.DB.QueryRowContext(ctx, selectChapter+` WHERE id = ?`, id)

	var ch models.Chapter
	if err := row.Scan(
		&ch.ID, &ch.SeriesID, &ch.Index, &ch.Title, &ch.WordCount, &ch.Status,
		&ch.PriceEth, &ch.Supply, &ch.Remaining, &ch.TokenID,
		&ch.DraftMd, &ch.BodyMd, &ch.AudioGenerationCount, &ch.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get chapter by id: %w", err)
	}
	return &ch, nil
}

func (r *Repo) ListBySeries(ctx context.Context, seriesID string) ([]models.Chapter, error) {
	rows, err := r.DB.QueryContext(ctx, selectChapter+`
		WHERE series_id = ?
		ORDER BY idx ASC
	`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	var out []models.Chapter
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(
			&ch.ID, &ch.SeriesID, &ch.Index, &ch.Title, &ch.WordCount, &ch.Status,
			&ch.PriceEth, &ch.Supply, &ch.Remaining, &ch.TokenID,
			&ch.DraftMd, &ch.BodyMd, &ch.AudioGenerationCount, &ch.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chapter row: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// SaveDraft stages markdown. Overwrite semantics, last write wins; calling
// twice with the same content is a no-op in effect.
func (r *Repo) SaveDraft(ctx context.Context, chapterID, md string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE chapters SET draft_md = ?, word_count = ? WHERE id = ?
	`, md, len(strings.Fields(md)), chapterID)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Publish moves staged content into the published field and flips the
// chapter live. One-way; there is no unpublish.
func (r *Repo) Publish(ctx context.Context, chapterID string) error {
	ch, err := r.GetByID(ctx, chapterID)
	if err != nil {
		return err
	}
	if ch == nil {
		return apperr.ErrNotFound
	}
	if strings.TrimSpace(ch.DraftMd) == "" {
		return apperr.ErrNoDraft
	}

	if _, err := r.DB.ExecContext(ctx, `
		UPDATE chapters SET body_md = draft_md, draft_md = '', status = ? WHERE id = ?
	`, models.StatusLive, chapterID); err != nil {
		return fmt.Errorf("publish chapter: %w", err)
	}
	return nil
}

func (r *Repo) UpdateTitle(ctx context.Context, chapterID, title string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE chapters SET title = ? WHERE id = ?
	`, title, chapterID)
	if err != nil {
		return fmt.Errorf("update chapter title: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpdateAfterMint resets the edition run: fresh supply, fresh remaining, new
// price and token id, status live.
func (r *Repo) UpdateAfterMint(ctx context.Context, chapterID string, tokenID, supply int, priceEth float64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE chapters
		SET token_id = ?, supply = ?, remaining = ?, price_eth = ?, status = ?
		WHERE id = ?
	`, tokenID, supply, supply, priceEth, models.StatusLive, chapterID)
	if err != nil {
		return fmt.Errorf("update after mint: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DecrementRemaining is the storage-layer guarantee behind collect: a single
// conditional UPDATE, atomic per sqlite's statement semantics. Zero rows
// affected means the edition is sold out.
func (r *Repo) DecrementRemaining(ctx context.Context, chapterID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE chapters SET remaining = remaining - 1
		WHERE id = ? AND remaining > 0
	`, chapterID)
	if err != nil {
		return fmt.Errorf("decrement remaining: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrSoldOut
	}
	return nil
}

// UpdateSupply applies an observed on-chain remaining count (sync worker).
// Remaining is clamped into [0, supply]; a negative price leaves it alone.
func (r *Repo) UpdateSupply(ctx context.Context, chapterID string, remaining int, priceEth float64) error {
	if priceEth < 0 {
		_, err := r.DB.ExecContext(ctx, `
			UPDATE chapters SET remaining = MAX(0, MIN(supply, ?)) WHERE id = ?
		`, remaining, chapterID)
		if err != nil {
			return fmt.Errorf("update supply: %w", err)
		}
		return nil
	}
	_, err := r.DB.ExecContext(ctx, `
		UPDATE chapters SET remaining = MAX(0, MIN(supply, ?)), price_eth = ? WHERE id = ?
	`, remaining, priceEth, chapterID)
	if err != nil {
		return fmt.Errorf("update supply: %w", err)
	}
	return nil
}

func (r *Repo) ListLive(ctx context.Context) ([]models.Chapter, error) {
	rows, err := r.DB.QueryContext(ctx, selectChapter+`
		WHERE status = ?
	`, models.StatusLive)
	if err != nil {
		return nil, fmt.Errorf("list live chapters: %w", err)
	}
	defer rows.Close()

	var out []models.Chapter
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(
			&ch.ID, &ch.SeriesID, &ch.Index, &ch.Title, &ch.WordCount, &ch.Status,
			&ch.PriceEth, &ch.Supply, &ch.Remaining, &ch.TokenID,
			&ch.DraftMd, &ch.BodyMd, &ch.AudioGenerationCount, &ch.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chapter row: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type NavEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Index int    `json:"index"`
}

// Navigation returns the previous and next chapters by index within the
// series; either may be nil at the edges.
func (r *Repo) Navigation(ctx context.Context, seriesID string, currentIndex int) (prev, next *NavEntry, err error) {
	chapters, err := r.ListBySeries(ctx, seriesID)
	if err != nil {
		return nil, nil, err
	}
	for i, ch := range chapters {
		if ch.Index != currentIndex {
			continue
		}
		if i > 0 {
			prev = &NavEntry{ID: chapters[i-1].ID, Title: chapters[i-1].Title, Index: chapters[i-1].Index}
		}
		if i < len(chapters)-1 {
			next = &NavEntry{ID: chapters[i+1].ID, Title: chapters[i+1].Title, Index: chapters[i+1].Index}
		}
		break
	}
	return prev, next, nil
}

func (r *Repo) CountComments(ctx context.Context, chapterID string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM comments WHERE chapter_id = ?
	`, chapterID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}
