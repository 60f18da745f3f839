package comments

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/malawadd/qisati/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, chapterID, authorID, body string) (*models.Comment, error) {
	id := uuid.NewString()
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO comments (id, chapter_id, author_id, body)
		VALUES (?, ?, ?, ?)
	`, id, chapterID, authorID, body); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, chapter_id, author_id, body, created_at
		FROM comments
		WHERE id = ?
	`, id)

	var cm models.Comment
	if err := row.Scan(&cm.ID, &cm.ChapterID, &cm.AuthorID, &cm.Body, &cm.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &cm, nil
}

func (r *Repo) ListByChapter(ctx context.Context, chapterID string, limit, offset int) ([]models.Comment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, chapter_id, author_id, body, created_at
		FROM comments
		WHERE chapter_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, chapterID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := make([]models.Comment, 0, limit)
	for rows.Next() {
		var cm models.Comment
		if err := rows.Scan(&cm.ID, &cm.ChapterID, &cm.AuthorID, &cm.Body, &cm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		out = append(out, cm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
