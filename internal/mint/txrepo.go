package mint

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/malawadd/qisati/pkg/models"
)

// TxRepo is the append-only pending-transaction log.
type TxRepo struct {
	DB *sql.DB
}

func NewTxRepo(db *sql.DB) *TxRepo {
	return &TxRepo{DB: db}
}

func (r *TxRepo) Append(ctx context.Context, tx models.PendingTx) (*models.PendingTx, error) {
	tx.ID = uuid.NewString()

	var seriesID, chapterID any
	if tx.SeriesID != "" {
		seriesID = tx.SeriesID
	}
	if tx.ChapterID != "" {
		chapterID = tx.ChapterID
	}

	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO pending_txs (id, hash, type, user_id, series_id, chapter_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, tx.ID, tx.Hash, tx.Type, tx.UserID, seriesID, chapterID); err != nil {
		return nil, fmt.Errorf("append pending tx: %w", err)
	}
	return &tx, nil
}

func (r *TxRepo) ListByUser(ctx context.Context, userID string) ([]models.PendingTx, error) {
	rows, err := r.DB.QueryContext(ctx, selectTx+`
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending txs by user: %w", err)
	}
	defer rows.Close()
	return collectTxs(rows)
}

func (r *TxRepo) ListAll(ctx context.Context) ([]models.PendingTx, error) {
	rows, err := r.DB.QueryContext(ctx, selectTx+` ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pending txs: %w", err)
	}
	defer rows.Close()
	return collectTxs(rows)
}

func (r *TxRepo) ClearByHash(ctx context.Context, hash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM pending_txs WHERE hash = ?
	`, hash)
	if err != nil {
		return false, fmt.Errorf("clear pending tx: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

const selectTx = `
	SELECT id, hash, type, user_id, series_id, chapter_id, created_at
	FROM pending_txs`

func collectTxs(rows *sql.Rows) ([]models.PendingTx, error) {
	var out []models.PendingTx
	for rows.Next() {
		var (
			tx        models.PendingTx
			seriesID  sql.NullString
			chapterID sql.NullString
		)
		if err := rows.Scan(&tx.ID, &tx.Hash, &tx.Type, &tx.UserID, &seriesID, &chapterID, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending tx: %w", err)
		}
		tx.SeriesID = seriesID.String
		tx.ChapterID = chapterID.String
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
