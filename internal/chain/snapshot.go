package chain

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/malawadd/qisati/pkg/models"
)

type SnapshotRepo struct {
	DB *sql.DB
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{DB: db}
}

func (r *SnapshotRepo) Insert(ctx context.Context, s models.TokenSnapshot) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO token_snapshots (contract, token_id, block, remaining, total_minted, price_eth)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.Contract, s.TokenID, s.Block, s.Remaining, s.TotalMinted, s.PriceEth)
	if err != nil {
		return fmt.Errorf("insert token snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot for a token, or (nil, nil).
func (r *SnapshotRepo) Latest(ctx context.Context, contract string, tokenID int) (*models.TokenSnapshot, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, contract, token_id, block, remaining, total_minted, price_eth, created_at
		FROM token_snapshots
		WHERE contract = ? AND token_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, contract, tokenID)

	var s models.TokenSnapshot
	if err := row.Scan(&s.ID, &s.Contract, &s.TokenID, &s.Block, &s.Remaining, &s.TotalMinted, &s.PriceEth, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("latest token snapshot: %w", err)
	}
	return &s, nil
}
