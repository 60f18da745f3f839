package stats

import (
	"context"
	"database/sql"
	"fmt"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// HomeStats aggregates platform-wide numbers for the landing page.
// Collectors is a rough estimate derived from collect volume until real
// holder data is wired in.
type HomeStats struct {
	Stories    int
	Authors    int
	Collectors int
	VolumeEth  float64
}

func (r *Repo) Home(ctx context.Context) (*HomeStats, error) {
	var s HomeStats

	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM series").Scan(&s.Stories)
	if err != nil {
		return nil, fmt.Errorf("count series: %w", err)
	}

	err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&s.Authors)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(price_eth * (supply - remaining)), 0) FROM chapters WHERE status = 'live'",
	).Scan(&s.VolumeEth)
	if err != nil {
		return nil, fmt.Errorf("sum volume: %w", err)
	}

	s.Collectors = int(s.VolumeEth * 15)
	return &s, nil
}
