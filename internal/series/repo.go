package series

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

// PageSize is the fixed explore-feed page size.
const PageSize = 12

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type CreateParams struct {
	Slug       string
	Title      string
	CoverURL   string
	Logline    string
	SynopsisMd string
	AuthorID   string
	Contract   string
	TokenID    int
	Category   string
}

func (r *Repo) Create(ctx context.Context, p CreateParams) (*models.Series, error) {
	if p.Contract == "" {
		p.Contract = models.ZeroContract
	}
	if p.Category == "" {
		p.Category = "literary"
	}

	id := uuid.NewString()
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO series (id, slug, title, cover_url, logline, synopsis_md, author_id, contract, token_id, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, p.Slug, p.Title, p.CoverURL, p.Logline, p.SynopsisMd, p.AuthorID, p.Contract, p.TokenID, p.Category); err != nil {
		return nil, fmt.Errorf("create series: %w", err)
	}
	return r.GetByID(ctx, id)
}

// CreateDefault makes the untitled series that backs a chapter created with
// no target series.
func (r *Repo) CreateDefault(ctx context.Context, authorID string) (*models.Series, error) {
	return r.Create(ctx, CreateParams{
		Slug:       fmt.Sprintf("untitled-%d", time.Now().UnixMilli()),
		Title:      "Untitled Series",
		CoverURL:   "https://picsum.photos/240/360?random=new",
		Logline:    "A new story in progress...",
		SynopsisMd: "# About This Series\n\nThis is a new series.",
		AuthorID:   authorID,
		Category:   "literary",
	})
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Series, error) {
	return r.scan(r.DB.QueryRowContext(ctx, selectSeries+` WHERE id = ?`, id), "get series by id")
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (*models.Series, error) {
	return r.scan(r.DB.QueryRowContext(ctx, selectSeries+` WHERE slug = ?`, slug), "get series by slug")
}

const selectSeries = `
	SELECT id, slug, title, cover_url, logline, synopsis_md, author_id, contract, token_id, category, created_at
	FROM series`

func (r *Repo) scan(row *sql.Row, op string) (*models.Series, error) {
	var s models.Series
	if err := row.Scan(
		&s.ID, &s.Slug, &s.Title, &s.CoverURL, &s.Logline, &s.SynopsisMd,
		&s.AuthorID, &s.Contract, &s.TokenID, &s.Category, &s.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

// HasLiveChapter reports whether any child chapter has gone live. The series
// lock is always computed by this scan, never stored.
func (r *Repo) HasLiveChapter(ctx context.Context, seriesID string) (bool, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chapters
		WHERE series_id = ? AND status = ?
	`, seriesID, models.StatusLive).Scan(&n); err != nil {
		return false, fmt.Errorf("count live chapters: %w", err)
	}
	return n > 0, nil
}

// UpdateTitle enforces the lock-after-first-publish rule.
func (r *Repo) UpdateTitle(ctx context.Context, seriesID, title string) error {
	locked, err := r.HasLiveChapter(ctx, seriesID)
	if err != nil {
		return err
	}
	if locked {
		return apperr.ErrSeriesLocked
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE series SET title = ? WHERE id = ?
	`, title, seriesID)
	if err != nil {
		return fmt.Errorf("update series title: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *Repo) ListByAuthor(ctx context.Context, authorID string) ([]models.Series, error) {
	rows, err := r.DB.QueryContext(ctx, selectSeries+`
		WHERE author_id = ?
		ORDER BY created_at ASC
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list series by author: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// ChapterSummary is the slice of chapter state the series views need.
type ChapterSummary struct {
	ID        string
	Index     int
	Title     string
	WordCount int
	Status    string
	PriceEth  float64
	Supply    int
	Remaining int
}

func (r *Repo) ChapterSummaries(ctx context.Context, seriesID string) ([]ChapterSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, idx, title, word_count, status, price_eth, supply, remaining
		FROM chapters
		WHERE series_id = ?
		ORDER BY idx ASC
	`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("chapter summaries: %w", err)
	}
	defer rows.Close()

	var out []ChapterSummary
	for rows.Next() {
		var ch ChapterSummary
		if err := rows.Scan(&ch.ID, &ch.Index, &ch.Title, &ch.WordCount, &ch.Status, &ch.PriceEth, &ch.Supply, &ch.Remaining); err != nil {
			return nil, fmt.Errorf("scan chapter summary: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type ExploreQuery struct {
	Page            int
	Category        string
	Search          string
	IncludeUnminted bool
}

// Explore filters by category equality and case-insensitive substring match
// on title/logline, newest first, fixed page size of 12.
func (r *Repo) Explore(ctx context.Context, q ExploreQuery) ([]models.Series, int, error) {
	if q.Page < 1 {
		q.Page = 1
	}

	countSQL, countArgs := buildExploreSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("explore count: %w", err)
	}

	listSQL, listArgs := buildExploreSQL(q, false)
	rows, err := r.DB.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("explore query: %w", err)
	}
	defer rows.Close()

	out, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func buildExploreSQL(q ExploreQuery, countOnly bool) (string, []any) {
	base := selectSeries
	if countOnly {
		base = `SELECT COUNT(*) FROM series`
	}

	var where []string
	var args []any

	if c := strings.TrimSpace(q.Category); c != "" && c != "all" {
		where = append(where, "category = ?")
		args = append(args, c)
	}

	if s := strings.TrimSpace(q.Search); s != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(logline) LIKE ?)")
		kw := "%" + strings.ToLower(s) + "%"
		args = append(args, kw, kw)
	}

	if !q.IncludeUnminted {
		where = append(where, "contract != ?")
		args = append(args, models.ZeroContract)
	}

	sqlStr := base
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
		args = append(args, PageSize, (q.Page-1)*PageSize)
	}

	return sqlStr, args
}

func collect(rows *sql.Rows) ([]models.Series, error) {
	var out []models.Series
	for rows.Next() {
		var s models.Series
		if err := rows.Scan(
			&s.ID, &s.Slug, &s.Title, &s.CoverURL, &s.Logline, &s.SynopsisMd,
			&s.AuthorID, &s.Contract, &s.TokenID, &s.Category, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan series row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
