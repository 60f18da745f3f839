package series

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malawadd/qisati/pkg/apperr"
	"github.com/malawadd/qisati/pkg/database"
	"github.com/malawadd/qisati/pkg/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenForTest(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedAuthor(t *testing.T, db *sql.DB) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec("INSERT INTO users (id, handle) VALUES (?, ?)", id, "writer_"+id[:8])
	require.NoError(t, err)
	return id
}

func insertChapter(t *testing.T, db *sql.DB, seriesID string, idx int, status string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO chapters (id, series_id, idx, title, status)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), seriesID, idx, fmt.Sprintf("Chapter %d", idx), status,
	)
	require.NoError(t, err)
}

func TestCreateDefault(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	author := seedAuthor(t, db)

	sr, err := repo.CreateDefault(context.Background(), author)
	require.NoError(t, err)
	assert.Equal(t, "Untitled Series", sr.Title)
	assert.Equal(t, models.ZeroContract, sr.Contract)
	assert.Equal(t, author, sr.AuthorID)
	assert.NotEmpty(t, sr.Slug)

	got, err := repo.GetBySlug(context.Background(), sr.Slug)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sr.ID, got.ID)
}

func TestUpdateTitleLocksAfterFirstLiveChapter(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()
	author := seedAuthor(t, db)

	sr, err := repo.Create(ctx, CreateParams{
		Slug: "locked-test", Title: "Before", AuthorID: author, Category: "fantasy",
	})
	require.NoError(t, err)

	// drafts do not lock the series
	insertChapter(t, db, sr.ID, 1, models.StatusDraft)
	require.NoError(t, repo.UpdateTitle(ctx, sr.ID, "After"))

	got, err := repo.GetByID(ctx, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)

	insertChapter(t, db, sr.ID, 2, models.StatusLive)
	err = repo.UpdateTitle(ctx, sr.ID, "Too Late")
	assert.ErrorIs(t, err, apperr.ErrSeriesLocked)

	got, err = repo.GetByID(ctx, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)

	err = repo.UpdateTitle(ctx, uuid.NewString(), "Nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestExploreFilters(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()
	author := seedAuthor(t, db)

	mk := func(slug, title, logline, category, contract string) {
		_, err := repo.Create(ctx, CreateParams{
			Slug: slug, Title: title, Logline: logline,
			AuthorID: author, Category: category, Contract: contract,
		})
		require.NoError(t, err)
	}

	mk("alpha", "Neon Alleys", "a cyberpunk tale", "sci-fi", "0x1111111111111111111111111111111111111111")
	mk("beta", "Quiet Rivers", "literary drift", "literary", "0x2222222222222222222222222222222222222222")
	mk("gamma", "Hidden Draft", "unminted work", "sci-fi", "")

	// default explore hides unminted series
	items, total, err := repo.Explore(ctx, ExploreQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	items, total, err = repo.Explore(ctx, ExploreQuery{Page: 1, IncludeUnminted: true})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 3)

	items, total, err = repo.Explore(ctx, ExploreQuery{Page: 1, Category: "sci-fi"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "alpha", items[0].Slug)

	// search is case-insensitive over title and logline
	items, total, err = repo.Explore(ctx, ExploreQuery{Page: 1, Search: "NEON"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "alpha", items[0].Slug)

	items, total, err = repo.Explore(ctx, ExploreQuery{Page: 1, Search: "literary drift"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "beta", items[0].Slug)

	_, total, err = repo.Explore(ctx, ExploreQuery{Page: 1, Search: "no such story"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestExplorePagination(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()
	author := seedAuthor(t, db)

	for i := 0; i < PageSize+1; i++ {
		_, err := repo.Create(ctx, CreateParams{
			Slug:     fmt.Sprintf("s-%02d", i),
			Title:    fmt.Sprintf("Series %02d", i),
			AuthorID: author,
			Category: "mystery",
			Contract: "0x3333333333333333333333333333333333333333",
		})
		require.NoError(t, err)
	}

	items, total, err := repo.Explore(ctx, ExploreQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, PageSize+1, total)
	assert.Len(t, items, PageSize)

	items, total, err = repo.Explore(ctx, ExploreQuery{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, PageSize+1, total)
	assert.Len(t, items, 1)

	// page zero falls back to the first page
	items, _, err = repo.Explore(ctx, ExploreQuery{Page: 0})
	require.NoError(t, err)
	assert.Len(t, items, PageSize)
}

func TestChapterSummaries(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()
	author := seedAuthor(t, db)

	sr, err := repo.Create(ctx, CreateParams{
		Slug: "summaries", Title: "S", AuthorID: author, Category: "romance",
	})
	require.NoError(t, err)

	insertChapter(t, db, sr.ID, 2, models.StatusLive)
	insertChapter(t, db, sr.ID, 1, models.StatusLive)
	insertChapter(t, db, sr.ID, 3, models.StatusComing)

	sums, err := repo.ChapterSummaries(ctx, sr.ID)
	require.NoError(t, err)
	require.Len(t, sums, 3)
	assert.Equal(t, 1, sums[0].Index)
	assert.Equal(t, 2, sums[1].Index)
	assert.Equal(t, 3, sums[2].Index)
}
