package comments

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malawadd/qisati/pkg/database"
)

func setup(t *testing.T) (*Repo, string, string) {
	t.Helper()
	db, err := database.OpenForTest(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userID := uuid.NewString()
	_, err = db.Exec("INSERT INTO users (id, handle) VALUES (?, ?)", userID, "reader")
	require.NoError(t, err)

	seriesID := uuid.NewString()
	_, err = db.Exec(
		"INSERT INTO series (id, slug, title, author_id) VALUES (?, ?, ?, ?)",
		seriesID, "c-test", "C", userID,
	)
	require.NoError(t, err)

	chapterID := uuid.NewString()
	_, err = db.Exec(
		"INSERT INTO chapters (id, series_id, idx, title) VALUES (?, ?, 1, 'One')",
		chapterID, seriesID,
	)
	require.NoError(t, err)

	return NewRepo(db), userID, chapterID
}

func TestCreateAndList(t *testing.T) {
	repo, userID, chapterID := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, chapterID, userID, fmt.Sprintf("comment %d", i))
		require.NoError(t, err)
	}

	list, err := repo.ListByChapter(ctx, chapterID, 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, userID, list[0].AuthorID)

	// limit and offset
	list, err = repo.ListByChapter(ctx, chapterID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = repo.ListByChapter(ctx, chapterID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// out-of-range limits fall back to the default
	list, err = repo.ListByChapter(ctx, chapterID, -1, 0)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
