package chain_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malawadd/qisati/internal/chain"
	"github.com/malawadd/qisati/internal/chapter"
	"github.com/malawadd/qisati/internal/mint"
	"github.com/malawadd/qisati/internal/series"
	"github.com/malawadd/qisati/pkg/database"
	"github.com/malawadd/qisati/pkg/models"
)

func setupSyncer(t *testing.T) (*chain.Syncer, *sql.DB, *chapter.Repo, *mint.TxRepo) {
	t.Helper()
	db, err := database.OpenForTest(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	chRepo := chapter.NewRepo(db)
	txs := mint.NewTxRepo(db)
	s := &chain.Syncer{
		Client:    chain.NewMockClient(7),
		Chapters:  chRepo,
		Series:    series.NewRepo(db),
		Snapshots: chain.NewSnapshotRepo(db),
		Pending:   txs,
	}
	return s, db, chRepo, txs
}

func seedMintedChapter(t *testing.T, db *sql.DB, contract string, tokenID int) (seriesID, chapterID string) {
	t.Helper()
	authorID := uuid.NewString()
	_, err := db.Exec("INSERT INTO users (id, handle) VALUES (?, ?)", authorID, "writer_"+authorID[:8])
	require.NoError(t, err)

	sr, err := series.NewRepo(db).Create(context.Background(), series.CreateParams{
		Slug: "sync-" + uuid.NewString()[:8], Title: "Sync", AuthorID: authorID,
		Category: "sci-fi", Contract: contract,
	})
	require.NoError(t, err)

	chRepo := chapter.NewRepo(db)
	ch, err := chRepo.Create(context.Background(), sr.ID, "Chapter")
	require.NoError(t, err)
	require.NoError(t, chRepo.SaveDraft(context.Background(), ch.ID, "prose"))
	require.NoError(t, chRepo.Publish(context.Background(), ch.ID))
	if tokenID != 0 {
		require.NoError(t, chRepo.UpdateAfterMint(context.Background(), ch.ID, tokenID, 100, 0.002))
	}
	return sr.ID, ch.ID
}

func TestSyncOnceRefreshesSupplyAndSnapshots(t *testing.T) {
	s, db, chRepo, _ := setupSyncer(t)
	ctx := context.Background()

	contract := "0x4444444444444444444444444444444444444444"
	_, chapterID := seedMintedChapter(t, db, contract, 9)

	s.SyncOnce(ctx)

	ch, err := chRepo.GetByID(ctx, chapterID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ch.Remaining, 0)
	assert.LessOrEqual(t, ch.Remaining, ch.Supply)
	assert.Positive(t, ch.PriceEth)

	// the snapshot keeps the raw observed value; the chapter row clamps it
	snap, err := s.Snapshots.Latest(ctx, contract, 9)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, contract, snap.Contract)
	assert.Equal(t, 9, snap.TokenID)
	if snap.Remaining <= ch.Supply {
		assert.Equal(t, snap.Remaining, ch.Remaining)
	} else {
		assert.Equal(t, ch.Supply, ch.Remaining)
	}
}

func TestSyncOnceSkipsUnmintedWork(t *testing.T) {
	s, db, chRepo, _ := setupSyncer(t)
	ctx := context.Background()

	// live but never minted on-chain
	_, noToken := seedMintedChapter(t, db, "0x5555555555555555555555555555555555555555", 0)
	// minted token id but zero contract
	_, zeroContract := seedMintedChapter(t, db, models.ZeroContract, 3)

	s.SyncOnce(ctx)

	ch, err := chRepo.GetByID(ctx, noToken)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSupply, ch.Remaining)

	ch, err = chRepo.GetByID(ctx, zeroContract)
	require.NoError(t, err)
	assert.Equal(t, 100, ch.Remaining)
}

func TestSyncOnceClearsConfirmedPending(t *testing.T) {
	s, db, _, txs := setupSyncer(t)
	ctx := context.Background()

	userID := uuid.NewString()
	_, err := db.Exec("INSERT INTO users (id, handle) VALUES (?, ?)", userID, "reader_"+userID[:8])
	require.NoError(t, err)

	_, err = txs.Append(ctx, models.PendingTx{
		Hash:   "0xabc123",
		Type:   models.TxCollect,
		UserID: userID,
	})
	require.NoError(t, err)

	// the mock chain confirms every receipt
	s.SyncOnce(ctx)

	pending, err := txs.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
