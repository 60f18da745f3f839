package chain

import (
	"context"
	"log"
	"time"

	"github.com/malawadd/qisati/internal/chapter"
	"github.com/malawadd/qisati/internal/series"
	"github.com/malawadd/qisati/pkg/models"
)

// PendingStore is the slice of the mint ledger the syncer needs for
// transaction reconciliation.
type PendingStore interface {
	ListAll(ctx context.Context) ([]models.PendingTx, error)
	ClearByHash(ctx context.Context, hash string) (bool, error)
}

// Syncer periodically refreshes live-chapter supply from the chain and
// clears pending transactions whose receipts have confirmed. One item's
// failure never stops the rest of the pass.
type Syncer struct {
	Client    Client
	Chapters  *chapter.Repo
	Series    *series.Repo
	Snapshots *SnapshotRepo
	Pending   PendingStore
	Interval  time.Duration
}

func (s *Syncer) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[chain-sync] running every %s", interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("[chain-sync] stopping")
			return
		case <-ticker.C:
			s.SyncOnce(ctx)
		}
	}
}

// SyncOnce performs a single full pass.
func (s *Syncer) SyncOnce(ctx context.Context) {
	s.syncSupply(ctx)
	s.reconcilePending(ctx)
}

func (s *Syncer) syncSupply(ctx context.Context) {
	live, err := s.Chapters.ListLive(ctx)
	if err != nil {
		log.Printf("[chain-sync] list live chapters: %v", err)
		return
	}

	for _, ch := range live {
		if ch.TokenID == 0 {
			continue // never minted on-chain
		}
		sr, err := s.Series.GetByID(ctx, ch.SeriesID)
		if err != nil || sr == nil {
			log.Printf("[chain-sync] series %s for chapter %s: %v", ch.SeriesID, ch.ID, err)
			continue
		}
		if sr.Contract == models.ZeroContract {
			continue
		}

		remaining, priceEth, err := s.Client.ReadSupply(ctx, sr.Contract, ch.TokenID)
		if err != nil {
			log.Printf("[chain-sync] read supply %s:%d: %v", sr.Contract, ch.TokenID, err)
			continue
		}

		if err := s.Chapters.UpdateSupply(ctx, ch.ID, remaining, priceEth); err != nil {
			log.Printf("[chain-sync] update chapter %s: %v", ch.ID, err)
			continue
		}

		snap := models.TokenSnapshot{
			Contract:    sr.Contract,
			TokenID:     ch.TokenID,
			Block:       time.Now().Unix(),
			Remaining:   remaining,
			TotalMinted: ch.Supply - remaining,
			PriceEth:    priceEth,
		}
		if err := s.Snapshots.Insert(ctx, snap); err != nil {
			log.Printf("[chain-sync] snapshot %s:%d: %v", sr.Contract, ch.TokenID, err)
		}
	}
}

func (s *Syncer) reconcilePending(ctx context.Context) {
	txs, err := s.Pending.ListAll(ctx)
	if err != nil {
		log.Printf("[chain-sync] list pending txs: %v", err)
		return
	}

	for _, tx := range txs {
		confirmed, err := s.Client.GetReceipt(ctx, tx.Hash)
		if err != nil {
			log.Printf("[chain-sync] receipt %s: %v", tx.Hash, err)
			continue
		}
		if !confirmed {
			continue
		}
		if _, err := s.Pending.ClearByHash(ctx, tx.Hash); err != nil {
			log.Printf("[chain-sync] clear tx %s: %v", tx.Hash, err)
		}
	}
}
