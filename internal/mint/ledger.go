package mint

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/malawadd/qisati/internal/chain"
	"github.com/malawadd/qisati/internal/chapter"
	"github.com/malawadd/qisati/internal/live"
	"github.com/malawadd/qisati/internal/series"
	"github.com/malawadd/qisati/pkg/apperr"
	"github.com/malawadd/qisati/pkg/models"
)

// UnlimitedSupply is the sentinel an "unlimited" edition size maps to.
const UnlimitedSupply = 1_000_000

type Split struct {
	Address    string  `json:"address"`
	Percentage float64 `json:"percentage"`
}

// Ledger owns edition supply: minting runs and collecting single editions.
type Ledger struct {
	Chapters *chapter.Repo
	Series   *series.Repo
	Txs      *TxRepo
	Client   chain.Client
	Hub      *live.Hub
}

func NewLedger(chapters *chapter.Repo, seriesRepo *series.Repo, txs *TxRepo, client chain.Client, hub *live.Hub) *Ledger {
	return &Ledger{Chapters: chapters, Series: seriesRepo, Txs: txs, Client: client, Hub: hub}
}

type MintResult struct {
	TxHash  string `json:"tx_hash"`
	TokenID int    `json:"token_id"`
}

// Mint publishes the chapter if it is not live yet, then resets its edition
// run and records the pending transaction. The implicit publish is
// deliberate: it inherits the no-draft check, so minting an empty draft
// fails before any supply change.
func (l *Ledger) Mint(ctx context.Context, callerID, chapterID string, size int, priceEth float64, splits []Split) (*MintResult, error) {
	if size <= 0 {
		return nil, fmt.Errorf("edition size must be positive")
	}
	if priceEth < 0 {
		return nil, fmt.Errorf("price must be non-negative")
	}
	if err := validateSplits(splits); err != nil {
		return nil, err
	}

	ch, sr, err := l.chapterWithSeries(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if sr.AuthorID != callerID {
		return nil, apperr.ErrForbidden
	}

	if ch.Status != models.StatusLive {
		if err := l.Chapters.Publish(ctx, ch.ID); err != nil {
			return nil, err
		}
	}

	tokenID, txHash, err := l.Client.MintEdition(ctx, sr.Contract, size, priceEth)
	if err != nil {
		return nil, fmt.Errorf("%w: mint edition: %v", apperr.ErrExternalService, err)
	}

	if err := l.Chapters.UpdateAfterMint(ctx, ch.ID, tokenID, size, priceEth); err != nil {
		return nil, err
	}

	if _, err := l.Txs.Append(ctx, models.PendingTx{
		Hash:      txHash,
		Type:      models.TxMintChapter,
		UserID:    callerID,
		ChapterID: ch.ID,
	}); err != nil {
		return nil, err
	}

	l.broadcast("edition.mint", ch.ID, sr.ID, size, size)
	return &MintResult{TxHash: txHash, TokenID: tokenID}, nil
}

type CollectResult struct {
	TxHash    string `json:"tx_hash"`
	Remaining int    `json:"remaining"`
}

// Collect decrements the remaining counter through the storage layer's
// conditional update and logs the pending transaction. Nothing is written
// when the edition is sold out.
func (l *Ledger) Collect(ctx context.Context, callerID, chapterID string) (*CollectResult, error) {
	ch, sr, err := l.chapterWithSeries(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	if err := l.Chapters.DecrementRemaining(ctx, ch.ID); err != nil {
		return nil, err
	}

	txHash := newTxHash()
	if _, err := l.Txs.Append(ctx, models.PendingTx{
		Hash:      txHash,
		Type:      models.TxCollect,
		UserID:    callerID,
		ChapterID: ch.ID,
	}); err != nil {
		return nil, err
	}

	updated, err := l.Chapters.GetByID(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	remaining := ch.Remaining - 1
	if updated != nil {
		remaining = updated.Remaining
	}

	l.broadcast("edition.collect", ch.ID, sr.ID, remaining, ch.Supply)
	return &CollectResult{TxHash: txHash, Remaining: remaining}, nil
}

// Withdraw is a stub until on-chain reward disbursement lands. It succeeds
// without moving anything.
func (l *Ledger) Withdraw(ctx context.Context, callerID string) error {
	log.Printf("[mint] withdrawal requested for user %s", callerID)
	return nil
}

func (l *Ledger) chapterWithSeries(ctx context.Context, chapterID string) (*models.Chapter, *models.Series, error) {
	ch, err := l.Chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, nil, err
	}
	if ch == nil {
		return nil, nil, apperr.ErrNotFound
	}
	sr, err := l.Series.GetByID(ctx, ch.SeriesID)
	if err != nil {
		return nil, nil, err
	}
	if sr == nil {
		return nil, nil, apperr.ErrNotFound
	}
	return ch, sr, nil
}

func (l *Ledger) broadcast(eventType, chapterID, seriesID string, remaining, supply int) {
	if l.Hub == nil {
		return
	}
	ev := live.SupplyEvent{
		Type:      eventType,
		ChapterID: chapterID,
		SeriesID:  seriesID,
		Remaining: remaining,
		Supply:    supply,
		At:        time.Now().UTC(),
	}
	go l.Hub.BroadcastJSON(ev)
}

func validateSplits(splits []Split) error {
	if len(splits) == 0 {
		return nil
	}
	var total float64
	for _, s := range splits {
		if strings.TrimSpace(s.Address) == "" {
			return fmt.Errorf("split address required")
		}
		if s.Percentage <= 0 {
			return fmt.Errorf("split percentage must be positive")
		}
		total += s.Percentage
	}
	if total != 100 {
		return fmt.Errorf("split percentages must sum to 100, got %g", total)
	}
	return nil
}

// newTxHash synthesizes the hash recorded for a collect. The real purchase
// is submitted wallet-side; the server only tracks it.
func newTxHash() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return "0x" + hex.EncodeToString(b)
}
