package models

import "time"

const (
	TxMintSeries  = "mintSeries"
	TxMintChapter = "mintChapter"
	TxCollect     = "collect"
)

// PendingTx is a locally recorded marker for an externally submitted
// transaction awaiting confirmation. Append-only; cleared once the receipt
// confirms.
type PendingTx struct {
	ID        string    `json:"id"`
	Hash      string    `json:"hash"`
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	SeriesID  string    `json:"series_id,omitempty"`
	ChapterID string    `json:"chapter_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenSnapshot records on-chain supply as observed by the sync worker.
type TokenSnapshot struct {
	ID          int64     `json:"id"`
	Contract    string    `json:"contract"`
	TokenID     int       `json:"token_id"`
	Block       int64     `json:"block"`
	Remaining   int       `json:"remaining"`
	TotalMinted int       `json:"total_minted"`
	PriceEth    float64   `json:"price_eth"`
	CreatedAt   time.Time `json:"created_at"`
}
