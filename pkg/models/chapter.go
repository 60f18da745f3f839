package models

import "time"

const (
	StatusDraft  = "draft"
	StatusLive   = "live"
	StatusComing = "coming" // pre-sale display state, set by seed data only

	// Defaults for a freshly created chapter.
	DefaultSupply   = 100
	DefaultPriceEth = 0.002
)

type Chapter struct {
	ID        string    `json:"id"`
	SeriesID  string    `json:"series_id"`
	Index     int       `json:"index"`
	Title     string    `json:"title"`
	WordCount int       `json:"word_count"`
	Status    string    `json:"status"`
	PriceEth  float64   `json:"price_eth"`
	Supply    int       `json:"supply"`
	Remaining int       `json:"remaining"`
	TokenID   int       `json:"token_id"`
	DraftMd   string    `json:"draft_md,omitempty"`
	BodyMd    string    `json:"body_md,omitempty"`

	AudioGenerationCount int       `json:"audio_generation_count"`
	CreatedAt            time.Time `json:"created_at"`
}

// SupplyView is the reader-facing remaining/total pair.
type SupplyView struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}
