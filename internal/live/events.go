package live

import "time"

// SupplyEvent announces a change in a chapter's edition supply.
// Type is "edition.collect" or "edition.mint".
type SupplyEvent struct {
	Type      string    `json:"type"`
	ChapterID string    `json:"chapter_id"`
	SeriesID  string    `json:"series_id"`
	Remaining int       `json:"remaining"`
	Supply    int       `json:"supply"`
	At        time.Time `json:"at"`
}
