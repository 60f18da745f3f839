package models

import "time"

// ZeroContract marks a series that has not been minted on-chain yet.
const ZeroContract = "0x0000000000000000000000000000000000000000"

type Series struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	CoverURL   string    `json:"cover_url"`
	Logline    string    `json:"logline"`
	SynopsisMd string    `json:"synopsis_md"`
	AuthorID   string    `json:"author_id"`
	Contract   string    `json:"contract"`
	TokenID    int       `json:"token_id"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
}

// Categories a series can belong to. Closed set.
var Categories = []string{"sci-fi", "fantasy", "thriller", "romance", "mystery", "literary"}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}
