package main

import (
	"database/sql"
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"

	"github.com/malawadd/qisati/pkg/database"
	"github.com/malawadd/qisati/pkg/utils"
)

// seed fills the database with demo stories so the explore and dashboard
// views have something to show. Safe to rerun; existing slugs are skipped.
func main() {
	utils.LoadEnv()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := seed(db); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Printf("seeded demo data into %s", cfg.Path)
}

type seedUser struct {
	handle string
	avatar string
	about  string
}

type seedSeries struct {
	slug     string
	title    string
	cover    string
	logline  string
	synopsis string
	author   string // handle
	contract string
	category string
}

var users = []seedUser{
	{
		handle: "sarah_chen",
		avatar: "https://picsum.photos/100/100?random=1",
		about:  "Tech journalist turned fiction writer, exploring the intersection of technology and human connection.",
	},
	{
		handle: "kenji_nakamura",
		avatar: "https://picsum.photos/100/100?random=2",
		about:  "Cyberpunk author from Neo Tokyo, writing the future one line of code at a time.",
	},
}

var seriesData = []seedSeries{
	{
		slug:     "digital-nomad",
		title:    "The Digital Nomad Chronicles",
		cover:    "https://picsum.photos/240/360?random=1",
		logline:  "A thrilling journey through remote work culture and digital freedom.",
		synopsis: "# About This Series\n\nFollow Maya as she navigates the complexities of digital nomadism in a world where physical location becomes increasingly irrelevant.",
		author:   "sarah_chen",
		contract: "0x1234567890123456789012345678901234567890",
		category: "sci-fi",
	},
	{
		slug:     "neo-tokyo-nights",
		title:    "Midnight in Neo Tokyo",
		cover:    "https://picsum.photos/240/360?random=2",
		logline:  "Neon-soaked streets hide digital secrets in this cyberpunk thriller.",
		synopsis: "# Neo Tokyo Nights\n\nIn the year 2087, Neo Tokyo pulses with digital life. Follow Akira as he uncovers a conspiracy that threatens the very fabric of digital society.",
		author:   "kenji_nakamura",
		contract: "0x2345678901234567890123456789012345678901",
		category: "thriller",
	},
	{
		slug:     "last-library",
		title:    "The Last Library",
		cover:    "https://picsum.photos/240/360?random=3",
		logline:  "In a world without books, one librarian fights to preserve human knowledge.",
		synopsis: "# The Last Library\n\nBooks are extinct. Knowledge is controlled. Maya Rodriguez guards humanity's last collection of physical books.",
		author:   "sarah_chen",
		contract: "0x3456789012345678901234567890123456789012",
		category: "literary",
	},
}

var chapterTitles = []struct {
	title string
	words int
}{
	{"The Great Escape", 3500},
	{"Bali Bound", 4200},
	{"The Coworking Conspiracy", 3800},
	{"Digital Detox", 4100},
	{"The Network Effect", 3900},
}

func seed(db *sql.DB) error {
	rng := rand.New(rand.NewSource(42))

	userIDs := map[string]string{}
	for _, u := range users {
		id, err := ensureUser(db, u)
		if err != nil {
			return err
		}
		userIDs[u.handle] = id
	}

	for _, s := range seriesData {
		var existing string
		err := db.QueryRow("SELECT id FROM series WHERE slug = ?", s.slug).Scan(&existing)
		if err == nil {
			log.Printf("series %q already present, skipping", s.slug)
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check series: %w", err)
		}

		seriesID := uuid.New().String()
		_, err = db.Exec(`
			INSERT INTO series (id, slug, title, cover_url, logline, synopsis_md, author_id, contract, token_id, category)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
			seriesID, s.slug, s.title, s.cover, s.logline, s.synopsis, userIDs[s.author], s.contract, s.category,
		)
		if err != nil {
			return fmt.Errorf("insert series %q: %w", s.slug, err)
		}

		for i, ch := range chapterTitles {
			status := "coming"
			switch {
			case i < 2:
				status = "live"
			case i == 2:
				status = "draft"
			}

			remaining := 500
			if status == "live" {
				remaining = rng.Intn(400) + 50
			}

			body := ""
			draft := ""
			if status == "live" {
				body = fmt.Sprintf("# %s\n\nDemo chapter body for %s.", ch.title, s.title)
			} else if status == "draft" {
				draft = fmt.Sprintf("# %s\n\nDraft in progress.", ch.title)
			}

			_, err = db.Exec(`
				INSERT INTO chapters (id, series_id, idx, title, word_count, status, price_eth, supply, remaining, token_id, draft_md, body_md)
				VALUES (?, ?, ?, ?, ?, ?, 0.002, 500, ?, ?, ?, ?)`,
				uuid.New().String(), seriesID, i+1, ch.title, ch.words, status, remaining, i+2, draft, body,
			)
			if err != nil {
				return fmt.Errorf("insert chapter %q: %w", ch.title, err)
			}
		}
		log.Printf("seeded series %q with %d chapters", s.slug, len(chapterTitles))
	}

	return nil
}

func ensureUser(db *sql.DB, u seedUser) (string, error) {
	var id string
	err := db.QueryRow("SELECT id FROM users WHERE handle = ?", u.handle).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("check user: %w", err)
	}

	id = uuid.New().String()
	_, err = db.Exec(
		"INSERT INTO users (id, handle, avatar_url, about) VALUES (?, ?, ?, ?)",
		id, u.handle, u.avatar, u.about,
	)
	if err != nil {
		return "", fmt.Errorf("insert user %q: %w", u.handle, err)
	}
	return id, nil
}
