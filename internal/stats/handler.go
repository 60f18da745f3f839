package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/malawadd/qisati/internal/auth"
	"github.com/malawadd/qisati/internal/chapter"
	"github.com/malawadd/qisati/internal/series"
	"github.com/malawadd/qisati/pkg/models"
)

type Handler struct {
	Repo     *Repo
	Series   *series.Repo
	Chapters *chapter.Repo
}

func NewHandler(repo *Repo, seriesRepo *series.Repo, chapterRepo *chapter.Repo) *Handler {
	return &Handler{Repo: repo, Series: seriesRepo, Chapters: chapterRepo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, sessions gin.HandlerFunc) {
	r.GET("/dashboard", sessions, h.dashboard)
	r.GET("/stats/home", h.home)
}

// dashboard scans the caller's series and partitions their chapters by
// status. Earnings only count live chapters since drafts cannot sell.
func (h *Handler) dashboard(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	seriesList, err := h.Series.ListByAuthor(ctx, p.User.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard failed"})
		return
	}

	titles := make(map[string]string, len(seriesList))
	drafts := []gin.H{}
	live := []gin.H{}
	var earnings float64

	for _, s := range seriesList {
		titles[s.ID] = s.Title
		chapters, err := h.Chapters.ListBySeries(ctx, s.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard failed"})
			return
		}
		for _, ch := range chapters {
			entry := dashboardEntry(ch, s)
			switch ch.Status {
			case models.StatusLive:
				earnings += ch.PriceEth * float64(ch.Supply-ch.Remaining)
				live = append(live, entry)
			case models.StatusDraft:
				drafts = append(drafts, entry)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          p.User,
		"drafts":        drafts,
		"live_chapters": live,
		"earnings_eth":  earnings,
	})
}

func dashboardEntry(ch models.Chapter, s models.Series) gin.H {
	return gin.H{
		"id":           ch.ID,
		"series_id":    s.ID,
		"series_title": s.Title,
		"series_slug":  s.Slug,
		"index":        ch.Index,
		"title":        ch.Title,
		"status":       ch.Status,
		"word_count":   ch.WordCount,
		"price_eth":    ch.PriceEth,
		"supply":       ch.Supply,
		"remaining":    ch.Remaining,
		"created_at":   ch.CreatedAt,
	}
}

func (h *Handler) home(c *gin.Context) {
	s, err := h.Repo.Home(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stories":    FormatCount(s.Stories),
		"authors":    FormatCount(s.Authors),
		"collectors": FormatCount(s.Collectors),
		"volume":     FormatEth(s.VolumeEth),
	})
}
