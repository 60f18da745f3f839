package series

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/malawadd/qisati/internal/auth"
	"github.com/malawadd/qisati/pkg/apperr"
	"github.com/malawadd/qisati/pkg/models"
)

type Handler struct {
	Repo *Repo
	Auth *auth.Repo
}

func NewHandler(repo *Repo, authRepo *auth.Repo) *Handler {
	return &Handler{Repo: repo, Auth: authRepo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, sessions gin.HandlerFunc) {
	r.GET("/explore", h.explore)
	r.GET("/series/:slug", h.bySlug)
	r.PUT("/series/:id/title", sessions, h.updateTitle)
}

func (h *Handler) explore(c *gin.Context) {
	q := ExploreQuery{
		Page:            parseInt(c.Query("page"), 1),
		Category:        c.Query("category"),
		Search:          c.Query("search"),
		IncludeUnminted: c.Query("include_unminted") == "true",
	}
	if q.Category != "" && !models.ValidCategory(q.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	items, total, err := h.Repo.Explore(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "explore failed"})
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, s := range items {
		card, err := h.card(c, s)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "explore failed"})
			return
		}
		out = append(out, card)
	}

	c.JSON(http.StatusOK, gin.H{
		"page":      q.Page,
		"page_size": PageSize,
		"total":     total,
		"items":     out,
	})
}

func (h *Handler) card(c *gin.Context, s models.Series) (gin.H, error) {
	ctx := c.Request.Context()

	author, err := h.Auth.GetUserByID(ctx, s.AuthorID)
	if err != nil {
		return nil, err
	}
	name, avatar := "Unknown", ""
	if author != nil {
		name, avatar = author.Handle, author.AvatarURL
	}

	chapters, err := h.Repo.ChapterSummaries(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	var current, totalSupply int
	floor := 0.0
	for _, ch := range chapters {
		current += ch.Remaining
		totalSupply += ch.Supply
		if ch.Status == models.StatusLive && (floor == 0 || ch.PriceEth < floor) {
			floor = ch.PriceEth
		}
	}
	if floor == 0 {
		floor = models.DefaultPriceEth
	}

	return gin.H{
		"id":     s.ID,
		"slug":   s.Slug,
		"title":  s.Title,
		"author": gin.H{"name": name, "avatar": avatar},
		"cover":  s.CoverURL,
		"price":  fmt.Sprintf("%g ETH", floor),
		"supply": models.SupplyView{Current: current, Total: totalSupply},
	}, nil
}

func (h *Handler) bySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	s, err := h.Repo.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	author, err := h.Auth.GetUserByID(c.Request.Context(), s.AuthorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	authorView := gin.H{"name": "Unknown", "bio": "", "avatar": ""}
	if author != nil {
		authorView = gin.H{"name": author.Handle, "bio": author.About, "avatar": author.AvatarURL}
	}

	chapters, err := h.Repo.ChapterSummaries(c.Request.Context(), s.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}

	chapterViews := make([]gin.H, 0, len(chapters))
	for _, ch := range chapters {
		chapterViews = append(chapterViews, gin.H{
			"id":         ch.ID,
			"index":      ch.Index,
			"title":      ch.Title,
			"word_count": ch.WordCount,
			"status":     ch.Status,
			"price":      fmt.Sprintf("%g ETH", ch.PriceEth),
			"supply":     models.SupplyView{Current: ch.Remaining, Total: ch.Supply},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       s.ID,
		"slug":     s.Slug,
		"title":    s.Title,
		"logline":  s.Logline,
		"synopsis": s.SynopsisMd,
		"category": s.Category,
		"cover":    s.CoverURL,
		"author":   authorView,
		"chapters": chapterViews,
	})
}

type updateTitleReq struct {
	Title string `json:"title"`
}

func (h *Handler) updateTitle(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateTitleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	s, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": apperr.ErrNotFound.Error()})
		return
	}

	if err := auth.RequireOwner(p, s.AuthorID); err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	if err := h.Repo.UpdateTitle(c.Request.Context(), s.ID, title); err != nil {
		if apperr.Known(err) {
			c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
