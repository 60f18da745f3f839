package chapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/malawadd/qisati/internal/auth"
	"github.com/malawadd/qisati/internal/series"
	"github.com/malawadd/qisati/pkg/apperr"
	"github.com/malawadd/qisati/pkg/models"
)

type Handler struct {
	Repo   *Repo
	Series *series.Repo
}

func NewHandler(repo *Repo, seriesRepo *series.Repo) *Handler {
	return &Handler{Repo: repo, Series: seriesRepo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, sessions gin.HandlerFunc) {
	r.POST("/chapters", sessions, h.create)
	r.GET("/chapters/:id", h.get)
	r.GET("/chapters/:id/navigation", h.navigation)
	r.PUT("/chapters/:id/draft", sessions, h.saveDraft)
	r.POST("/chapters/:id/publish", sessions, h.publish)
	r.PUT("/chapters/:id/title", sessions, h.updateTitle)
}

type createReq struct {
	Title    string `json:"title"`
	SeriesID string `json:"series_id"`
}

func (h *Handler) create(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	ctx := c.Request.Context()
	var target *models.Series
	var err error

	if req.SeriesID != "" {
		target, err = h.Series.GetByID(ctx, req.SeriesID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get series failed"})
			return
		}
		if target == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "series not found"})
			return
		}
		if err := auth.RequireOwner(p, target.AuthorID); err != nil {
			c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
			return
		}
	} else {
		// no target series: lazily create a default one for the caller
		target, err = h.Series.CreateDefault(ctx, p.User.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create series failed"})
			return
		}
	}

	ch, err := h.Repo.Create(ctx, target.ID, title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create chapter failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"chapter_id": ch.ID,
		"series_id":  target.ID,
		"chapter":    ch,
	})
}

func (h *Handler) get(c *gin.Context) {
	ch, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if ch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	content := ch.BodyMd
	if content == "" {
		content = "Draft not published yet."
	}

	comments, err := h.Repo.CountComments(c.Request.Context(), ch.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         ch.ID,
		"series_id":  ch.SeriesID,
		"index":      ch.Index,
		"title":      ch.Title,
		"word_count": ch.WordCount,
		"status":     ch.Status,
		"content":    content,
		"price":      fmt.Sprintf("%g ETH", ch.PriceEth),
		"supply":     models.SupplyView{Current: ch.Remaining, Total: ch.Supply},
		"token_id":   ch.TokenID,
		"comments":   comments,
	})
}

func (h *Handler) navigation(c *gin.Context) {
	ch, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if ch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	prev, next, err := h.Repo.Navigation(c.Request.Context(), ch.SeriesID, ch.Index)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "navigation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"previous": prev, "next": next})
}

type saveDraftReq struct {
	Markdown string `json:"markdown"`
}

func (h *Handler) saveDraft(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req saveDraftReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ch, err := h.requireOwned(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondErr(c, err)
		return
	}

	if err := h.Repo.SaveDraft(c.Request.Context(), ch.ID, req.Markdown); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *Handler) publish(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ch, err := h.requireOwned(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondErr(c, err)
		return
	}

	if err := h.Repo.Publish(c.Request.Context(), ch.ID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "published"})
}

func (h *Handler) updateTitle(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	ch, err := h.requireOwned(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondErr(c, err)
		return
	}

	if err := h.Repo.UpdateTitle(c.Request.Context(), ch.ID, title); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// requireOwned loads a chapter and checks ownership transitively through the
// parent series.
func (h *Handler) requireOwned(ctx context.Context, chapterID string, p *auth.Principal) (*models.Chapter, error) {
	ch, err := h.Repo.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, apperr.ErrNotFound
	}

	s, err := h.Series.GetByID(ctx, ch.SeriesID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.RequireOwner(p, s.AuthorID); err != nil {
		return nil, err
	}
	return ch, nil
}

func respondErr(c *gin.Context, err error) {
	if apperr.Known(err) {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
}
