package comments

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/malawadd/qisati/internal/auth"
	"github.com/malawadd/qisati/internal/chapter"
)

type Handler struct {
	Repo     *Repo
	Chapters *chapter.Repo
}

func NewHandler(repo *Repo, chapters *chapter.Repo) *Handler {
	return &Handler{Repo: repo, Chapters: chapters}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, sessions gin.HandlerFunc) {
	r.GET("/chapters/:id/comments", h.list)
	r.POST("/chapters/:id/comments", sessions, h.create)
}

type createReq struct {
	Body string `json:"body"`
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
	body := strings.TrimSpace(req.Body)
	if body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body required"})
		return
	}

	ch, err := h.Chapters.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if ch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
		return
	}

	cm, err := h.Repo.Create(c.Request.Context(), ch.ID, p.User.ID, body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create comment failed"})
		return
	}
	c.JSON(http.StatusCreated, cm)
}

func (h *Handler) list(c *gin.Context) {
	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, err := h.Repo.ListByChapter(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
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
