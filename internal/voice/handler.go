package voice

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/malawadd/qisati/internal/auth"
	"github.com/malawadd/qisati/pkg/apperr"
	"github.com/malawadd/qisati/pkg/models"
)

type Handler struct {
	Repo      *Repo
	Generator *Generator
}

func NewHandler(repo *Repo, generator *Generator) *Handler {
	return &Handler{Repo: repo, Generator: generator}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, sessions gin.HandlerFunc) {
	r.GET("/voices", sessions, h.list)
	r.POST("/voices", sessions, h.save)
	r.DELETE("/voices/:id", sessions, h.delete)
	r.POST("/chapters/:id/audio", sessions, h.generate)
	r.GET("/chapters/:id/audio", h.segments)
}

func (h *Handler) list(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	voices, err := h.Repo.ListByUser(c.Request.Context(), p.User.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": voices})
}

type saveReq struct {
	VoiceID      string `json:"voice_id"` // empty means create
	Name         string `json:"name"`
	Preset       string `json:"preset"`
	Instructions string `json:"instructions"`
	Description  string `json:"description"`
}

// save creates a character voice, or updates one when voice_id is given.
func (h *Handler) save(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req saveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	if !models.ValidVoicePreset(req.Preset) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid voice preset"})
		return
	}

	if req.VoiceID != "" {
		existing, err := h.Repo.GetByID(c.Request.Context(), req.VoiceID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
			return
		}
		if existing == nil || existing.UserID != p.User.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
			return
		}

		existing.Name = req.Name
		existing.VoiceID = req.Preset
		existing.Instructions = req.Instructions
		existing.Description = req.Description
		if err := h.Repo.Update(c.Request.Context(), *existing); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		c.JSON(http.StatusOK, existing)
		return
	}

	v, err := h.Repo.Create(c.Request.Context(), models.CharacterVoice{
		UserID:       p.User.ID,
		Name:         req.Name,
		VoiceID:      req.Preset,
		Instructions: req.Instructions,
		Description:  req.Description,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) delete(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	v, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if v == nil || v.UserID != p.User.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		return
	}

	if _, err := h.Repo.Delete(c.Request.Context(), v.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type generateReq struct {
	Segments []SegmentInput `json:"segments"`
}

func (h *Handler) generate(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(req.Segments) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "segments required"})
		return
	}

	res, err := h.Generator.Generate(c.Request.Context(), p.User.ID, c.Param("id"), req.Segments)
	if err != nil {
		if apperr.Known(err) {
			c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generation failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) segments(c *gin.Context) {
	items, err := h.Repo.ListSegments(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
