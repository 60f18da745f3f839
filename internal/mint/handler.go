package mint

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/malawadd/qisati/internal/auth"
	"github.com/malawadd/qisati/pkg/apperr"
)

type Handler struct {
	Ledger *Ledger
}

func NewHandler(ledger *Ledger) *Handler {
	return &Handler{Ledger: ledger}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, sessions gin.HandlerFunc) {
	r.POST("/chapters/:id/mint", sessions, h.mint)
	r.POST("/chapters/:id/collect", sessions, h.collect)
	r.POST("/rewards/withdraw", sessions, h.withdraw)
	r.GET("/txs/pending", sessions, h.pending)
}

// EditionSize accepts a positive integer or the string "unlimited".
type EditionSize int

func (s *EditionSize) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.Trim(b, `"`), []byte("unlimited")) {
		*s = UnlimitedSupply
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = EditionSize(n)
	return nil
}

type mintReq struct {
	Size   EditionSize `json:"size"`
	Price  float64     `json:"price"`
	Splits []Split     `json:"splits"`
}

func (h *Handler) mint(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req mintReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Size <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size must be positive or \"unlimited\""})
		return
	}
	if req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be non-negative"})
		return
	}
	if err := validateSplits(req.Splits); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Ledger.Mint(c.Request.Context(), p.User.ID, c.Param("id"), int(req.Size), req.Price, req.Splits)
	if err != nil {
		respondErr(c, err, "mint failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) collect(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.Ledger.Collect(c.Request.Context(), p.User.ID, c.Param("id"))
	if err != nil {
		respondErr(c, err, "collect failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) withdraw(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Ledger.Withdraw(c.Request.Context(), p.User.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "withdraw failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) pending(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	txs, err := h.Ledger.Txs.ListByUser(c.Request.Context(), p.User.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": txs})
}

func respondErr(c *gin.Context, err error, fallback string) {
	if apperr.Known(err) {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
