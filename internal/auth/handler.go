package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/malawadd/qisati/pkg/utils"
)

type Handler struct {
	Repo       *Repo
	Tokens     TokenService
	Verifier   Verifier
	SessionTTL time.Duration
}

func NewHandler(repo *Repo, tokens TokenService, verifier Verifier, cfg utils.AuthConfig) *Handler {
	return &Handler{Repo: repo, Tokens: tokens, Verifier: verifier, SessionTTL: cfg.SessionTTL}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/challenge", h.challenge)
	rg.POST("/login", h.login)
	rg.GET("/me", SessionMiddleware(h.Repo), h.me)
	rg.POST("/logout", SessionMiddleware(h.Repo), h.logout)
}

type challengeReq struct {
	Address string `json:"address"`
}

func (h *Handler) challenge(c *gin.Context) {
	var req challengeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	address := strings.TrimSpace(req.Address)
	if !ValidAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	token, message, exp, err := h.Tokens.Issue(address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "challenge failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"message":    message,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

type loginReq struct {
	Token     string `json:"token"`
	Signature string `json:"signature"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Token == "" || req.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and signature required"})
		return
	}

	claims, err := h.Tokens.Parse(req.Token)
	if err != nil {
		// expired or tampered challenge; don't reveal which
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid challenge"})
		return
	}

	if err := h.Verifier.Verify(claims.Address, claims.Message(), req.Signature); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	user, err := h.Repo.EnsureUser(c.Request.Context(), claims.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}

	session, err := h.Repo.CreateSession(c.Request.Context(), user.ID, claims.Address, h.SessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create session failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"user":       user,
		"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) me(c *gin.Context) {
	p := MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, p.User)
}

func (h *Handler) logout(c *gin.Context) {
	p := MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if _, err := h.Repo.DeleteSession(c.Request.Context(), p.SessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
