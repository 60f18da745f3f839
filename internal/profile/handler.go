package profile

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/malawadd/qisati/internal/auth"
	"github.com/malawadd/qisati/internal/series"
)

type Handler struct {
	Repo   *Repo
	Auth   *auth.Repo
	Series *series.Repo
}

func NewHandler(repo *Repo, authRepo *auth.Repo, seriesRepo *series.Repo) *Handler {
	return &Handler{Repo: repo, Auth: authRepo, Series: seriesRepo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, sessions gin.HandlerFunc) {
	r.GET("/profiles/handle-available", sessions, h.handleAvailable)
	r.GET("/profiles/:handle", h.get)
	r.PUT("/profiles/me", sessions, h.update)
	r.POST("/profiles/:handle/follow", sessions, h.follow)
}

func (h *Handler) get(c *gin.Context) {
	u, err := h.Auth.GetUserByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	ctx := c.Request.Context()
	followers, err := h.Repo.FollowerCount(ctx, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	following, err := h.Repo.FollowingCount(ctx, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	seriesList, err := h.Series.ListByAuthor(ctx, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	items := make([]gin.H, 0, len(seriesList))
	for _, s := range seriesList {
		items = append(items, gin.H{
			"id":        s.ID,
			"slug":      s.Slug,
			"title":     s.Title,
			"logline":   s.Logline,
			"cover_url": s.CoverURL,
			"category":  s.Category,
		})
	}

	resp := gin.H{
		"handle":     u.Handle,
		"avatar_url": u.AvatarURL,
		"about":      u.About,
		"followers":  followers,
		"following":  following,
		"series":     items,
	}

	// Viewer-relative follow state when a session is present.
	if p := auth.MustGetPrincipal(c); p != nil {
		isFollowing, err := h.Repo.IsFollowing(ctx, p.User.ID, u.ID)
		if err == nil {
			resp["viewer_following"] = isFollowing
			resp["is_self"] = p.User.ID == u.ID
		}
	}

	c.JSON(http.StatusOK, resp)
}

type updateReq struct {
	Handle    string `json:"handle"`
	About     string `json:"about"`
	AvatarURL string `json:"avatar_url"`
}

func (h *Handler) update(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Handle = strings.TrimSpace(req.Handle)
	if req.Handle == "" {
		req.Handle = p.User.Handle
	}
	if !ValidHandle(req.Handle) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle must be 3-20 letters, digits or underscores"})
		return
	}

	ctx := c.Request.Context()
	free, err := h.Repo.HandleAvailable(ctx, req.Handle, p.User.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !free {
		c.JSON(http.StatusConflict, gin.H{"error": "handle already taken"})
		return
	}

	params := UpdateParams{
		Handle:    req.Handle,
		About:     req.About,
		AvatarURL: req.AvatarURL,
	}
	if params.AvatarURL == "" {
		params.AvatarURL = p.User.AvatarURL
	}
	if err := h.Repo.UpdateProfile(ctx, p.User.ID, params); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	u, err := h.Auth.GetUserByID(ctx, p.User.ID)
	if err != nil || u == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) handleAvailable(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	handle := strings.TrimSpace(c.Query("handle"))
	if !ValidHandle(handle) {
		c.JSON(http.StatusOK, gin.H{"available": false, "reason": "invalid"})
		return
	}

	free, err := h.Repo.HandleAvailable(c.Request.Context(), handle, p.User.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": free})
}

func (h *Handler) follow(c *gin.Context) {
	p := auth.MustGetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	target, err := h.Auth.GetUserByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	if target.ID == p.User.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot follow yourself"})
		return
	}

	following, err := h.Repo.ToggleFollow(c.Request.Context(), p.User.ID, target.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "follow failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}
