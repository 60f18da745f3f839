package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/malawadd/qisati/pkg/apperr"
	"github.com/malawadd/qisati/pkg/models"
)

const CtxPrincipalKey = "auth_principal"

// Principal is the resolved calling identity for one request. It is built
// once by the middleware; handlers never re-read ambient session state.
type Principal struct {
	SessionID string
	User      models.User
}

// SessionMiddleware resolves the bearer session id into a Principal. The
// session id travels in "Authorization: Bearer <id>" or "X-Session-ID".
func SessionMiddleware(repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := sessionIDFrom(c)
		session, err := repo.ResolveSession(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": apperr.ErrUnauthenticated.Error()})
			c.Abort()
			return
		}

		user, err := repo.GetUserByID(c.Request.Context(), session.UserID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": apperr.ErrUnauthenticated.Error()})
			c.Abort()
			return
		}

		c.Set(CtxPrincipalKey, &Principal{SessionID: session.ID, User: *user})
		c.Next()
	}
}

func sessionIDFrom(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return strings.TrimSpace(c.GetHeader("X-Session-ID"))
}

func MustGetPrincipal(c *gin.Context) *Principal {
	v, ok := c.Get(CtxPrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}
