package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"creatememe/internal/domain"
	"creatememe/internal/repository"
	"creatememe/internal/service"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWT. CtxUser holds the *domain.User read for the
// request when JWT runs with an AccountLookup.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxUser   = "user"
)

type SessionParser interface {
	Parse(token string) (service.Session, error)
}

// AccountLookup re-reads the caller so banned or demoted accounts lose
// access before their token expires.
type AccountLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// loadAccount reads the caller and aborts unless the account is active.
func loadAccount(c *gin.Context, accounts AccountLookup, userID int64) (*domain.User, bool) {
	u, err := accounts.GetByID(c.Request.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return nil, false
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	if !u.Active() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is " + string(u.Status)})
		return nil, false
	}
	return u, true
}

// JWT requires a valid session token and stores user_id and role in the
// gin context. With accounts set, the account must still exist and be
// active, and the stored role is the current one rather than the claim.
func JWT(sessions SessionParser, accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		sess, err := sessions.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		role := sess.Role
		if accounts != nil {
			u, ok := loadAccount(c, accounts, sess.UserID)
			if !ok {
				return
			}
			role = u.Role
			c.Set(CtxUser, u)
		}
		c.Set(CtxUserID, sess.UserID)
		c.Set(CtxRole, role)
		c.Next()
	}
}

// RequireAdmin must run after JWT. The handler chain stops with 401 when no
// session is present and 403 for anyone who is not an active admin.
func RequireAdmin(accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := c.Get(CtxUserID)
		userID, _ := uid.(int64)
		if !ok || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		if role, _ := c.Get(CtxRole); role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		v, _ := c.Get(CtxUser)
		u, _ := v.(*domain.User)
		if u == nil && accounts != nil {
			if u, ok = loadAccount(c, accounts, userID); !ok {
				return
			}
		}
		if u != nil && !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
