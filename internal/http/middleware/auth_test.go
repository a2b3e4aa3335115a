package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"creatememe/internal/domain"
	"creatememe/internal/repository"
	"creatememe/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts map[int64]*domain.User

func (f fakeAccounts) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func adminRouter(t *testing.T, accounts AccountLookup) (*gin.Engine, *service.Sessions, *int) {
	t.Helper()
	sessions := service.NewSessions("test-secret", time.Hour)
	calls := 0

	r := gin.New()
	admin := r.Group("/admin", JWT(sessions, nil), RequireAdmin(accounts))
	admin.POST("/users/:id", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, sessions, &calls
}

func postAs(r http.Handler, token string) int {
	req := httptest.NewRequest(http.MethodPost, "/admin/users/1", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireAdminRejectsWithoutRunningHandler(t *testing.T) {
	accounts := fakeAccounts{
		1: {ID: 1, Role: domain.RoleUser, Status: domain.UserStatusActive},
		2: {ID: 2, Role: domain.RoleAdmin, Status: domain.UserStatusActive},
		3: {ID: 3, Role: domain.RoleUser, Status: domain.UserStatusActive},
		4: {ID: 4, Role: domain.RoleAdmin, Status: domain.UserStatusBanned},
	}
	r, sessions, calls := adminRouter(t, accounts)

	userToken, err := sessions.Issue(1, domain.RoleUser)
	require.NoError(t, err)
	// token claims admin but the account was demoted since
	staleToken, err := sessions.Issue(3, domain.RoleAdmin)
	require.NoError(t, err)
	bannedToken, err := sessions.Issue(4, domain.RoleAdmin)
	require.NoError(t, err)
	otherSecret, err := service.NewSessions("other", time.Hour).Issue(2, domain.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, postAs(r, ""))
	assert.Equal(t, http.StatusUnauthorized, postAs(r, "not-a-jwt"))
	assert.Equal(t, http.StatusUnauthorized, postAs(r, otherSecret))
	assert.Equal(t, http.StatusForbidden, postAs(r, userToken))
	assert.Equal(t, http.StatusForbidden, postAs(r, staleToken))
	assert.Equal(t, http.StatusForbidden, postAs(r, bannedToken))
	assert.Equal(t, 0, *calls)

	adminToken, err := sessions.Issue(2, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, postAs(r, adminToken))
	assert.Equal(t, 1, *calls)
}

func TestJWTSetsContext(t *testing.T) {
	sessions := service.NewSessions("test-secret", time.Hour)
	token, err := sessions.Issue(42, domain.RoleUser)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", JWT(sessions, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64(CtxUserID), "role": c.MustGet(CtxRole)})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":42,"role":"user"}`, w.Body.String())
}

func TestJWTRechecksAccount(t *testing.T) {
	sessions := service.NewSessions("test-secret", time.Hour)
	accounts := fakeAccounts{
		1: {ID: 1, Role: domain.RoleUser, Status: domain.UserStatusActive},
		2: {ID: 2, Role: domain.RoleUser, Status: domain.UserStatusBanned},
		3: {ID: 3, Role: domain.RoleUser, Status: domain.UserStatusSuspended},
		4: {ID: 4, Role: domain.RoleAdmin, Status: domain.UserStatusActive},
	}

	r := gin.New()
	r.GET("/me", JWT(sessions, accounts), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.MustGet(CtxRole)})
	})
	get := func(userID int64, role domain.Role) *httptest.ResponseRecorder {
		token, err := sessions.Issue(userID, role)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, get(1, domain.RoleUser).Code)
	assert.Equal(t, http.StatusForbidden, get(2, domain.RoleUser).Code, "banned")
	assert.Equal(t, http.StatusForbidden, get(3, domain.RoleUser).Code, "suspended")
	assert.Equal(t, http.StatusUnauthorized, get(99, domain.RoleUser).Code, "deleted")

	w := get(4, domain.RoleUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"admin"}`, w.Body.String(), "role comes from the account")
}

func TestAdminRoutesWithAccountCheckedJWT(t *testing.T) {
	sessions := service.NewSessions("test-secret", time.Hour)
	accounts := fakeAccounts{
		1: {ID: 1, Role: domain.RoleUser, Status: domain.UserStatusActive},
		2: {ID: 2, Role: domain.RoleAdmin, Status: domain.UserStatusActive},
	}
	r := gin.New()
	r.POST("/admin/users/:id", JWT(sessions, accounts), RequireAdmin(accounts), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	stale, err := sessions.Issue(1, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, postAs(r, stale), "demoted since the token was issued")

	admin, err := sessions.Issue(2, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, postAs(r, admin))
}
