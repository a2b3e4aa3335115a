package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"creatememe/internal/chart"
	"creatememe/internal/config"
	"creatememe/internal/domain"
	"creatememe/internal/http/handlers"
	"creatememe/internal/repository"
	"creatememe/internal/service"
	"creatememe/internal/solana"
	"creatememe/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// usersStub implements the lookups the router needs; the embedded
// interface panics on anything else.
type usersStub struct {
	service.UserStore
	byID    map[int64]*domain.User
	updates int
}

func (u *usersStub) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if usr, ok := u.byID[id]; ok {
		return usr, nil
	}
	return nil, repository.ErrNotFound
}

func (u *usersStub) Update(_ context.Context, id int64, p domain.UserPatch) (*domain.User, error) {
	u.updates++
	usr, ok := u.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Status != nil {
		usr.Status = *p.Status
	}
	return usr, nil
}

type logsStub struct {
	service.AdminLogStore
	entries []domain.AdminLog
}

func (l *logsStub) Create(_ context.Context, e *domain.AdminLog) error {
	l.entries = append(l.entries, *e)
	return nil
}

type subsStub struct {
	service.SubscriptionStore
}

func (subsStub) ListDue(context.Context, time.Time, int) ([]domain.DueUser, error) {
	return nil, nil
}

type pingStub struct{ err error }

func (p pingStub) Ping(context.Context) error { return p.err }

type testEnv struct {
	router   *gin.Engine
	sessions *service.Sessions
	users    *usersStub
	logs     *logsStub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AppBaseURL:         "https://creatememe.test",
		CORSAllowedOrigins: []string{"https://creatememe.test"},
		CronSecret:         "cron-secret",
		APIRateLimit:       1000,
		APIRateWindow:      time.Minute,
		AuthRateLimit:      1000,
		AuthRateWindow:     time.Minute,
	}

	users := &usersStub{byID: map[int64]*domain.User{
		1: {ID: 1, Role: domain.RoleAdmin, Status: domain.UserStatusActive},
		2: {ID: 2, Role: domain.RoleUser, Status: domain.UserStatusActive},
		3: {ID: 3, Role: domain.RoleUser, Status: domain.UserStatusActive},
	}}
	logs := &logsStub{}
	sessions := service.NewSessions("test-secret", time.Hour)

	h := &handlers.Handler{
		Admin:         service.NewAdminService(users, nil, nil, nil, nil, nil, service.NewAdminLogService(logs)),
		Subscriptions: service.NewSubscriptionService(subsStub{}, nil, nil, service.DefaultPlans()),
		BaseURL:       cfg.AppBaseURL,
	}
	hub := ws.NewHub()
	t.Cleanup(hub.Close)

	r := NewRouter(Deps{
		Config:   cfg,
		Handler:  h,
		Health:   handlers.NewHealthHandler(pingStub{}, nil, "test"),
		Sessions: sessions,
		Accounts: users,
		Hub:      hub,
	})
	return &testEnv{router: r, sessions: sessions, users: users, logs: logs}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) token(t *testing.T, userID int64, role domain.Role) string {
	t.Helper()
	tok, err := e.sessions.Issue(userID, role)
	require.NoError(t, err)
	return tok
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	env := newTestEnv(t)
	body := `{"status":"banned"}`

	w := env.do(t, http.MethodPatch, "/api/v1/admin/users/3", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPatch, "/api/v1/admin/users/3", env.token(t, 2, domain.RoleUser), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// a signed admin claim for an account that is no longer admin
	w = env.do(t, http.MethodPatch, "/api/v1/admin/users/3", env.token(t, 2, domain.RoleAdmin), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/admin/stats", env.token(t, 2, domain.RoleUser), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Zero(t, env.users.updates)
	assert.Empty(t, env.logs.entries)
	assert.Equal(t, domain.UserStatusActive, env.users.byID[3].Status)
}

func TestAdminUpdateUserIsLogged(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPatch, "/api/v1/admin/users/3", env.token(t, 1, domain.RoleAdmin), `{"status":"banned"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.UserStatusBanned, env.users.byID[3].Status)
	require.Len(t, env.logs.entries, 1)
	assert.Equal(t, int64(1), env.logs.entries[0].AdminID)
	assert.Equal(t, "3", env.logs.entries[0].TargetID)

	// admins cannot ban themselves
	w = env.do(t, http.MethodPatch, "/api/v1/admin/users/1", env.token(t, 1, domain.RoleAdmin), `{"status":"banned"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, env.users.updates)
}

func TestBannedUserLosesSessionRoutes(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, 3, domain.RoleUser)

	w := env.do(t, http.MethodPatch, "/api/v1/admin/users/3", env.token(t, 1, domain.RoleAdmin), `{"status":"banned"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/me/transactions", token, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "banned")

	w = env.do(t, http.MethodGet, "/api/v1/me/transactions", env.token(t, 404, domain.RoleUser), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCronRouteRequiresSecret(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/cron/subscriptions", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/cron/subscriptions", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/cron/subscriptions", "cron-secret", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"scanned":0,"renewed":0,"skipped":0,"failed":0}`, w.Body.String())
}

func TestReferralRedirectSetsCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/r/alpha_1", "", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://creatememe.test", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "ref=ALPHA_1")

	w = env.do(t, http.MethodGet, "/api/v1/r/x", "", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestTokenChartIsDeterministic(t *testing.T) {
	env := newTestEnv(t)
	path := "/api/v1/tokens/" + solana.NativeMint + "/chart?points=5&interval=1h"

	var first, second struct {
		Interval string          `json:"interval"`
		Candles  []domain.Candle `json:"candles"`
	}
	w := env.do(t, http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	w = env.do(t, http.MethodGet, path, "", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))

	require.Len(t, first.Candles, 5)
	assert.Equal(t, "1h0m0s", first.Interval)
	assert.Equal(t, chart.NewWalk(solana.NativeMint, time.Hour).At(first.Candles[0].Time).Open, first.Candles[0].Open)
	assert.Equal(t, first.Candles[4].Close, second.Candles[4].Close)

	w = env.do(t, http.MethodGet, "/api/v1/tokens/nope/chart", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
