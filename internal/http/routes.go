package http

import (
	"creatememe/internal/config"
	"creatememe/internal/http/handlers"
	"creatememe/internal/http/middleware"
	"creatememe/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs from main.
type Deps struct {
	Config   *config.Config
	Handler  *handlers.Handler
	Health   *handlers.HealthHandler
	Sessions middleware.SessionParser
	Accounts middleware.AccountLookup
	Hub      *ws.Hub
}

// NewRouter builds the engine with the global middleware and every route.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
	}))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := d.Handler
	cfg := d.Config

	// Health checks and metrics (no rate limiting)
	r.GET("/health", d.Health.Readiness)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Live chart stream
	r.GET("/ws/chart/:address", ws.HandleChart(d.Hub, cfg.WSAllowedOrigin))

	// Scheduler hook; GET for hosted cron services that cannot POST
	cron := r.Group("/api/cron", middleware.CronSecret(cfg.CronSecret))
	cron.POST("/subscriptions", h.CronRenewSubscriptions)
	cron.GET("/subscriptions", h.CronRenewSubscriptions)

	jwt := middleware.JWT(d.Sessions, d.Accounts)
	authRL := middleware.RateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit("api", cfg.APIRateLimit, cfg.APIRateWindow))

	// Public
	v1.GET("/config", h.Config)
	v1.GET("/plans", h.Plans)
	v1.GET("/trending", h.TrendingList)
	v1.GET("/trending/:address", h.TrendingToken)
	v1.GET("/tokens", h.RecentTokens)
	v1.GET("/tokens/:address", h.GetToken)
	v1.GET("/tokens/:address/chart", h.TokenChart)
	v1.GET("/tokens/:address/pools", h.TokenPools)
	v1.GET("/r/:code", h.ReferralRedirect)

	blog := v1.Group("/blog")
	{
		blog.GET("/posts", h.BlogPosts)
		blog.GET("/posts/:slug", h.BlogPost)
		blog.GET("/categories", h.BlogCategories)
		blog.GET("/tags", h.BlogTags)
	}

	// Auth
	auth := v1.Group("/auth", authRL)
	{
		auth.POST("/google", h.GoogleLogin)
		auth.POST("/credentials", h.CredentialsLogin)
		auth.POST("/wallet/nonce", h.WalletNonce)
		auth.POST("/wallet/login", h.WalletLogin)
	}

	// Signed-in users
	me := v1.Group("/me", jwt)
	{
		me.GET("", h.Me)
		me.GET("/transactions", h.MyTransactions)
		me.GET("/tokens", h.MyTokens)
		me.GET("/pools", h.MyPools)

		me.GET("/wallets", h.MyWallets)
		me.POST("/wallets", h.LinkWallet)
		me.POST("/wallets/:id/primary", h.SetPrimaryWallet)
		me.POST("/wallets/:id/refresh", h.RefreshWalletBalance)
		me.DELETE("/wallets/:id", h.DisconnectWallet)

		me.GET("/subscription", h.MySubscription)
		me.POST("/subscription", h.Subscribe)
		me.PUT("/subscription/auto-pay", h.SetAutoPay)
		me.DELETE("/subscription", h.CancelSubscription)
	}

	v1.POST("/payments/verify", jwt, h.VerifyPayment)

	tokens := v1.Group("/tokens", jwt)
	{
		tokens.POST("", h.CreateToken)
		tokens.POST("/clone", h.CloneToken)
		tokens.POST("/id/:id/revoke-mint", h.RevokeMint)
		tokens.POST("/id/:id/revoke-freeze", h.RevokeFreeze)
	}

	pools := v1.Group("/pools", jwt)
	{
		pools.POST("", h.CreatePool)
		pools.POST("/:id/rug-pull", h.RugPull)
	}

	affiliate := v1.Group("/affiliate", jwt)
	{
		affiliate.POST("/apply", h.ApplyReferral)
		affiliate.POST("/creator", h.BecomeCreator)
		affiliate.GET("/stats", h.AffiliateStats)
		affiliate.GET("/earnings", h.AffiliateEarnings)
	}

	// Admin: JWT first so a missing session is 401, then the role check (403)
	admin := v1.Group("/admin", jwt, middleware.RequireAdmin(d.Accounts))
	{
		admin.GET("/stats", h.AdminStats)

		admin.GET("/users", h.AdminListUsers)
		admin.PATCH("/users/:id", h.AdminUpdateUser)
		admin.GET("/wallets", h.AdminListWallets)
		admin.PATCH("/wallets/:id", h.AdminUpdateWallet)

		admin.GET("/transactions", h.AdminListTransactions)
		admin.GET("/subscriptions", h.AdminListSubscriptions)
		admin.GET("/logs", h.AdminListLogs)
		admin.GET("/earnings", h.AdminListEarnings)
		admin.POST("/earnings/:id/pay", h.AdminPayEarning)

		admin.GET("/blog/posts", h.AdminListPosts)
		admin.GET("/blog/posts/:id", h.AdminGetPost)
		admin.POST("/blog/posts", h.AdminCreatePost)
		admin.PUT("/blog/posts/:id", h.AdminUpdatePost)
		admin.DELETE("/blog/posts/:id", h.AdminDeletePost)
		admin.POST("/blog/categories", h.AdminCreateCategory)
		admin.DELETE("/blog/categories/:id", h.AdminDeleteCategory)
		admin.POST("/blog/tags", h.AdminCreateTag)
		admin.DELETE("/blog/tags/:id", h.AdminDeleteTag)
	}
}
