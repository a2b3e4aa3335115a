package handlers

import (
	"net/http"
	"strconv"

	"creatememe/internal/apperr"
	"creatememe/internal/domain"
	"creatememe/internal/logger"
	"creatememe/internal/service"
	"creatememe/internal/validation"

	"github.com/gin-gonic/gin"
)

// Handler serves the JSON API on top of the services.
type Handler struct {
	Auth          *service.AuthService
	Payments      *service.PaymentService
	Affiliates    *service.AffiliateService
	Subscriptions *service.SubscriptionService
	Trending      *service.TrendingService
	Tokens        *service.TokenService
	Pools         *service.PoolService
	Wallets       *service.WalletService
	Admin         *service.AdminService
	Blog          *service.BlogService

	Fees    service.FeeSchedule
	Network string
	// BaseURL is where referral links land.
	BaseURL string
	// SecureCookies sets the Secure flag on the referral cookie.
	SecureCookies bool
}

// getUserID extracts user_id from the gin context
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// mustUserID writes 401 and returns false when the route ran without JWT.
func mustUserID(c *gin.Context) (int64, bool) {
	id, ok := getUserID(c)
	if !ok || id == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}
	return id, true
}

// respondError maps service errors to their HTTP status. Only internal
// failures are logged; their cause never reaches the client.
func respondError(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal(err)
	}
	status := e.Status()
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			"route", c.FullPath(),
			"status", status,
			"error", err,
		)
	}
	c.JSON(status, gin.H{"error": e.Message})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}

func pageFrom(c *gin.Context) domain.Page {
	return domain.Page{Limit: queryInt(c, "limit"), Offset: queryInt(c, "offset")}
}

func list[T any](c *gin.Context, items []T, total int64) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}
