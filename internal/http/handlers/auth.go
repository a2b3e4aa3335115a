package handlers

import (
	"net/http"
	"strings"
	"time"

	"creatememe/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	referralCookie    = "ref"
	referralCookieAge = 30 * 24 * 60 * 60
)

type googleLoginRequest struct {
	IDToken      string `json:"id_token" binding:"required"`
	ReferralCode string `json:"referral_code"`
}

type credentialsLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type walletNonceRequest struct {
	Address string `json:"address" binding:"required"`
}

type walletLoginRequest struct {
	Address      string    `json:"address" binding:"required"`
	Nonce        string    `json:"nonce" binding:"required"`
	IssuedAt     time.Time `json:"issued_at" binding:"required"`
	Signature    string    `json:"signature" binding:"required"`
	ReferralCode string    `json:"referral_code"`
}

// referralCode prefers the code sent in the body, then the cookie set by
// the /r/:code landing link.
func referralCode(c *gin.Context, fromBody string) string {
	if code := strings.TrimSpace(fromBody); code != "" {
		return code
	}
	code, _ := c.Cookie(referralCookie)
	return code
}

func (h *Handler) GoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.GoogleLogin(c.Request.Context(), req.IDToken, referralCode(c, req.ReferralCode))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CredentialsLogin(c *gin.Context) {
	var req credentialsLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.CredentialsLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) WalletNonce(c *gin.Context) {
	var req walletNonceRequest
	if !bindJSON(c, &req) {
		return
	}
	challenge, err := h.Auth.WalletNonce(c.Request.Context(), req.Address)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

func (h *Handler) WalletLogin(c *gin.Context) {
	var req walletLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.WalletLogin(c.Request.Context(), service.WalletLoginInput{
		Address:   req.Address,
		Nonce:     req.Nonce,
		IssuedAt:  req.IssuedAt,
		Signature: req.Signature,
		Referral:  referralCode(c, req.ReferralCode),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	u, err := h.Auth.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// ReferralRedirect remembers a creator's code in a cookie and sends the
// visitor to the site. Malformed codes are dropped silently.
func (h *Handler) ReferralRedirect(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if service.ValidPromoCode(code) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(referralCookie, code, referralCookieAge, "/", "", h.SecureCookies, true)
	}
	target := h.BaseURL
	if target == "" {
		target = "/"
	}
	c.Redirect(http.StatusFound, target)
}
