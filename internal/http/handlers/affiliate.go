package handlers

import (
	"net/http"
	"strings"

	"creatememe/internal/domain"

	"github.com/gin-gonic/gin"
)

type applyReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

type becomeCreatorRequest struct {
	PromoCode string `json:"promo_code" binding:"required,min=3,max=32"`
}

// ApplyReferral attributes an existing account to a creator. A user that
// already has a referrer gets 409.
func (h *Handler) ApplyReferral(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req applyReferralRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Affiliates.AttributeReferral(c.Request.Context(), userID, req.Code); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) BecomeCreator(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req becomeCreatorRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Affiliates.BecomeCreator(c.Request.Context(), userID, req.PromoCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": u,
		"link": h.referralLink(u),
	})
}

func (h *Handler) referralLink(u *domain.User) string {
	if u == nil || u.PromoCode == nil {
		return ""
	}
	return strings.TrimRight(h.BaseURL, "/") + "/api/v1/r/" + *u.PromoCode
}

func (h *Handler) AffiliateStats(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	st, err := h.Affiliates.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) AffiliateEarnings(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	status := domain.EarningStatus(c.Query("status"))
	out, total, err := h.Affiliates.ListEarnings(c.Request.Context(), userID, status, pageFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, total)
}
