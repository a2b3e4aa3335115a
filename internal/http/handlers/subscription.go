package handlers

import (
	"net/http"
	"time"

	"creatememe/internal/logger"
	"creatememe/internal/service"

	"github.com/gin-gonic/gin"
)

type subscribeRequest struct {
	PlanID        string `json:"plan_id" binding:"required"`
	WalletAddress string `json:"wallet_address" binding:"required"`
	Signature     string `json:"signature" binding:"required"`
	AutoPay       bool   `json:"auto_pay"`
}

type autoPayRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (h *Handler) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Subscriptions.Plans()})
}

func (h *Handler) Subscribe(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req subscribeRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.Subscriptions.Subscribe(c.Request.Context(), userID, service.SubscribeInput{
		PlanID:        req.PlanID,
		WalletAddress: req.WalletAddress,
		Signature:     req.Signature,
		AutoPay:       req.AutoPay,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) MySubscription(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	sub, err := h.Subscriptions.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) SetAutoPay(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req autoPayRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Subscriptions.SetAutoPay(c.Request.Context(), userID, *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auto_pay": *req.Enabled})
}

func (h *Handler) CancelSubscription(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.Subscriptions.Cancel(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CronRenewSubscriptions runs one renewal pass. Guarded by the cron secret.
func (h *Handler) CronRenewSubscriptions(c *gin.Context) {
	report, err := h.Subscriptions.RenewDue(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	logger.FromContext(c.Request.Context()).Info("renewal pass finished",
		"scanned", report.Scanned,
		"renewed", report.Renewed,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	c.JSON(http.StatusOK, report)
}
