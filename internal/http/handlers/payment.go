package handlers

import (
	"net/http"

	"creatememe/internal/domain"
	"creatememe/internal/service"

	"github.com/gin-gonic/gin"
)

type verifyPaymentRequest struct {
	Signature string `json:"signature" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=token_creation pool_creation token_clone"`
	Payer     string `json:"payer" binding:"required"`
	Memo      string `json:"memo"`
}

// Config exposes what a client needs to build payments.
func (h *Handler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"network":  h.Network,
		"treasury": h.Payments.Treasury(),
		"fees":     h.Fees,
		"plans":    h.Subscriptions.Plans(),
	})
}

// VerifyPayment checks a one-off fee payment before the client submits the
// create request that spends it. Nothing is recorded here. The amount comes
// from the fee schedule, never from the request.
func (h *Handler) VerifyPayment(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req verifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	txType := domain.TransactionType(req.Type)
	amount, ok := h.Fees.For(txType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported payment type"})
		return
	}

	tx, err := h.Payments.Check(c.Request.Context(), userID, service.PaymentRequest{
		Signature:        req.Signature,
		Type:             txType,
		ExpectedLamports: amount,
		Payer:            req.Payer,
		Memo:             req.Memo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"signature":       tx.Signature,
		"type":            tx.Type,
		"amount_lamports": tx.AmountLamports,
		"status":          tx.Status,
	})
}

func (h *Handler) MyTransactions(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	out, total, err := h.Payments.ListForUser(c.Request.Context(), userID, pageFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, total)
}
