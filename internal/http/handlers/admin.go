package handlers

import (
	"net/http"
	"strconv"

	"creatememe/internal/domain"
	"creatememe/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AdminStats(c *gin.Context) {
	st, err := h.Admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) AdminListUsers(c *gin.Context) {
	page := pageFrom(c)
	out, total, err := h.Admin.ListUsers(c.Request.Context(), domain.UserFilter{
		Role:   domain.Role(c.Query("role")),
		Status: domain.UserStatus(c.Query("status")),
		Search: c.Query("q"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, total)
}

func (h *Handler) AdminUpdateUser(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.UserUpdate
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Admin.UpdateUser(c.Request.Context(), adminID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) AdminListWallets(c *gin.Context) {
	out, total, err := h.Admin.ListWallets(c.Request.Context(), domain.WalletStatus(c.Query("status")), pageFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, total)
}

func (h *Handler) AdminUpdateWallet(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	walletID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.WalletUpdate
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.Admin.UpdateWallet(c.Request.Context(), adminID, walletID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) AdminListTransactions(c *gin.Context) {
	page := pageFrom(c)
	userID, _ := strconv.ParseInt(c.Query("user_id"), 10, 64)
	out, total, err := h.Admin.ListTransactions(c.Request.Context(), domain.TransactionFilter{
		UserID: userID,
		Type:   domain.TransactionType(c.Query("type")),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, total)
}

func (h *Handler) AdminListSubscriptions(c *gin.Context) {
	status := domain.SubscriptionStatus(c.Query("status"))
	out, total, err := h.Admin.ListSubscriptions(c.Request.Context(), status, pageFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, total)
}

func (h *Handler) AdminListLogs(c *gin.Context) {
	out, total, err := h.Admin.ListLogs(c.Request.Context(), pageFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, total)
}

func (h *Handler) AdminListEarnings(c *gin.Context) {
	creatorID, _ := strconv.ParseInt(c.Query("creator_id"), 10, 64)
	status := domain.EarningStatus(c.Query("status"))
	out, total, err := h.Admin.ListEarnings(c.Request.Context(), creatorID, status, pageFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, total)
}

func (h *Handler) AdminPayEarning(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	earningID, ok := paramID(c, "id")
	if !ok {
		return
	}
	e, err := h.Admin.PayEarning(c.Request.Context(), adminID, earningID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
