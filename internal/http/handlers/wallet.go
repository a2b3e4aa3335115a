package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type linkWalletRequest struct {
	Address string `json:"address" binding:"required"`
	Label   string `json:"label" binding:"max=64"`
}

// LinkWallet answers 201 for a new link and 200 when the wallet was
// already linked to the caller.
func (h *Handler) LinkWallet(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req linkWalletRequest
	if !bindJSON(c, &req) {
		return
	}
	w, created, err := h.Wallets.Link(c.Request.Context(), userID, req.Address, req.Label)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, w)
}

func (h *Handler) MyWallets(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	out, err := h.Wallets.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, int64(len(out)))
}

func (h *Handler) SetPrimaryWallet(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	walletID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Wallets.SetPrimary(c.Request.Context(), userID, walletID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) DisconnectWallet(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	walletID, ok := paramID(c, "id")
	if !ok {
		return
	}
	w, err := h.Wallets.Disconnect(c.Request.Context(), userID, walletID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) RefreshWalletBalance(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	walletID, ok := paramID(c, "id")
	if !ok {
		return
	}
	w, err := h.Wallets.RefreshBalance(c.Request.Context(), userID, walletID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}
