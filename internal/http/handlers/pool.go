package handlers

import (
	"net/http"

	"creatememe/internal/service"

	"github.com/gin-gonic/gin"
)

type createPoolRequest struct {
	TokenID       int64  `json:"token_id" binding:"required"`
	QuoteMint     string `json:"quote_mint"`
	BaseAmount    int64  `json:"base_amount" binding:"required"`
	QuoteLamports int64  `json:"quote_lamports" binding:"required"`
	Signature     string `json:"signature" binding:"required"`
	Payer         string `json:"payer" binding:"required"`
}

func (h *Handler) CreatePool(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req createPoolRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Pools.Create(c.Request.Context(), userID, service.CreatePoolInput{
		TokenID:       req.TokenID,
		QuoteMint:     req.QuoteMint,
		BaseAmount:    req.BaseAmount,
		QuoteLamports: req.QuoteLamports,
		Signature:     req.Signature,
		Payer:         req.Payer,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// RugPull is a demo state change; nothing happens on chain.
func (h *Handler) RugPull(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	poolID, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.Pools.RugPull(c.Request.Context(), userID, poolID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) TokenPools(c *gin.Context) {
	t, err := h.Tokens.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.Pools.ListByToken(c.Request.Context(), t.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, int64(len(out)))
}

func (h *Handler) MyPools(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	out, err := h.Pools.ListByCreator(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, int64(len(out)))
}
