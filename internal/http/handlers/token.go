package handlers

import (
	"net/http"
	"time"

	"creatememe/internal/chart"
	"creatememe/internal/service"
	"creatememe/internal/solana"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Website     string `json:"website"`
	Twitter     string `json:"twitter"`
	Telegram    string `json:"telegram"`
	Decimals    int    `json:"decimals"`
	Supply      int64  `json:"supply"`
	Address     string `json:"address" binding:"required"`
	Signature   string `json:"signature" binding:"required"`
	Payer       string `json:"payer" binding:"required"`
}

func (r tokenRequest) input() service.CreateTokenInput {
	return service.CreateTokenInput{
		Name:        r.Name,
		Symbol:      r.Symbol,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Website:     r.Website,
		Twitter:     r.Twitter,
		Telegram:    r.Telegram,
		Decimals:    r.Decimals,
		Supply:      r.Supply,
		Address:     r.Address,
		Signature:   r.Signature,
		Payer:       r.Payer,
	}
}

type cloneTokenRequest struct {
	tokenRequest
	Source string `json:"source" binding:"required"`
}

func (h *Handler) CreateToken(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req tokenRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Tokens.Create(c.Request.Context(), userID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// CloneToken copies a trending token's metadata into a new token. Empty
// fields are filled from the source.
func (h *Handler) CloneToken(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req cloneTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Tokens.Clone(c.Request.Context(), userID, req.Source, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) revoke(c *gin.Context, authority service.Authority) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	tokenID, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := h.Tokens.Revoke(c.Request.Context(), userID, tokenID, authority)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) RevokeMint(c *gin.Context) {
	h.revoke(c, service.AuthorityMint)
}

func (h *Handler) RevokeFreeze(c *gin.Context) {
	h.revoke(c, service.AuthorityFreeze)
}

func (h *Handler) GetToken(c *gin.Context) {
	t, err := h.Tokens.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) RecentTokens(c *gin.Context) {
	out, err := h.Tokens.ListRecent(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, int64(len(out)))
}

func (h *Handler) MyTokens(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	out, err := h.Tokens.ListByCreator(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, int64(len(out)))
}

// TokenChart returns the simulated candle history for any token address.
func (h *Handler) TokenChart(c *gin.Context) {
	address := c.Param("address")
	if err := solana.ValidateAddress(address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token address"})
		return
	}

	interval := chart.DefaultInterval
	if raw := c.Query("interval"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval"})
			return
		}
		interval = d
	}
	points, interval := chart.Normalize(queryInt(c, "points"), interval)

	c.JSON(http.StatusOK, gin.H{
		"address":  address,
		"interval": interval.String(),
		"candles":  chart.Series(address, points, interval, time.Now()),
	})
}
