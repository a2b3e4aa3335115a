package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) TrendingList(c *gin.Context) {
	out, err := h.Trending.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, int64(len(out)))
}

func (h *Handler) TrendingToken(c *gin.Context) {
	t, err := h.Trending.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
