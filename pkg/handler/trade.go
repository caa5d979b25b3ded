package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crosspay_back/models"
)

// Запись сделки в журнал; курс без значения фиксируется по текущему
func (h *Handler) RecordTrade(c *gin.Context) {
	var input models.RecordTradeInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	trade, err := h.service.TradeLedger.Record(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"trade": trade,
	})
}

func (h *Handler) ListTrades(c *gin.Context) {
	trades, err := h.service.TradeLedger.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"trades": trades,
	})
}
