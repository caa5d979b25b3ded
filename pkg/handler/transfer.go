package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crosspay_back/models"
)

// Перевод с ончейн-кошелька: возвращает запись в статусе submitted,
// подтверждение приходит асинхронно через reconcile
func (h *Handler) Transfer(c *gin.Context) {
	var input models.TransferInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := h.service.TransferCoordinator.Transfer(c.Request.Context(), currentScope(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"transaction": tx,
	})
}

// Сверка статуса с сетью по хэшу; повторный вызов терминальной записи — no-op
func (h *Handler) Reconcile(c *gin.Context) {
	var input models.ReconcileInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := h.service.TransferCoordinator.Reconcile(c.Request.Context(), input.TxHash)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"transaction": tx,
	})
}

func (h *Handler) ListTransactions(c *gin.Context) {
	id, err := walletIDParam(c)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid wallet id")
		return
	}

	txs, err := h.service.TransferCoordinator.ListForWallet(c.Request.Context(), id, currentScope(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"transactions": txs,
	})
}
