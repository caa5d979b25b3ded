package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crosspay_back/models"
)

// Кошелёк с балансом в display-валюте; создаётся при первом обращении
func (h *Handler) GetWallet(c *gin.Context) {
	view, err := h.service.WalletLedger.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"wallet": view,
	})
}

// Явное создание кошелька; повторное создание — 409
func (h *Handler) CreateWallet(c *gin.Context) {
	var input models.CreateWalletInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	wallet, err := h.service.WalletLedger.Create(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"wallet": wallet,
	})
}

// Пополнение фиата; валюта не в базовой — конвертируется по свежему курсу
func (h *Handler) Deposit(c *gin.Context) {
	var input models.DepositInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	wallet, err := h.service.WalletLedger.Deposit(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"message": "deposit successful",
		"wallet":  wallet,
	})
}

// Display-валюта презентационная: баланс не пересчитывается и не сохраняется
func (h *Handler) SetDisplayCurrency(c *gin.Context) {
	var input models.DisplayCurrencyInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.service.WalletLedger.SetDisplayCurrency(c.Request.Context(), currentUserID(c), input.DisplayCurrency)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"message": "display currency updated",
		"wallet":  view,
	})
}

// Конвертация фиата в стейблкоин внутри кошелька
func (h *Handler) ConvertToStablecoin(c *gin.Context) {
	var input models.ConvertInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	wallet, err := h.service.WalletLedger.ConvertToStablecoin(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"message": "conversion successful",
		"wallet":  wallet,
	})
}
