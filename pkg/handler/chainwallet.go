package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crosspay_back/models"
)

// Создание EOA-кошелька; приватный ключ возвращается в ответе один раз
// и сервером больше нигде не хранится
func (h *Handler) CreateChainWallet(c *gin.Context) {
	var input models.CreateChainWalletInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.service.ChainWalletRegistry.CreateSingleKey(c.Request.Context(), currentScope(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"wallet": created,
	})
}

func (h *Handler) CreateMultisigWallet(c *gin.Context) {
	var input models.CreateMultisigInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.service.ChainWalletRegistry.CreateMultisig(c.Request.Context(), currentScope(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"wallet": created,
	})
}

func (h *Handler) GetChainWallet(c *gin.Context) {
	id, err := walletIDParam(c)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid wallet id")
		return
	}

	wallet, err := h.service.ChainWalletRegistry.Get(c.Request.Context(), id, currentScope(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"wallet": wallet,
	})
}

func (h *Handler) ListChainWallets(c *gin.Context) {
	wallets, err := h.service.ChainWalletRegistry.List(c.Request.Context(), currentScope(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"wallets": wallets,
	})
}

func (h *Handler) SetChainWalletActive(c *gin.Context) {
	id, err := walletIDParam(c)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid wallet id")
		return
	}

	var input models.SetActiveInput
	if err := c.BindJSON(&input); err != nil || input.IsActive == nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	wallet, err := h.service.ChainWalletRegistry.SetActive(c.Request.Context(), id, currentScope(c), *input.IsActive)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"wallet": wallet,
	})
}

func walletIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
