package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crosspay_back/models"
)

func (h *Handler) Login(c *gin.Context) {
	var input models.User

	if err := c.BindJSON(&input); err != nil || input.ID <= 0 {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Authorization.Login(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"user": user,
	})
}

// GetMe отдаёт пользователя из доверенного заголовка — той же идентичности,
// что и остальные защищённые маршруты
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.service.Authorization.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"user": user,
	})
}
