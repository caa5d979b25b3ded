package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crosspay_back/pkg/apperr"
)

type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	logrus.Error(message)
	c.AbortWithStatusJSON(statusCode, Error{Kind: string(apperr.Internal), Message: message})
}

// abortWithError переводит вид ошибки в HTTP-статус; текст причины уходит клиенту,
// секретов в сообщениях таксономии нет
func abortWithError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	logrus.Errorf("%s: %s", kind, err)
	c.AbortWithStatusJSON(statusOf(kind), Error{Kind: string(kind), Message: err.Error()})
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.InsufficientAuthorization:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.InvalidState:
		return http.StatusUnprocessableEntity
	case apperr.RateUnavailable, apperr.BroadcastFailure:
		return http.StatusBadGateway
	case apperr.StorageConflict:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func wrapOkJSON(c *gin.Context, response map[string]interface{}) {
	c.JSON(http.StatusOK, response)
}
