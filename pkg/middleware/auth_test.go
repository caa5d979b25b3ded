package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedIdentity struct {
	userID int64
	teamID *int64
}

func identityRouter(captured *capturedIdentity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", AuthMiddleware(), func(c *gin.Context) {
		captured.userID = c.GetInt64(UserIDKey)
		if raw, ok := c.Get(TeamIDKey); ok {
			teamID := raw.(int64)
			captured.teamID = &teamID
		}
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, headers map[string]string, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareRequiresUserHeader(t *testing.T) {
	var captured capturedIdentity
	router := identityRouter(&captured)

	assert.Equal(t, http.StatusUnauthorized, doRequest(router, nil, "/whoami").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, map[string]string{"X-User-ID": "abc"}, "/whoami").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, map[string]string{"X-User-ID": "-1"}, "/whoami").Code)
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	var captured capturedIdentity
	router := identityRouter(&captured)

	resp := doRequest(router, map[string]string{"X-User-ID": "7"}, "/whoami")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 7, captured.userID)
	assert.Nil(t, captured.teamID)
}

func TestAuthMiddlewareTeamHeader(t *testing.T) {
	var captured capturedIdentity
	router := identityRouter(&captured)

	resp := doRequest(router, map[string]string{"X-User-ID": "7", "X-Team-ID": "9"}, "/whoami")
	assert.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, captured.teamID)
	assert.EqualValues(t, 9, *captured.teamID)

	// мусорный заголовок команды отклоняется целиком
	assert.Equal(t, http.StatusUnauthorized,
		doRequest(router, map[string]string{"X-User-ID": "7", "X-Team-ID": "team"}, "/whoami").Code)
}

func TestAuthMiddlewareIgnoresQueryTeam(t *testing.T) {
	var captured capturedIdentity
	router := identityRouter(&captured)

	// команда берётся только из доверенного заголовка, query не расширяет скоуп
	resp := doRequest(router, map[string]string{"X-User-ID": "7"}, "/whoami?team_id=9")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, captured.teamID)
}
