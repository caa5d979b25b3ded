package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	UserIDKey = "userId"
	TeamIDKey = "teamId"
)

// AuthMiddleware берёт идентичность из заголовков X-User-ID и X-Team-ID,
// их выдаёт внешний identity-сервис перед этим бекендом; команда — только
// из доверенного заголовка, параметры запроса идентичность не задают
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := c.GetHeader("X-User-ID")
		if rawID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user id is required in 'X-User-ID' header"})
			c.Abort()
			return
		}
		userID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || userID <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid 'X-User-ID' header"})
			c.Abort()
			return
		}

		if rawTeam := c.GetHeader("X-Team-ID"); rawTeam != "" {
			teamID, err := strconv.ParseInt(rawTeam, 10, 64)
			if err != nil || teamID <= 0 {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid 'X-Team-ID' header"})
				c.Abort()
				return
			}
			c.Set(TeamIDKey, teamID)
		}

		logrus.Infof("AuthMiddleware: user_id: %d", userID)
		c.Set(UserIDKey, userID)
		c.Next()
	}
}
