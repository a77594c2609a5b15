package app

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const metricsRealm = `Basic realm="bellschedule-metrics"`

// metricsAuthMiddleware enforces Basic Auth on the metrics endpoint when
// enabled. Credentials are compared in constant time.
func metricsAuthMiddleware(enabled bool, username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		user, pass, hasAuth := c.Request.BasicAuth()
		if !hasAuth || !credentialsMatch(user, pass, username, password) {
			c.Header("WWW-Authenticate", metricsRealm)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Next()
	}
}

func credentialsMatch(user, pass, wantUser, wantPass string) bool {
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) == 1
	return userMatch && passMatch
}
