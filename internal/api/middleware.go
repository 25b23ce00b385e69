package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-migrant-health/internal/session"
)

const (
	sessionKey       = "session"
	accessTokenParam = "access_token"
)

// AuthMiddleware resolves the bearer token to a live session and stores it
// on the gin context.
func AuthMiddleware(issuer *session.Issuer, sessions *session.Store) gin.HandlerFunc {
	return authenticate(issuer, sessions, false)
}

// StreamAuthMiddleware also accepts the token as ?access_token=, since a
// browser EventSource cannot set the Authorization header.
func StreamAuthMiddleware(issuer *session.Issuer, sessions *session.Store) gin.HandlerFunc {
	return authenticate(issuer, sessions, true)
}

func authenticate(issuer *session.Issuer, sessions *session.Store, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" && allowQuery {
			tokenStr = c.Query(accessTokenParam)
		}
		if tokenStr == "" {
			sendError(c, http.StatusUnauthorized, CodeMissingToken,
				"Authentication required", "Please provide a valid authorization token in the request header")
			return
		}

		claims, err := issuer.Parse(tokenStr)
		if err != nil {
			sendError(c, http.StatusUnauthorized, CodeInvalidToken,
				"Invalid or expired token", "Please log in again")
			return
		}

		sess, ok := sessions.Get(claims.SessionID)
		if !ok {
			sendError(c, http.StatusUnauthorized, CodeInvalidToken,
				"Session expired", "Please log in again")
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
