package middleware

import (
	"errors"
	"strings"
	"time"

	"stagefront/internal/session"
	"stagefront/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestID assigns every request an id, echoed back to the browser.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// RequestLogger logs each handled request with timing.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		requestLog := log
		if requestID, ok := c.Get("request_id"); ok {
			requestLog = log.WithRequestID(requestID.(string))
		}
		requestLog.LogHTTPRequest(c, time.Since(start))
	}
}

// ResolveSession attaches the ambient session to the request context. The
// bearer token is looked up in the session store; on a miss the token's
// claims are parsed (unverified; the upstream API is the verifier) to build
// the user record, which is then persisted for subsequent requests.
//
// Requests without a credential proceed anonymously; the transport client
// falls back to the development identity.
func ResolveSession(store session.Store, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		sess, err := store.Get(ctx, token)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.WithError(err).Warn("session store lookup failed")
			}
			sess = &session.Session{Token: token, User: userFromClaims(token)}
			if err := store.Save(ctx, sess); err != nil {
				log.WithError(err).Warn("failed to persist session")
			}
		}

		c.Request = c.Request.WithContext(session.NewContext(ctx, sess))
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// userFromClaims extracts the identity record from the token's claims
// without verifying the signature; the gateway only needs display identity,
// the upstream API enforces authenticity.
func userFromClaims(token string) *session.User {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	user := &session.User{
		ID:   claimString(claims, "user_id"),
		Role: claimString(claims, "role"),
		Name: claimString(claims, "name"),
	}
	if user.ID == "" {
		user.ID = claimString(claims, "sub")
	}
	if user.ID == "" {
		return nil
	}
	return user
}

func claimString(claims jwt.MapClaims, key string) string {
	if value, ok := claims[key].(string); ok {
		return value
	}
	return ""
}
