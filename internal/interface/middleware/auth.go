package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	"github.com/oksasatya/go-ddd-board/pkg/helpers"
	"github.com/oksasatya/go-ddd-board/pkg/response"
)

const (
	CtxSessionIDKey = "session_id"
	CtxIdentityKey  = "identity"
	CtxUserIDKey    = "userID"
)

// SessionResolver looks up the identity bound to a session id.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*entity.Identity, error)
}

// Session reads the session cookie and, when it names a live session, puts
// the bound identity into the Gin context. Requests without one continue
// anonymously; services decide whether that is allowed.
func Session(tokens *helpers.SessionTokenManager, cookieName string, resolver SessionResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			c.Next()
			return
		}
		c.Set(CtxSessionIDKey, claims.SessionID)

		id, err := resolver.Resolve(c.Request.Context(), claims.SessionID)
		if err != nil {
			logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("resolve session failed")
			response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
			c.Abort()
			return
		}
		if id != nil && id.UserID == claims.UserID {
			c.Set(CtxIdentityKey, id)
			c.Set(CtxUserIDKey, id.UserID)
		}
		c.Next()
	}
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c) == nil {
			response.Error[any](c, http.StatusUnauthorized, "login required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the request's identity, nil when anonymous.
func IdentityFrom(c *gin.Context) *entity.Identity {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*entity.Identity)
	return id
}

// SessionIDFrom returns the id named by a validly signed cookie, even when
// the session itself is gone.
func SessionIDFrom(c *gin.Context) string {
	return c.GetString(CtxSessionIDKey)
}
