package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-manager/internal/application"
	"github.com/oksasatya/go-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-task-manager/pkg/helpers"
	"github.com/oksasatya/go-task-manager/pkg/response"
)

// TokenVerifier is satisfied by helpers.JWTManager.
type TokenVerifier interface {
	Verify(token string) (*helpers.Claims, error)
}

// UserLookup is satisfied by application.CredentialStore.
type UserLookup interface {
	Get(ctx context.Context, id string) (*entity.User, error)
}

// Auth accepts a request only when the bearer token verifies, its user exists
// and the exact token string is still in that user's token list. Every
// rejection looks the same to the client. On success the user, the token and
// the user id are stored in the Gin context.
func Auth(tokens TokenVerifier, users UserLookup, logger *logrus.Logger) gin.HandlerFunc {
	deny := func(c *gin.Context) {
		response.Abort(c, http.StatusUnauthorized, application.ErrUnauthorized.Error(), nil)
	}
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			deny(c)
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Debug("token rejected")
			}
			deny(c)
			return
		}
		if application.CheckID(claims.UserID) != nil {
			deny(c)
			return
		}

		u, err := users.Get(c.Request.Context(), claims.UserID)
		if errors.Is(err, application.ErrNotFound) {
			deny(c)
			return
		}
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("auth user lookup failed")
			}
			response.Abort(c, http.StatusInternalServerError, "internal server error", nil)
			return
		}
		if !entity.HasToken(u, token) {
			deny(c)
			return
		}

		c.Set(CtxUserKey, u)
		c.Set(CtxTokenKey, token)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}
