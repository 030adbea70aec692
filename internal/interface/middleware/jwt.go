package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-task-manager/internal/domain/entity"
)

const (
	CtxUserIDKey = "userID"
	CtxUserKey   = "user"
	CtxTokenKey  = "token"
)

// BearerToken extracts <token> from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// CurrentUser returns the user resolved by Auth.
func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(CtxUserKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}

// CurrentToken returns the exact token string the request was authenticated with.
func CurrentToken(c *gin.Context) string {
	return c.GetString(CtxTokenKey)
}
