package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-manager/internal/application"
	"github.com/oksasatya/go-task-manager/pkg/response"
	"github.com/oksasatya/go-task-manager/pkg/validation"
)

// respondError writes the client-facing form of err. Unexpected errors are
// logged with the request id and reported without details.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		ife *application.InvalidFieldsError
		ve  *validation.Error
	)
	switch {
	case errors.As(err, &ife):
		response.Error[any](c, http.StatusBadRequest, "invalid updates", gin.H{
			"invalid_fields": ife.Invalid,
			"allowed_fields": ife.Allowed,
		})
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusBadRequest, "validation failed", ve.Details())
	case errors.Is(err, application.ErrInvalidID):
		response.Error[any](c, http.StatusBadRequest, "invalid id", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusBadRequest, application.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, application.ErrUnauthorized):
		response.Error[any](c, http.StatusUnauthorized, application.ErrUnauthorized.Error(), nil)
	case errors.Is(err, application.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// badPayload reports a body that could not be decoded.
func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
