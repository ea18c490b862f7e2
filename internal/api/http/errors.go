package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ari-dashboard/backend/internal/infrastructure/tracing"
	apperrors "github.com/ari-dashboard/backend/internal/shared/errors"
	"github.com/ari-dashboard/backend/internal/shared/utils"
)

// statusFor maps an error code to its HTTP status.
func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeValidation, apperrors.CodeNoBackup:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error", "code"} with the mapped status.
func (h *Handlers) respondError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.CodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			tracing.Field(c.Request.Context()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{
		"error": apperrors.Message(err),
		"code":  code,
	})
}

// bindJSON decodes the request body into v. Typed errors raised while
// decoding (such as an unknown widget type) are reported as they are; any
// other decode failure is a validation error.
func (h *Handlers) bindJSON(c *gin.Context, v interface{}) bool {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return true
	}
	if apperrors.GetCode(err) != "" {
		h.respondError(c, err)
		return false
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "widgets" {
		h.respondError(c, apperrors.Validation("widgets must be an array"))
		return false
	}
	h.respondError(c, apperrors.Wrap(err, apperrors.CodeValidation, "Invalid JSON body"))
	return false
}

// pathID validates a path parameter used as a widget id or preset name.
func (h *Handlers) pathID(c *gin.Context, param string) (string, bool) {
	value := c.Param(param)
	if err := utils.ValidateID(value, param); err != nil {
		h.respondError(c, apperrors.Wrap(err, apperrors.CodeValidation, err.Error()))
		return "", false
	}
	return value, true
}
