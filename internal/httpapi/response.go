package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillmap/internal/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// respondError maps the error kind to a status code. Internal errors are
// logged and replaced with a generic message.
func (h *handler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	body := APIError{Message: err.Error(), Code: string(kind), Reason: string(apperr.ReasonOf(err))}
	if kind == apperr.KindInternal {
		h.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		body.Message = "internal error"
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

// bind decodes the JSON body, reporting failures as validation errors.
func (h *handler) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		var ae *apperr.Error
		if !errors.As(err, &ae) {
			err = apperr.Wrap(apperr.KindValidation, err, "invalid request body: %v", err)
		}
		h.respondError(c, err)
		return false
	}
	return true
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func respondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
