package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"airport-service/internal/service"
	"airport-service/internal/validation"
)

type errorResponse struct {
	Message string `json:"message"`
}

// fieldErrorsResponse is the body of every 400: field name -> message.
type fieldErrorsResponse struct {
	Errors map[string]string `json:"errors"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	if statusCode >= http.StatusInternalServerError {
		logrus.Error(message)
	}
	c.AbortWithStatusJSON(statusCode, errorResponse{message})
}

func newFieldErrorsResponse(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, fieldErrorsResponse{Errors: fields})
}

// respondError maps service failures onto status codes. Causes of 500s are
// logged and never returned to the client.
func respondError(c *gin.Context, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		newFieldErrorsResponse(c, verr.Fields)
		return
	}
	var cerr *service.ConflictError
	if errors.As(err, &cerr) {
		newFieldErrorsResponse(c, cerr.Fields())
		return
	}

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		msg := service.ErrUnauthenticated.Error()
		if errors.Is(err, service.ErrNoActiveAccount) {
			msg = service.NoActiveAccount
		}
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Debug("unauthenticated")
		newErrorResponse(c, http.StatusUnauthorized, msg)
	case errors.Is(err, service.ErrForbidden):
		newErrorResponse(c, http.StatusForbidden, service.ErrForbidden.Error())
	case errors.Is(err, service.ErrNotFound):
		newErrorResponse(c, http.StatusNotFound, "not found")
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{"internal server error"})
	}
}
