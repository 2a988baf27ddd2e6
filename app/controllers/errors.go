package controllers

import (
	"errors"
	"net/http"

	"github.com/asadazo/asadazo/app/services"
	"github.com/asadazo/asadazo/pkg/ctx"
	"github.com/asadazo/asadazo/pkg/logger"
)

// fail maps a service error onto its HTTP status. Anything unrecognised is
// a 500 carrying the underlying message.
func fail(c *ctx.Context, err error) {
	msg := err.Error()
	var se *services.Error
	if errors.As(err, &se) {
		msg = se.Message
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		if se != nil && len(se.Fields) > 0 {
			c.JSON(http.StatusBadRequest, ctx.ErrorBody{Error: msg, Fields: se.Fields})
			return
		}
		c.BadRequest(msg)
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized(msg)
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden(msg)
	case errors.Is(err, services.ErrNotFound):
		c.NotFound(msg)
	case errors.Is(err, services.ErrConflict):
		c.Error(http.StatusConflict, services.ErrConflict.Error())
	case errors.Is(err, services.ErrEmailTaken):
		c.Error(http.StatusConflict, msg)
	case errors.Is(err, services.ErrInvalidTransition):
		c.Error(http.StatusUnprocessableEntity, msg)
	default:
		logger.WithCtx(c.Context()).Error("request failed", "path", c.R.URL.Path, "error", err)
		c.InternalError(msg)
	}
}
