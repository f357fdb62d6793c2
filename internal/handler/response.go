package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kicklink/social-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// serviceError maps the service error kinds onto HTTP. Handlers call it
// after their request-shape checks; anything unrecognized is a 500 so a
// storage hiccup never leaks as a client error.
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", err.Error()))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", err.Error()))
	case errors.Is(err, service.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, NewErrorResponse("invalid_transition", err.Error()))
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, NewErrorResponse("conflict", err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "something went wrong"))
	}
}

// requestUID pulls the authenticated uid set by the auth middleware.
func requestUID(c echo.Context) (string, bool) {
	uid, _ := c.Get("uid").(string)
	return uid, uid != ""
}

func isModerator(c echo.Context) bool {
	mod, _ := c.Get("moderator").(bool)
	return mod
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
