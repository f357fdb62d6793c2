package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kicklink/social-backend/internal/identity"
	"github.com/kicklink/social-backend/internal/service"
)

type UserHandler struct {
	resolver identity.Resolver
	presence service.PresenceService
}

func NewUserHandler(resolver identity.Resolver, presence service.PresenceService) *UserHandler {
	return &UserHandler{resolver: resolver, presence: presence}
}

func (h *UserHandler) GetPublic(c echo.Context) error {
	uid := c.Param("uid")
	if uid == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid uid"))
	}
	snap, err := h.resolver.Resolve(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user not found"))
	}
	snap.IsOnline = h.presence.IsOnline(c.Request().Context(), uid)
	return c.JSON(http.StatusOK, snap)
}
