package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/kicklink/social-backend/internal/service"
)

var upgrader = websocket.Upgrader{
	// Origin checks happen in the CORS layer; the stream itself is
	// gated by the auth middleware before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type PresenceHandler struct {
	svc service.PresenceService
}

func NewPresenceHandler(svc service.PresenceService) *PresenceHandler {
	return &PresenceHandler{svc: svc}
}

type TypingRequest struct {
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji"`
}

func (h *PresenceHandler) SetTyping(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	var req TypingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.SetTyping(c.Request().Context(), convID, uid, req.Username, req.IsTyping); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PresenceHandler) Typing(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	typing, err := h.svc.Typing(c.Request().Context(), convID, uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"typing": typing,
	})
}

func (h *PresenceHandler) React(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	msgID, err := pathID(c, "msgId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid message id"))
	}
	var req ReactionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	added, err := h.svc.React(c.Request().Context(), msgID, uid, req.Emoji)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"reacted": added,
	})
}

func (h *PresenceHandler) Unreact(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	msgID, err := pathID(c, "msgId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid message id"))
	}
	var req ReactionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.Unreact(c.Request().Context(), msgID, uid, req.Emoji); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PresenceHandler) Reactions(c echo.Context) error {
	msgID, err := pathID(c, "msgId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid message id"))
	}
	groups, err := h.svc.Reactions(c.Request().Context(), msgID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"reactions": groups,
	})
}

func (h *PresenceHandler) Heartbeat(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if err := h.svc.Heartbeat(c.Request().Context(), uid); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Events upgrades to a websocket and streams the conversation's typing,
// reaction and message events. Inbound frames carry typing state so the
// client needs one socket, not a socket plus polling.
func (h *PresenceHandler) Events(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}

	ctx := c.Request().Context()
	events, cancel, err := h.svc.Subscribe(ctx, convID, uid)
	if err != nil {
		return serviceError(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		cancel()
		return nil
	}

	_ = h.svc.Heartbeat(ctx, uid)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}()

	for {
		var frame struct {
			Type     string `json:"type"`
			Username string `json:"username"`
			IsTyping bool   `json:"is_typing"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}
		if frame.Type == "typing" {
			_ = h.svc.SetTyping(ctx, convID, uid, frame.Username, frame.IsTyping)
		}
	}

	cancel()
	_ = conn.Close()
	<-done
	_ = h.svc.Offline(ctx, uid)
	return nil
}
