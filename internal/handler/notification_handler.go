package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/service"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type NotificationResponse struct {
	ID              uint64  `json:"id"`
	Type            string  `json:"type"`
	Title           string  `json:"title"`
	Body            string  `json:"body"`
	ConversationID  *uint64 `json:"conversation_id,omitempty"`
	CommentID       *uint64 `json:"comment_id,omitempty"`
	TradeProposalID *uint64 `json:"trade_proposal_id,omitempty"`
	Read            bool    `json:"read"`
	CreatedAt       string  `json:"created_at"`
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:              n.ID,
		Type:            n.Type,
		Title:           n.Title,
		Body:            n.Body,
		ConversationID:  n.ConversationID,
		CommentID:       n.CommentID,
		TradeProposalID: n.TradeProposalID,
		Read:            n.ReadAt != nil,
		CreatedAt:       n.CreatedAt.Format(time.RFC3339),
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	unreadOnly := c.QueryParam("unread_only") != "false"
	limit := 20
	if lStr := c.QueryParam("limit"); lStr != "" {
		if lParsed, err := strconv.Atoi(lStr); err == nil && lParsed > 0 {
			limit = lParsed
		}
	}
	list, unreadCount, err := h.svc.List(c.Request().Context(), uid, unreadOnly, limit)
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, toNotificationResponse(n))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": resp,
		"unread_count":  unreadCount,
	})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if err := h.svc.MarkAllRead(c.Request().Context(), uid); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
