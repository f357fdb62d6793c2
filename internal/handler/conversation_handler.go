package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/service"
)

type ConversationHandler struct {
	svc service.ConversationService
}

func NewConversationHandler(svc service.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type CreateConversationRequest struct {
	Type           string   `json:"type"`
	ParticipantIDs []string `json:"participant_ids"`
	Name           *string  `json:"name"`
	AvatarURL      *string  `json:"avatar_url"`
}

type PostMessageRequest struct {
	Content          string  `json:"content"`
	MessageType      string  `json:"message_type"`
	MediaURL         *string `json:"media_url"`
	SneakerID        *uint64 `json:"sneaker_id"`
	TradeProposalID  *uint64 `json:"trade_proposal_id"`
	ReplyToMessageID *uint64 `json:"reply_to_message_id"`
}

type EditMessageRequest struct {
	Content string `json:"content"`
}

type MarkReadRequest struct {
	UpToMessageID uint64 `json:"up_to_message_id"`
}

func (h *ConversationHandler) Create(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	cv, err := h.svc.Create(c.Request().Context(), service.CreateConversationInput{
		Type:           model.ConversationType(req.Type),
		ParticipantIDs: req.ParticipantIDs,
		Name:           req.Name,
		AvatarURL:      req.AvatarURL,
	}, uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, cv)
}

func (h *ConversationHandler) Get(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	cv, err := h.svc.Get(c.Request().Context(), convID, uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, cv)
}

func (h *ConversationHandler) List(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convs, err := h.svc.ListForUser(c.Request().Context(), uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversations": convs,
	})
}

func (h *ConversationHandler) Participants(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	parts, err := h.svc.Participants(c.Request().Context(), convID, uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"participants": parts,
	})
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	msgs, err := h.svc.ListMessages(c.Request().Context(), convID, uid, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": msgs,
	})
}

func (h *ConversationHandler) PostMessage(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	msgType := model.MessageType(req.MessageType)
	if req.MessageType == "" {
		msgType = model.MessageText
	}
	msg, err := h.svc.PostMessage(c.Request().Context(), convID, uid, service.PostMessageInput{
		Content:          req.Content,
		Type:             msgType,
		MediaURL:         req.MediaURL,
		SneakerID:        req.SneakerID,
		TradeProposalID:  req.TradeProposalID,
		ReplyToMessageID: req.ReplyToMessageID,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *ConversationHandler) EditMessage(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	msgID, err := pathID(c, "msgId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid message id"))
	}
	var req EditMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	msg, err := h.svc.EditMessage(c.Request().Context(), msgID, uid, req.Content)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}

func (h *ConversationHandler) DeleteMessage(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	msgID, err := pathID(c, "msgId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid message id"))
	}
	if err := h.svc.DeleteMessage(c.Request().Context(), convID, msgID, uid); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ConversationHandler) MarkRead(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	var req MarkReadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.UpToMessageID == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "up_to_message_id is required"))
	}
	if err := h.svc.MarkRead(c.Request().Context(), convID, uid, req.UpToMessageID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
