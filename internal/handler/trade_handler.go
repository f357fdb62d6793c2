package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/service"
)

type TradeHandler struct {
	svc service.TradeService
}

func NewTradeHandler(svc service.TradeService) *TradeHandler {
	return &TradeHandler{svc: svc}
}

type ProposeTradeRequest struct {
	ToUserID            string   `json:"to_user_id"`
	OfferedSneakerIDs   []uint64 `json:"offered_sneaker_ids"`
	RequestedSneakerIDs []uint64 `json:"requested_sneaker_ids"`
	Message             *string  `json:"message"`
}

type RespondTradeRequest struct {
	Action  string               `json:"action"`
	Counter *ProposeTradeRequest `json:"counter"`
}

func (r *ProposeTradeRequest) toInput() service.ProposeTradeInput {
	return service.ProposeTradeInput{
		ToUserID:            r.ToUserID,
		OfferedSneakerIDs:   r.OfferedSneakerIDs,
		RequestedSneakerIDs: r.RequestedSneakerIDs,
		Message:             r.Message,
	}
}

func (h *TradeHandler) Propose(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req ProposeTradeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	p, err := h.svc.Propose(c.Request().Context(), req.toInput(), uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *TradeHandler) Respond(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	proposalID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid proposal id"))
	}
	var req RespondTradeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	var counter *service.ProposeTradeInput
	if req.Counter != nil {
		in := req.Counter.toInput()
		counter = &in
	}
	p, err := h.svc.Respond(c.Request().Context(), proposalID, uid, model.TradeStatus(req.Action), counter)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *TradeHandler) Get(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	proposalID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid proposal id"))
	}
	p, err := h.svc.Get(c.Request().Context(), proposalID, uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *TradeHandler) ListMine(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := h.svc.ListForUser(c.Request().Context(), uid, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"trade_proposals": list,
	})
}
