package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/service"
)

type SneakerHandler struct {
	svc service.SneakerService
}

func NewSneakerHandler(svc service.SneakerService) *SneakerHandler {
	return &SneakerHandler{svc: svc}
}

type CreateSneakerRequest struct {
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Colorway    string  `json:"colorway"`
	SKU         string  `json:"sku"`
	RetailPrice uint    `json:"retail_price"`
	ImageURL    *string `json:"image_url"`
	ReleaseDate *string `json:"release_date"`
}

type SneakerListResponse struct {
	Sneakers []model.Sneaker `json:"sneakers"`
	Total    int64           `json:"total"`
}

func (h *SneakerHandler) Create(c echo.Context) error {
	if !isModerator(c) {
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "catalog writes require moderator"))
	}
	var req CreateSneakerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	sn := &model.Sneaker{
		Brand:       req.Brand,
		Model:       req.Model,
		Colorway:    req.Colorway,
		SKU:         req.SKU,
		RetailPrice: req.RetailPrice,
		ImageURL:    req.ImageURL,
	}
	if req.ReleaseDate != nil {
		d, err := time.Parse("2006-01-02", *req.ReleaseDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "release_date must be YYYY-MM-DD"))
		}
		sn.ReleaseDate = &d
	}
	created, err := h.svc.Create(c.Request().Context(), sn)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *SneakerHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	sn, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, sn)
}

func (h *SneakerHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	list, total, err := h.svc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, SneakerListResponse{
		Sneakers: list,
		Total:    total,
	})
}
