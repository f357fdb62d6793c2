package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/service"
)

type CommentHandler struct {
	svc service.CommentService
}

func NewCommentHandler(svc service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

type AddCommentRequest struct {
	Content         string  `json:"content"`
	ParentCommentID *uint64 `json:"parent_comment_id"`
	MediaURL        *string `json:"media_url"`
}

type EditCommentRequest struct {
	Content string `json:"content"`
}

func (h *CommentHandler) Add(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	postID, err := pathID(c, "postId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid post id"))
	}
	var req AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	cm, err := h.svc.Add(c.Request().Context(), service.AddCommentInput{
		PostID:          postID,
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
		MediaURL:        req.MediaURL,
	}, uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, cm)
}

// List streams a whole page set in one response. The service yields
// lazily but HTTP needs the slice, so the handler caps how much it
// drains via the limit query param.
func (h *CommentHandler) List(c echo.Context) error {
	postID, err := pathID(c, "postId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid post id"))
	}
	sort := model.CommentSort(c.QueryParam("sort"))
	limit := 100
	if lStr := c.QueryParam("limit"); lStr != "" {
		if parsed, err := strconv.Atoi(lStr); err == nil && parsed > 0 && parsed < limit {
			limit = parsed
		}
	}

	comments := make([]*model.Comment, 0, 16)
	for cm, err := range h.svc.List(c.Request().Context(), postID, sort) {
		if err != nil {
			return serviceError(c, err)
		}
		comments = append(comments, cm)
		if len(comments) >= limit {
			break
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"comments": comments,
	})
}

func (h *CommentHandler) Edit(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	commentID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid comment id"))
	}
	var req EditCommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	cm, err := h.svc.Edit(c.Request().Context(), commentID, uid, req.Content)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *CommentHandler) Delete(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	commentID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid comment id"))
	}
	if err := h.svc.Delete(c.Request().Context(), commentID, uid, isModerator(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CommentHandler) Like(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	commentID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid comment id"))
	}
	cm, err := h.svc.Like(c.Request().Context(), commentID, uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *CommentHandler) Unlike(c echo.Context) error {
	uid, ok := requestUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	commentID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid comment id"))
	}
	cm, err := h.svc.Unlike(c.Request().Context(), commentID, uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, cm)
}
