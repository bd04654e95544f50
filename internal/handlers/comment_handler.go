package handlers

import (
	"net/http"

	"github.com/anonto42/spinforge/backend/internal/middleware"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.GetCommentsByPostID)
	g.POST("/posts/:id/comments", h.CreateComment, middleware.RequireUser)
	g.PATCH("/comments/:id", h.UpdateComment, middleware.RequireUser)
	g.PUT("/comments/:id", h.UpdateComment, middleware.RequireUser)
	g.DELETE("/comments/:id", h.DeleteComment, middleware.RequireUser)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	comment, err := h.commentService.CreateComment(c.Request().Context(), postID, getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newCommentResponse(comment))
}

// GetCommentsByPostID lists a post's comments, oldest first.
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}

	comments, err := h.commentService.ListComments(c.Request().Context(), postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCommentResponses(comments))
}

func (h *CommentHandler) UpdateComment(c echo.Context) error {
	commentID, err := parseID(c, "id", "comment")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	comment, err := h.commentService.UpdateComment(c.Request().Context(), commentID, getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCommentResponse(comment))
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	commentID, err := parseID(c, "id", "comment")
	if err != nil {
		return err
	}

	if err := h.commentService.DeleteComment(c.Request().Context(), commentID, getUserIDFromContext(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
