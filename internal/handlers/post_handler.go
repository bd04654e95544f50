package handlers

import (
	"net/http"

	"github.com/anonto42/spinforge/backend/internal/middleware"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// RegisterPostRoutes registers post-related routes. Reads are public; writes
// need an authenticated caller.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost)
	g.POST("/posts", h.CreatePost, middleware.RequireUser)
	g.PATCH("/posts/:id", h.UpdatePost, middleware.RequireUser)
	g.PUT("/posts/:id", h.UpdatePost, middleware.RequireUser)
	g.DELETE("/posts/:id", h.DeletePost, middleware.RequireUser)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postService.CreatePost(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newPostResponse(post, 0))
}

// GetPost retrieves a post with all of its comments, oldest first.
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}

	post, comments, err := h.postService.GetPost(c.Request().Context(), postID)
	if err != nil {
		return err
	}

	resp := newPostResponse(post, int64(len(comments)))
	resp.Comments = newCommentResponses(comments)
	return c.JSON(http.StatusOK, resp)
}

// GetPosts lists the feed, newest first. Supports ?author=<username>,
// ?post_type= and ?related_skill=.
func (h *PostHandler) GetPosts(c echo.Context) error {
	page, limit := pagination(c)
	filter := models.PostFilter{
		AuthorUsername: c.QueryParam("author"),
		PostType:       c.QueryParam("post_type"),
		RelatedSkill:   c.QueryParam("related_skill"),
	}

	result, err := h.postService.ListPosts(c.Request().Context(), filter, page, limit)
	if err != nil {
		return err
	}

	posts := make([]PostResponse, len(result.Posts))
	for i := range result.Posts {
		p := &result.Posts[i]
		posts[i] = newPostResponse(p, result.CommentCounts[p.ID])
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results": posts,
		"meta":    paginationMeta(page, limit, result.Total),
	})
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.postService.UpdatePost(ctx, postID, getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPostResponse(post, 0))
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}

	if err := h.postService.DeletePost(c.Request().Context(), postID, getUserIDFromContext(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
