package handlers

import (
	"fmt"
	"net/http"

	"github.com/anonto42/spinforge/backend/internal/middleware"
	"github.com/anonto42/spinforge/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification and activity HTTP requests.
// Every route is scoped to the authenticated caller.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications, middleware.RequireUser)
	g.GET("/notifications/unread-count", h.GetUnreadCount, middleware.RequireUser)
	g.POST("/notifications/mark-all-read", h.MarkAllAsRead, middleware.RequireUser)
	g.GET("/notifications/:id", h.GetNotification, middleware.RequireUser)
	g.POST("/notifications/:id/read", h.MarkAsRead, middleware.RequireUser)
	g.PATCH("/notifications/:id/read", h.MarkAsRead, middleware.RequireUser)
	g.GET("/activities", h.GetActivities, middleware.RequireUser)
}

// GetNotifications returns paginated notifications, unread first.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	page, limit := pagination(c)

	notifications, total, err := h.notificationService.ListNotifications(c.Request().Context(), currentUserID, page, limit)
	if err != nil {
		return err
	}

	results := make([]NotificationResponse, len(notifications))
	for i := range notifications {
		results[i] = newNotificationResponse(&notifications[i])
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results": results,
		"meta":    paginationMeta(page, limit, total),
	})
}

// GetNotification returns one of the caller's notifications with its related
// object when that object still exists.
func (h *NotificationHandler) GetNotification(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c, "id", "notification")
	if err != nil {
		return err
	}

	notification, err := h.notificationService.GetNotification(ctx, id, getUserIDFromContext(c))
	if err != nil {
		return err
	}

	resp := newNotificationResponse(notification)
	related, err := h.notificationService.ResolveRelated(ctx, notification)
	if err != nil {
		return err
	}
	if related != nil {
		resp.RelatedObject = relatedObjectPayload(related)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notificationService.UnreadCount(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead answers 400 for unknown ids and for other users' notifications alike.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)

	notifID, err := parseID(c, "id", "notification")
	if err != nil {
		return err
	}

	ok, err := h.notificationService.MarkNotificationRead(ctx, notifID, currentUserID)
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Failed to mark notification as read."})
	}

	notification, err := h.notificationService.GetNotification(ctx, notifID, currentUserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newNotificationResponse(notification))
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	count, err := h.notificationService.MarkAllRead(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   count,
		"message": fmt.Sprintf("%d notification(s) marked as read.", count),
	})
}

// GetActivities returns the caller's own activity log, newest first.
func (h *NotificationHandler) GetActivities(c echo.Context) error {
	page, limit := pagination(c)

	activities, total, err := h.notificationService.ListActivities(c.Request().Context(), getUserIDFromContext(c), page, limit)
	if err != nil {
		return err
	}

	results := make([]ActivityResponse, len(activities))
	for i := range activities {
		results[i] = newActivityResponse(&activities[i])
	}
	return c.JSON(http.StatusOK, echo.Map{
		"results": results,
		"meta":    paginationMeta(page, limit, total),
	})
}
