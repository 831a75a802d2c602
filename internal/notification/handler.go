// File: internal/notification/handler.go
package notification

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/middleware"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/notifications")
	group.Use(authMW)
	{
		group.GET("", h.list)
		group.POST("/:id/read", h.markRead)
		group.POST("/read-all", h.markAllRead)
	}
}

func (h *Handler) list(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)
	if p == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	unreadOnly := c.Query("unread") == "true"

	notifications, pagination, err := h.service.List(c.Request.Context(), p.ID, unreadOnly, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	responses := make([]Response, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, ToResponse(&notifications[i]))
	}
	common.RespondPaginated(c, "Notifications retrieved successfully.", responses, pagination)
}

func (h *Handler) markRead(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)
	if p == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID."))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), p.ID, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification marked as read.", nil)
}

func (h *Handler) markAllRead(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)
	if p == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	if err := h.service.MarkAllRead(c.Request.Context(), p.ID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications marked as read.", nil)
}
