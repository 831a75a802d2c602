// File: internal/task/handler.go
package task

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
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

// RegisterRoutes wires task management. Creating and reassigning are
// admin-only; staff see their own list and update status on their tasks.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/tasks")
	group.Use(authMW, middleware.CompanyScopedMiddleware())
	{
		group.GET("/mine", h.listMine)
		group.GET("/:id", h.getByID)
		group.PUT("/:id/status", h.updateStatus)

		adminGroup := group.Group("")
		adminGroup.Use(middleware.AdminOnlyMiddleware())
		{
			adminGroup.POST("", h.create)
			adminGroup.GET("", h.listForCompany)
			adminGroup.PUT("/:id/assignees", h.reassign)
		}
	}
}

func (h *Handler) create(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Task created successfully.", ToResponse(created))
}

func (h *Handler) getByID(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid task ID."))
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), p, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Task retrieved successfully.", ToResponse(t))
}

func (h *Handler) listForCompany(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := TaskStatus(c.Query("status"))

	tasks, pagination, err := h.service.ListForCompany(c.Request.Context(), p, status, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Tasks retrieved successfully.", toResponses(tasks), pagination)
}

func (h *Handler) listMine(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	tasks, pagination, err := h.service.ListMine(c.Request.Context(), p, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Tasks retrieved successfully.", toResponses(tasks), pagination)
}

func (h *Handler) updateStatus(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid task ID."))
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	t, err := h.service.UpdateStatus(c.Request.Context(), p, id, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Task status updated successfully.", ToResponse(t))
}

func (h *Handler) reassign(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid task ID."))
		return
	}

	var req ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	t, err := h.service.Reassign(c.Request.Context(), p, id, req.AssigneeIDs)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Task assignees updated successfully.", ToResponse(t))
}

func toResponses(tasks []Task) []Response {
	responses := make([]Response, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, ToResponse(&tasks[i]))
	}
	return responses
}
