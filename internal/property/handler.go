// File: internal/property/handler.go
package property

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

// RegisterRoutes wires property management. Reading is open to any company
// member; writes are admin-only.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/properties")
	group.Use(authMW, middleware.CompanyScopedMiddleware())
	{
		group.GET("", h.search)
		group.GET("/:id", h.getByID)

		adminGroup := group.Group("")
		adminGroup.Use(middleware.AdminOnlyMiddleware())
		{
			adminGroup.POST("", h.create)
			adminGroup.PUT("/:id", h.update)
			adminGroup.DELETE("/:id", h.delete)
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
	common.RespondCreated(c, "Property created successfully.", ToResponse(created))
}

func (h *Handler) update(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid property ID."))
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), p, id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Property updated successfully.", ToResponse(updated))
}

func (h *Handler) delete(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid property ID."))
		return
	}

	if err := h.service.Delete(c.Request.Context(), p, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) getByID(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid property ID."))
		return
	}

	result, err := h.service.GetByID(c.Request.Context(), p, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Property retrieved successfully.", ToResponse(result))
}

func (h *Handler) search(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	query := SearchQuery{
		Term:     c.Query("q"),
		Status:   PropertyStatus(c.Query("status")),
		City:     c.Query("city"),
		Page:     page,
		PageSize: pageSize,
	}

	properties, pagination, err := h.service.Search(c.Request.Context(), p, query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	responses := make([]Response, 0, len(properties))
	for i := range properties {
		responses = append(responses, ToResponse(&properties[i]))
	}
	common.RespondPaginated(c, "Properties retrieved successfully.", responses, pagination)
}
