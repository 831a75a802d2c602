// File: internal/staff/handler.go
package staff

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/middleware"
	"propdesk_backend/internal/profile"
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

// RegisterRoutes wires staff management. Everything here is admin-only and
// scoped to the admin's own company.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/staff")
	group.Use(authMW, middleware.AdminOnlyMiddleware(), middleware.CompanyScopedMiddleware())
	{
		group.POST("/invite", h.invite)
		group.GET("", h.list)
		group.DELETE("/:id", h.deactivate)
	}
}

func (h *Handler) invite(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	invited, err := h.service.Invite(c.Request.Context(), p, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Staff member invited successfully.", profile.ToResponse(invited))
}

func (h *Handler) list(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	members, pagination, err := h.service.List(c.Request.Context(), *p.CompanyID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	responses := make([]profile.Response, 0, len(members))
	for i := range members {
		responses = append(responses, profile.ToResponse(&members[i]))
	}
	common.RespondPaginated(c, "Staff members retrieved successfully.", responses, pagination)
}

func (h *Handler) deactivate(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid staff member ID."))
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), p, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}
