// File: internal/company/handler.go
package company

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
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

// RegisterRoutes wires the company endpoints. All of them require an
// authenticated admin; saving details additionally requires that the admin
// has no company yet, which the service enforces.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/company")
	group.Use(authMW)
	{
		group.POST("", middleware.AdminOnlyMiddleware(), h.saveDetails)
		group.GET("", middleware.CompanyScopedMiddleware(), h.get)
		group.PUT("", middleware.AdminOnlyMiddleware(), middleware.CompanyScopedMiddleware(), h.updateDetails)
	}
}

func (h *Handler) saveDetails(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)
	if p == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req SaveDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	created, err := h.service.SaveDetails(c.Request.Context(), p, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Company details saved successfully.", ToResponse(created))
}

func (h *Handler) get(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)
	result, err := h.service.GetByID(c.Request.Context(), *p.CompanyID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Company retrieved successfully.", ToResponse(result))
}

func (h *Handler) updateDetails(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)

	var req UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	updated, err := h.service.UpdateDetails(c.Request.Context(), *p.CompanyID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Company details updated successfully.", ToResponse(updated))
}
