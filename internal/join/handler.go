// File: internal/join/handler.go
package join

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
)

// Handler exposes the activation side-channel. All three endpoints are
// public: the whole point of the flow is that the user has no session yet.
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

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/join")
	{
		group.POST("/code", h.submitCode)
		group.POST("/email", h.submitEmail)
		group.POST("/password", h.submitPassword)
	}
}

func (h *Handler) submitCode(c *gin.Context) {
	var req SubmitCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	sess, token, err := h.service.SubmitCode(c.Request.Context(), req.Code)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Company found. Please enter your email address.", StepResponse{
		Token:       token,
		State:       sess.State,
		CompanyName: sess.CompanyName,
	})
}

func (h *Handler) submitEmail(c *gin.Context) {
	var req SubmitEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	sess, err := h.service.SubmitEmail(c.Request.Context(), req.Token, req.Email)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Invitation found. Please choose a password.", StepResponse{
		Token:       req.Token,
		State:       sess.State,
		CompanyName: sess.CompanyName,
	})
}

func (h *Handler) submitPassword(c *gin.Context) {
	var req SubmitPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	result, err := h.service.SubmitPassword(c.Request.Context(), req.Token, req.Password, req.ConfirmPassword)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	data := StepResponse{State: result.State}
	if result.Caveat != "" {
		common.RespondOKWithCaveat(c, "Your account has been activated. You can now sign in.", result.Caveat, data)
		return
	}
	common.RespondOK(c, "Your account has been activated. You can now sign in.", data)
}
