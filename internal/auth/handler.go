// File: internal/auth/handler.go
package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/middleware"
)

// Handler exposes the activation and sign-in workflow over HTTP.
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

// RegisterRoutes sets up the auth routes. Sign-in and resend-verification are
// public; everything else requires an authenticated identity.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/sign-in", h.signIn)
		authGroup.POST("/resend-verification", h.resendVerification)

		protected := authGroup.Group("")
		protected.Use(authMW)
		{
			protected.POST("/verify-code", h.verifyCode)
			protected.PUT("/language", h.saveLanguage)
			protected.GET("/session", h.sessionState)
			protected.POST("/sign-out", h.signOut)
		}
	}
}

func (h *Handler) signIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Sign-in: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	result, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Signed in successfully.", ToSignInResponse(result))
}

func (h *Handler) verifyCode(c *gin.Context) {
	uid := middleware.GetIdentityUIDFromContext(c)
	if uid == "" {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	result, err := h.service.SubmitVerificationCode(c.Request.Context(), uid, req.Code)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Verification successful.", ToSignInResponse(result))
}

func (h *Handler) saveLanguage(c *gin.Context) {
	uid := middleware.GetIdentityUIDFromContext(c)
	if uid == "" {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	result, err := h.service.SaveLanguagePreference(c.Request.Context(), uid, req.Language)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Language preference saved.", ToSignInResponse(result))
}

func (h *Handler) sessionState(c *gin.Context) {
	uid := middleware.GetIdentityUIDFromContext(c)
	if uid == "" {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	state, found := h.service.SessionState(uid)
	if !found {
		common.RespondWithError(c, common.ErrNotFound.WithMessage("No session state is stored for this account."))
		return
	}
	common.RespondOK(c, "Session state retrieved.", SessionStateResponse{
		OnboardingComplete: state.OnboardingComplete,
		IsAdmin:            state.IsAdmin,
		PreferredLang:      state.PreferredLang,
	})
}

func (h *Handler) resendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	msg, err := h.service.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, msg, nil)
}

func (h *Handler) signOut(c *gin.Context) {
	uid := middleware.GetIdentityUIDFromContext(c)
	if uid == "" {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	if err := h.service.SignOut(c.Request.Context(), uid); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Signed out successfully.", nil)
}
