// File: internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"propdesk_backend/internal/common"
	"propdesk_backend/internal/identity"
	"propdesk_backend/internal/shared"
)

const (
	// AuthorizationHeader is the header name for the bearer token.
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens.
	AuthorizationTypeBearer = "Bearer"
	// IdentityUIDKey is the context key for the authenticated identity UID.
	IdentityUIDKey = "identityUID"
	// ProfileKey is the context key for the resolved profile snapshot.
	ProfileKey = "profile"
)

// AuthMiddleware creates a Gin middleware that verifies the bearer ID token
// against the identity provider and resolves the matching profile. Requests
// whose identity has no profile row still pass through with an empty profile
// slot: the sign-in workflow itself is responsible for bootstrapping.
func AuthMiddleware(provider identity.Provider, profiles shared.ProfileResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
			logger.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		claims, err := provider.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			logger.Warn("ID token verification failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("The session token is invalid or expired."))
			return
		}

		c.Set(IdentityUIDKey, claims.UID)

		p, err := profiles.GetByIdentityUID(c.Request.Context(), claims.UID)
		if err == nil {
			c.Set(ProfileKey, p)
		}

		logger.Debug("Request authenticated",
			zap.String("identityUID", claims.UID),
			zap.String("email", claims.Email))

		c.Next()
	}
}

// GetIdentityUIDFromContext retrieves the authenticated identity UID, or ""
// when the request is unauthenticated.
func GetIdentityUIDFromContext(c *gin.Context) string {
	val, exists := c.Get(IdentityUIDKey)
	if !exists {
		return ""
	}
	uid, ok := val.(string)
	if !ok {
		return ""
	}
	return uid
}

// GetProfileFromContext retrieves the resolved profile snapshot, or nil when
// the identity has no profile yet.
func GetProfileFromContext(c *gin.Context) *shared.Profile {
	val, exists := c.Get(ProfileKey)
	if !exists {
		return nil
	}
	p, ok := val.(*shared.Profile)
	if !ok {
		return nil
	}
	return p
}

// AdminOnlyMiddleware rejects requests whose profile is not an administrator.
// It must run after AuthMiddleware.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetProfileFromContext(c)
		if p == nil {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("No profile is associated with this session."))
			return
		}
		if !p.IsAdmin {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("This action requires administrator access."))
			return
		}
		c.Next()
	}
}

// CompanyScopedMiddleware rejects requests whose profile is not attached to a
// company. It must run after AuthMiddleware.
func CompanyScopedMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetProfileFromContext(c)
		if p == nil || p.CompanyID == nil {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("This action requires a company association."))
			return
		}
		c.Next()
	}
}
