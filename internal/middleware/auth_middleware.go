package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
	"github.com/tsegaye25/load-tracking/internal/pkg/auth"
)

// contextUserKey is the gin context key holding the authenticated user.
const contextUserKey = "currentUser"

// UserLoader resolves an authenticated user id to a full account.
type UserLoader interface {
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
}

// JWTAuth validates the bearer token and loads the account into the request
// context. Every route behind it can rely on CurrentUser succeeding.
func JWTAuth(jwtService *auth.JWTService, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAndExtractClaims(token)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		user, err := users.CurrentUser(c.Request.Context(), claims.UserID)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RoleRequired restricts a route group to the given roles
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			HandleAPIError(c, apperrors.ErrTokenInvalid)
			c.Abort()
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		HandleAPIError(c, apperrors.NewPermissionDeniedError("role not allowed on this route"))
		c.Abort()
	}
}

// CurrentUser returns the authenticated user placed by JWTAuth
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
