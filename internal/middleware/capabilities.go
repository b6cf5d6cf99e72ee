package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/jhstephenson/callingtrack/internal/constants"
	apierrors "github.com/jhstephenson/callingtrack/internal/errors"
	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/permissions"
	"github.com/jhstephenson/callingtrack/internal/services"
	"github.com/sirupsen/logrus"
)

// LoadCapabilities resolves the authenticated user's capability set once per
// request and stores the user and capabilities in the context. Must run after
// RequireAuth.
func LoadCapabilities(authService *services.AuthService, resolver *permissions.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := authService.GetUser(userID)
		if err != nil {
			// Session points at a deleted account
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		caps, err := resolver.Resolve(user)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to resolve capabilities")
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, user)
		c.Set(constants.ContextKeyCapabilities, caps)
		c.Next()
	}
}

// GetUser retrieves the authenticated user from the context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// GetCapabilities retrieves the resolved capability set from the context
func GetCapabilities(c *gin.Context) (permissions.Capabilities, bool) {
	value, exists := c.Get(constants.ContextKeyCapabilities)
	if !exists {
		return permissions.Capabilities{}, false
	}
	caps, ok := value.(permissions.Capabilities)
	return caps, ok
}

// RequireCapability guards a route group behind one capability flag
func RequireCapability(check func(permissions.Capabilities) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		caps, ok := GetCapabilities(c)
		if !ok || !check(caps) {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSuperuser guards administrative routes
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok || !user.IsSuperuser {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}
