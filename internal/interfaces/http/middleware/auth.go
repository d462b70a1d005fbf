// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/bakery-storefront/internal/config"
	"github.com/your-org/bakery-storefront/internal/interfaces/http/device"
	"github.com/your-org/bakery-storefront/internal/session"
)

// DeviceSession identifies the browser by its device cookie, issuing a new
// one when it is missing, and loads the device's view-state
func DeviceSession(cfg *config.Config, registry *device.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.Session.CookieName)
		if _, parseErr := uuid.Parse(id); err != nil || parseErr != nil {
			id = uuid.NewString()
		}

		// Refresh the cookie on every request so an active device never expires
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.Session.CookieName, id, cfg.Session.CookieMaxAge, "/", "", cfg.Session.SecureCookie, true)

		d, err := registry.Get(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Session store unavailable",
			})
			c.Abort()
			return
		}

		c.Set(DeviceIDKey, id)
		c.Set(deviceKey, d)
		c.Next()
	}
}

// RequireActor ensures the device holds a token for actor
func RequireActor(actor session.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, ok := GetDevice(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if d.Session.Token(actor) == "" {
			message := "Please sign in to continue"
			if actor == session.ActorStaff {
				message = "Staff sign-in required"
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": message,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetDevice extracts the device view-state from gin context
func GetDevice(c *gin.Context) (*device.Device, bool) {
	v, exists := c.Get(deviceKey)
	if !exists {
		return nil, false
	}
	d, ok := v.(*device.Device)
	return d, ok
}
