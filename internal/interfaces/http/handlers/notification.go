// internal/interfaces/http/handlers/notification.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// GetNotifications handles GET /notifications. Returned toasts are removed.
func GetNotifications(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	respondOK(c, "Notifications retrieved successfully", d.Feed.Drain())
}
