// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/interfaces/http/device"
	"github.com/your-org/bakery-storefront/internal/interfaces/http/middleware"
)

var errNoDevice = errors.New("device session missing")

// statusFor maps an error kind to the HTTP status returned to the browser
func statusFor(kind api.Kind) int {
	switch kind {
	case api.KindValidation:
		return http.StatusUnprocessableEntity
	case api.KindUnauthorized:
		return http.StatusUnauthorized
	case api.KindNotFound:
		return http.StatusNotFound
	case api.KindNetworkTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// respondError writes err as {"error", "kind"}
func respondError(c *gin.Context, err error) {
	kind := api.KindOf(err)
	_ = c.Error(err)
	c.JSON(statusFor(kind), gin.H{
		"error": api.MessageOf(err),
		"kind":  kind,
	})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    data,
	})
}

// paramID parses a positive numeric path parameter
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return id, true
}

// currentDevice returns the device loaded by the session middleware
func currentDevice(c *gin.Context) (*device.Device, bool) {
	d, ok := middleware.GetDevice(c)
	if !ok {
		_ = c.Error(errNoDevice)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Device session missing",
		})
		return nil, false
	}
	return d, true
}
