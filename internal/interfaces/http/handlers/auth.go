// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/domain/auth"
	"github.com/your-org/bakery-storefront/internal/session"
)

// AuthHandler handles sign-in and session endpoints
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// PasswordConfirmationRequest is the registration/reset password pair
type PasswordConfirmationRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Login handles POST /auth/:actor/login
func (h *AuthHandler) Login(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	actor, ok := parseActor(c)
	if !ok {
		return
	}

	var req auth.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, err := h.authService.Login(c.Request.Context(), d.ID, actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	d.Feed.Success("Welcome back, " + user.Name)
	respondOK(c, "Login successful", publicUser(user))
}

// Logout handles POST /auth/:actor/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	actor, ok := parseActor(c)
	if !ok {
		return
	}

	err := h.authService.Logout(c.Request.Context(), d.ID, actor)
	if actor == session.ActorCustomer || d.Session.Customer() == nil {
		d.SignedOut()
	}
	if err != nil {
		// The slot is already cleared; report the failed call only
		d.Feed.Error(api.MessageOf(err))
		c.JSON(http.StatusOK, gin.H{
			"message": "Logged out locally",
			"warning": api.MessageOf(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logout successful",
	})
}

// Me handles GET /auth/:actor/me
func (h *AuthHandler) Me(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	actor, ok := parseActor(c)
	if !ok {
		return
	}

	user, err := h.authService.Refresh(c.Request.Context(), d.ID, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Profile retrieved successfully", publicUser(user))
}

// Session handles GET /session
func (h *AuthHandler) Session(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	respondOK(c, "Session retrieved successfully", gin.H{
		"device":   d.ID,
		"staff":    publicUser(d.Session.Staff()),
		"customer": publicUser(d.Session.Customer()),
	})
}

// Reset handles POST /session/reset
func (h *AuthHandler) Reset(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	if err := h.authService.Reset(c.Request.Context(), d.ID); err != nil {
		respondError(c, err)
		return
	}
	d.SignedOut()

	c.JSON(http.StatusOK, gin.H{
		"message": "Session reset",
	})
}

// ConfirmPassword handles POST /auth/password/confirm
func (h *AuthHandler) ConfirmPassword(c *gin.Context) {
	var req PasswordConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := auth.ValidatePasswordConfirmation(req.Password, req.PasswordConfirmation); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Passwords match",
	})
}

func parseActor(c *gin.Context) (session.Actor, bool) {
	actor, err := session.ParseActor(c.Param("actor"))
	if err != nil {
		respondError(c, auth.ErrUnknownActor)
		return "", false
	}
	return actor, true
}

// publicUser strips the bearer token before a profile leaves the server
func publicUser(u *session.User) *session.User {
	if u == nil {
		return nil
	}
	out := *u
	out.Token = ""
	return &out
}
