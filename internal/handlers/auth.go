package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steamachieve/steamachieve-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login redirects the browser to Steam's OpenID endpoint.
func (ah *AuthHandler) Login(c *gin.Context) {
	c.Redirect(http.StatusFound, ah.authService.BeginLogin())
}

// Callback completes the OpenID round trip and returns the session
// token alongside the user's profile.
func (ah *AuthHandler) Callback(c *gin.Context) {
	token, user, err := ah.authService.CompleteLogin(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "auth_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "token": token, "user": user})
}
