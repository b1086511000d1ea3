package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steamachieve/steamachieve-backend/internal/middleware"
	"github.com/steamachieve/steamachieve-backend/internal/repos"
)

type UserHandler struct {
	userRepo repos.UserRepo
}

func NewUserHandler(userRepo repos.UserRepo) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// Me returns the authenticated user's stored profile.
func (uh *UserHandler) Me(c *gin.Context) {
	steamID := middleware.SteamID(c)

	user, err := uh.userRepo.GetBySteamID(c.Request.Context(), nil, steamID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "user_lookup_failed", err)
		return
	}
	if user == nil {
		RespondError(c, http.StatusNotFound, "user_not_found", errors.New("user not found"))
		return
	}
	RespondOK(c, gin.H{"success": true, "user": user})
}
