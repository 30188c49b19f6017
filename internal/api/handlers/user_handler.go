package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hasanRafi2002/asgn-12-server/internal/services"
)

// UserHandler handles REST requests for the marketplace user directory.
type UserHandler struct {
	userService services.IUserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.IUserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// StoreUserData handles POST /api/auth/storeUserData
func (h *UserHandler) StoreUserData(c *gin.Context) {
	var req services.StoreUserInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.StoreUserData(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User data stored successfully", "user": user})
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUserByEmail handles GET /api/user/:id where :id is the email.
func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	user, err := h.userService.FindByEmail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole handles PUT /api/user/:id/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User role updated successfully", "user": user})
}

// MarkFraud handles PUT /api/user/:id/fraud
func (h *UserHandler) MarkFraud(c *gin.Context) {
	user, err := h.userService.MarkFraud(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User marked as fraud successfully", "user": user})
}

// DeleteUser handles DELETE /api/user/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "User deleted successfully")
}
