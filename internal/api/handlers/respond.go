package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/services"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

const (
	MsgServerError        = "Server error"
	MsgInvalidRequestBody = "Invalid request body"
)

// respondError maps service errors onto HTTP responses. Unknown errors are
// logged and reported as a generic server error.
func respondError(c *gin.Context, err error) {
	var appErr *services.AppError
	if errors.As(err, &appErr) {
		c.JSON(statusFor(appErr.Kind), gin.H{"message": appErr.Message})
		return
	}

	_ = c.Error(err)
	utils.Logger().Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"message": MsgServerError})
}

func statusFor(kind error) int {
	switch kind {
	case services.ErrValidation, services.ErrConflict:
		return http.StatusBadRequest
	case services.ErrNotFound:
		return http.StatusNotFound
	case services.ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func respondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// bindJSON decodes the request body and writes the 400 response on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondMessage(c, http.StatusBadRequest, MsgInvalidRequestBody)
		return false
	}
	return true
}
