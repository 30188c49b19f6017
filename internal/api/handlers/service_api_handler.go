package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/email"
	"github.com/hasanRafi2002/asgn-12-server/internal/models"
	"github.com/hasanRafi2002/asgn-12-server/internal/services"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

// ServiceAPIHandler serves the operator-only JSON API on the service port.
type ServiceAPIHandler struct {
	rdb          redis.Cmdable
	templates    services.IEmailTemplateService
	shutdownChan chan<- struct{}
	pollInterval time.Duration
	pollAttempts int
}

// NewServiceAPIHandler creates a new ServiceAPIHandler. A nil rdb disables
// getTestEmail and a nil templates disables the template methods.
func NewServiceAPIHandler(rdb redis.Cmdable, templates services.IEmailTemplateService, shutdownChan chan<- struct{}) *ServiceAPIHandler {
	return &ServiceAPIHandler{
		rdb:          rdb,
		templates:    templates,
		shutdownChan: shutdownChan,
		pollInterval: 200 * time.Millisecond,
		pollAttempts: 10,
	}
}

type serviceRequest struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments"`
}

// HandleRequest handles POST /api
func (h *ServiceAPIHandler) HandleRequest(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	switch req.Method {
	case "shutdown":
		h.shutdown(c)
	case "getTestEmail":
		h.getTestEmail(c, req.Arguments)
	case "saveEmailTemplate":
		h.saveEmailTemplate(c, req.Arguments)
	case "deleteEmailTemplate":
		h.deleteEmailTemplate(c, req.Arguments)
	default:
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
	}
}

func (h *ServiceAPIHandler) shutdown(c *gin.Context) {
	utils.Logger().Info("shutdown requested via service API")
	c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
	select {
	case h.shutdownChan <- struct{}{}:
	default:
		utils.Logger().Info("shutdown already in progress")
	}
}

// getTestEmail expects arguments ["templateId", "email"] and returns the
// message captured by the Redis mock sender.
func (h *ServiceAPIHandler) getTestEmail(c *gin.Context, rawArgs json.RawMessage) {
	if h.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Redis not configured"})
		return
	}

	var args []string
	if err := json.Unmarshal(rawArgs, &args); err != nil || len(args) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [templateId, email]"})
		return
	}
	redisKey := email.MockEmailKey(args[1], args[0])

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var raw string
	var err error
	for i := 0; i < h.pollAttempts; i++ {
		raw, err = h.rdb.Get(ctx, redisKey).Result()
		if err == nil {
			h.rdb.Del(ctx, redisKey)
			break
		}
		if !errors.Is(err, redis.Nil) {
			utils.Logger().Error("service API redis lookup failed", zap.String("key", redisKey), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
			return
		}
		time.Sleep(h.pollInterval)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
		return
	}

	var emailData map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &emailData); err != nil {
		utils.Logger().Error("failed to parse captured email", zap.String("key", redisKey), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})
}

// saveEmailTemplate expects arguments ["templateId", "locale", "subject", "body"]
// and upserts the stored template, overriding the built-in default.
func (h *ServiceAPIHandler) saveEmailTemplate(c *gin.Context, rawArgs json.RawMessage) {
	if h.templates == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Email templates not configured"})
		return
	}

	var args []string
	if err := json.Unmarshal(rawArgs, &args); err != nil || len(args) != 4 || args[0] == "" || args[1] == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [templateId, locale, subject, body]"})
		return
	}
	template := &models.EmailTemplate{TemplateID: args[0], Locale: args[1], Subject: args[2], Body: args[3]}
	if err := h.templates.SaveTemplate(c.Request.Context(), template); err != nil {
		utils.Logger().Error("failed to save email template", zap.String("templateId", args[0]), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save template"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": "Template saved"})
}

// deleteEmailTemplate expects arguments ["templateId", "locale"]. Built-in
// defaults apply again once the stored template is gone.
func (h *ServiceAPIHandler) deleteEmailTemplate(c *gin.Context, rawArgs json.RawMessage) {
	if h.templates == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Email templates not configured"})
		return
	}

	var args []string
	if err := json.Unmarshal(rawArgs, &args); err != nil || len(args) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [templateId, locale]"})
		return
	}
	if err := h.templates.DeleteTemplate(c.Request.Context(), args[0], args[1]); err != nil {
		utils.Logger().Error("failed to delete email template", zap.String("templateId", args[0]), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete template"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": "Template deleted"})
}
