package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hasanRafi2002/asgn-12-server/internal/services"
)

// PropertyHandler handles REST requests for listings.
type PropertyHandler struct {
	propertyService services.IPropertyService
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(propertyService services.IPropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// CreateProperty handles POST /api/properties
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var req services.CreatePropertyInput
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Property added successfully", "property": property})
}

// ListProperties handles GET /api/properties
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	properties, err := h.propertyService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

// ListAgentProperties handles GET /api/properties/:id where :id is the agent email.
func (h *PropertyHandler) ListAgentProperties(c *gin.Context) {
	properties, err := h.propertyService.ListByAgent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

// ListPropertiesByStatus handles GET /api/properties/status/:status
func (h *PropertyHandler) ListPropertiesByStatus(c *gin.Context) {
	properties, err := h.propertyService.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

// GetByPropertyID handles GET /api/properties/by-propertyid/:id
func (h *PropertyHandler) GetByPropertyID(c *gin.Context) {
	property, err := h.propertyService.GetByPropertyID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// UpdateProperty handles PUT /api/properties/:id
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	var req services.PropertyUpdate
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property updated successfully", "property": property})
}

// VerifyProperty handles PUT /api/properties/verify/:id
func (h *PropertyHandler) VerifyProperty(c *gin.Context) {
	property, err := h.propertyService.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property verified successfully", "property": property})
}

// RejectProperty handles PUT /api/properties/reject/:id
func (h *PropertyHandler) RejectProperty(c *gin.Context) {
	property, err := h.propertyService.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property rejected successfully", "property": property})
}

// DeleteProperty handles DELETE /api/properties/:id
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	if err := h.propertyService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Property deleted successfully")
}

// DeleteByPropertyID handles DELETE /api/properties/by-propertyid/:id
func (h *PropertyHandler) DeleteByPropertyID(c *gin.Context) {
	if err := h.propertyService.DeleteByPropertyID(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Property deleted successfully")
}
