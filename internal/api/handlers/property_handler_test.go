package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hasanRafi2002/asgn-12-server/internal/api/handlers"
	"github.com/hasanRafi2002/asgn-12-server/internal/models"
	"github.com/hasanRafi2002/asgn-12-server/internal/services"
)

func setupPropertyRouter(svc services.IPropertyService) *gin.Engine {
	handler := handlers.NewPropertyHandler(svc)
	r := gin.New()
	r.POST("/api/properties", handler.CreateProperty)
	r.GET("/api/properties", handler.ListProperties)
	r.GET("/api/properties/:id", handler.ListAgentProperties)
	r.PUT("/api/properties/:id", handler.UpdateProperty)
	r.DELETE("/api/properties/:id", handler.DeleteProperty)
	r.GET("/api/properties/status/:status", handler.ListPropertiesByStatus)
	r.GET("/api/properties/by-propertyid/:id", handler.GetByPropertyID)
	r.DELETE("/api/properties/by-propertyid/:id", handler.DeleteByPropertyID)
	r.PUT("/api/properties/verify/:id", handler.VerifyProperty)
	r.PUT("/api/properties/reject/:id", handler.RejectProperty)
	return r
}

func TestPropertyHandler_Create(t *testing.T) {
	svc := new(MockPropertyService)
	router := setupPropertyRouter(svc)

	input := services.CreatePropertyInput{
		Title:       "Lake House",
		Location:    "Dhaka",
		Description: "Quiet",
		Image:       "https://img.example.com/lake.jpg",
		PriceRange:  &models.PriceRange{Min: 100, Max: 200},
		Agent:       &models.AgentSnapshot{Name: "Agent", Email: "agent@example.com"},
	}
	created := &models.Property{Base: models.NewBase(), PropertyID: "p-1", Title: "Lake House", Status: models.PropertyStatusPending}
	svc.On("Create", mock.Anything, input).Return(created, nil)

	w := performRequest(router, http.MethodPost, "/api/properties", input)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Message  string          `json:"message"`
		Property models.Property `json:"property"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Property added successfully", resp.Message)
	assert.Equal(t, "p-1", resp.Property.PropertyID)
	assert.Equal(t, models.PropertyStatusPending, resp.Property.Status)
	svc.AssertExpectations(t)
}

func TestPropertyHandler_CreateValidation(t *testing.T) {
	svc := new(MockPropertyService)
	router := setupPropertyRouter(svc)
	svc.On("Create", mock.Anything, mock.Anything).Return(nil, services.NewValidationError(services.MsgFieldsRequired))

	w := performRequest(router, http.MethodPost, "/api/properties", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, services.MsgFieldsRequired, responseMessage(t, w))
}

func TestPropertyHandler_GetByPropertyID(t *testing.T) {
	svc := new(MockPropertyService)
	router := setupPropertyRouter(svc)

	svc.On("GetByPropertyID", mock.Anything, "p-1").Return(&models.Property{PropertyID: "p-1", Title: "Lake House"}, nil)
	svc.On("GetByPropertyID", mock.Anything, "missing").Return(nil, services.NewNotFoundError(services.MsgPropertyNotFound))

	w := performRequest(router, http.MethodGet, "/api/properties/by-propertyid/p-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"propertyId":"p-1"`)

	w = performRequest(router, http.MethodGet, "/api/properties/by-propertyid/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Property not found", responseMessage(t, w))
}

func TestPropertyHandler_ListRoutes(t *testing.T) {
	svc := new(MockPropertyService)
	router := setupPropertyRouter(svc)

	svc.On("List", mock.Anything).Return([]models.Property{{PropertyID: "a"}, {PropertyID: "b"}}, nil)
	svc.On("ListByAgent", mock.Anything, "agent@example.com").Return([]models.Property{{PropertyID: "a"}}, nil)
	svc.On("ListByStatus", mock.Anything, "verified").Return([]models.Property{}, nil)

	w := performRequest(router, http.MethodGet, "/api/properties", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var all []models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = performRequest(router, http.MethodGet, "/api/properties/agent@example.com", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, "/api/properties/status/verified", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestPropertyHandler_Update(t *testing.T) {
	svc := new(MockPropertyService)
	router := setupPropertyRouter(svc)

	title := "New Title"
	svc.On("Update", mock.Anything, "abc", services.PropertyUpdate{Title: &title}).
		Return(&models.Property{PropertyID: "p-1", Title: title}, nil)

	w := performRequest(router, http.MethodPut, "/api/properties/abc", map[string]string{"title": title})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Property updated successfully", responseMessage(t, w))
	svc.AssertExpectations(t)
}

func TestPropertyHandler_VerifyReject(t *testing.T) {
	svc := new(MockPropertyService)
	router := setupPropertyRouter(svc)

	svc.On("Verify", mock.Anything, "abc").Return(&models.Property{Status: models.PropertyStatusVerified}, nil)
	svc.On("Reject", mock.Anything, "abc").Return(nil, services.NewConflictError("Property status can no longer be changed"))
	svc.On("Verify", mock.Anything, "gone").Return(nil, services.NewNotFoundError(services.MsgPropertyNotFound))

	w := performRequest(router, http.MethodPut, "/api/properties/verify/abc", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Property verified successfully", responseMessage(t, w))
	assert.Contains(t, w.Body.String(), `"status":"verified"`)

	w = performRequest(router, http.MethodPut, "/api/properties/reject/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPut, "/api/properties/verify/gone", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPropertyHandler_Delete(t *testing.T) {
	svc := new(MockPropertyService)
	router := setupPropertyRouter(svc)

	svc.On("Delete", mock.Anything, "abc").Return(nil)
	svc.On("DeleteByPropertyID", mock.Anything, "p-1").Return(services.NewNotFoundError(services.MsgPropertyNotFound))
	svc.On("Delete", mock.Anything, "broken").Return(errors.New("mongo down"))

	w := performRequest(router, http.MethodDelete, "/api/properties/abc", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Property deleted successfully", responseMessage(t, w))

	w = performRequest(router, http.MethodDelete, "/api/properties/by-propertyid/p-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodDelete, "/api/properties/broken", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, handlers.MsgServerError, responseMessage(t, w))
	svc.AssertExpectations(t)
}
