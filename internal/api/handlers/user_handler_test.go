package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hasanRafi2002/asgn-12-server/internal/api/handlers"
	"github.com/hasanRafi2002/asgn-12-server/internal/models"
	"github.com/hasanRafi2002/asgn-12-server/internal/services"
)

func setupUserRouter(svc services.IUserService) *gin.Engine {
	handler := handlers.NewUserHandler(svc)
	r := gin.New()
	r.POST("/api/auth/storeUserData", handler.StoreUserData)
	r.GET("/api/users", handler.ListUsers)
	r.GET("/api/user/:id", handler.GetUserByEmail)
	r.PUT("/api/user/:id/role", handler.UpdateRole)
	r.PUT("/api/user/:id/fraud", handler.MarkFraud)
	r.DELETE("/api/user/:id", handler.DeleteUser)
	return r
}

func TestUserHandler_StoreUserData(t *testing.T) {
	svc := new(MockUserService)
	router := setupUserRouter(svc)

	input := services.StoreUserInput{Name: "Alice", Email: "alice@example.com", Role: "user"}
	svc.On("StoreUserData", mock.Anything, input).Return(&models.User{Name: "Alice", Email: "alice@example.com", Role: models.RoleUser}, nil)

	w := performRequest(router, http.MethodPost, "/api/auth/storeUserData", input)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User data stored successfully", responseMessage(t, w))
	assert.Contains(t, w.Body.String(), `"email":"alice@example.com"`)
	svc.AssertExpectations(t)
}

func TestUserHandler_StoreUserData_ProfileImage(t *testing.T) {
	svc := new(MockUserService)
	router := setupUserRouter(svc)

	var got services.StoreUserInput
	svc.On("StoreUserData", mock.Anything, mock.AnythingOfType("services.StoreUserInput")).
		Run(func(args mock.Arguments) { got = args.Get(1).(services.StoreUserInput) }).
		Return(&models.User{Name: "Alice", Email: "a@example.com", Role: models.RoleUser}, nil)

	w := performRequest(router, http.MethodPost, "/api/auth/storeUserData", map[string]string{
		"name":         "Alice",
		"email":        "a@example.com",
		"profileImage": "https://img.example.com/p.png",
		"createdAt":    "Tue, 14 May 2024 09:30:00 GMT",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	if assert.NotNil(t, got.Photo()) {
		assert.Equal(t, "https://img.example.com/p.png", *got.Photo())
	}
	assert.Equal(t, "Tue, 14 May 2024 09:30:00 GMT", got.CreatedAt)
	svc.AssertExpectations(t)
}

func TestUserHandler_GetUserByEmail_NotFound(t *testing.T) {
	svc := new(MockUserService)
	router := setupUserRouter(svc)
	svc.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, services.NewNotFoundError(services.MsgUserNotFound))

	w := performRequest(router, http.MethodGet, "/api/user/ghost@example.com", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", responseMessage(t, w))
}

func TestUserHandler_AdminActions(t *testing.T) {
	svc := new(MockUserService)
	router := setupUserRouter(svc)

	svc.On("List", mock.Anything).Return([]models.User{{Name: "Alice"}}, nil)
	svc.On("UpdateRole", mock.Anything, "u1", "agent").Return(&models.User{Role: models.RoleAgent}, nil)
	svc.On("UpdateRole", mock.Anything, "u1", "").Return(nil, services.NewValidationError("Role is required"))
	svc.On("MarkFraud", mock.Anything, "u1").Return(&models.User{Role: models.RoleFraud}, nil)
	svc.On("Delete", mock.Anything, "u1").Return(nil)
	svc.On("Delete", mock.Anything, "u2").Return(services.NewNotFoundError(services.MsgUserNotFound))

	w := performRequest(router, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodPut, "/api/user/u1/role", map[string]string{"role": "agent"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User role updated successfully", responseMessage(t, w))
	assert.Contains(t, w.Body.String(), `"role":"agent"`)

	w = performRequest(router, http.MethodPut, "/api/user/u1/role", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Role is required", responseMessage(t, w))

	w = performRequest(router, http.MethodPut, "/api/user/u1/fraud", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User marked as fraud successfully", responseMessage(t, w))

	w = performRequest(router, http.MethodDelete, "/api/user/u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User deleted successfully", responseMessage(t, w))

	w = performRequest(router, http.MethodDelete, "/api/user/u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}
