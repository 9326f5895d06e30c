package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fitpass/internal/auth"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockService) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockService) GetByID(ctx context.Context, userID int) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) UpdateProfile(ctx context.Context, userID int, name string) (*User, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*User), args.Error(2)
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)
	return router
}

func TestHandler_Register(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Register", mock.Anything, RegisterRequest{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "password123",
	}).Return(&User{ID: 1, Email: "test@example.com", Role: auth.RoleMember}, "access", "refresh", nil)

	router := newTestRouter(NewHandler(mockService))

	body := `{"name":"Test User","email":"test@example.com","password":"password123"}`
	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"access"`)
	mockService.AssertExpectations(t)
}

func TestHandler_Register_ValidationDetails(t *testing.T) {
	router := newTestRouter(NewHandler(new(MockService)))

	// password below the minimum length; service is never reached
	body := `{"name":"Test User","email":"not-an-email","password":"short"}`
	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation failed")
	assert.Contains(t, w.Body.String(), "Email")
	assert.Contains(t, w.Body.String(), "Password")
}

func TestHandler_Login_InvalidCredentials(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Login", mock.Anything, LoginRequest{
		Email:    "test@example.com",
		Password: "wrong-password",
	}).Return(nil, "", "", ErrInvalidCredentials)

	router := newTestRouter(NewHandler(mockService))

	body := `{"email":"test@example.com","password":"wrong-password"}`
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertExpectations(t)
}
