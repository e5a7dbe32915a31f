package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DevBolt07/smart-parking/internal/domain"
	"github.com/DevBolt07/smart-parking/internal/repository"
	"github.com/DevBolt07/smart-parking/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthRouter(userRepo *MockUserRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	authService := service.NewAuthService(userRepo, "test-secret", 24*time.Hour)
	h := NewAuthHandler(authService)

	r := gin.New()
	r.POST("/api/register", h.Register)
	r.POST("/api/login", h.Login)
	return r
}

func registerBody() []byte {
	body, _ := json.Marshal(gin.H{
		"name":     "Nguyen Van A",
		"email":    "a@example.com",
		"mobile":   "0900000001",
		"vehicle":  "59A-123.45",
		"password": "secret123",
	})
	return body
}

func TestRegisterHandler_Success(t *testing.T) {
	userRepo := new(MockUserRepo)
	r := setupAuthRouter(userRepo)

	userRepo.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, repository.ErrNotFound)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(&domain.User{
		ID: 1, Name: "Nguyen Van A", Email: "a@example.com", Role: domain.RoleUser,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(registerBody()))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success": true, "message": "Registration successful"}`, w.Body.String())
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepo)
	r := setupAuthRouter(userRepo)

	userRepo.On("FindByEmail", mock.Anything, "a@example.com").Return(&domain.User{ID: 1, Email: "a@example.com"}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(registerBody()))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterHandler_InvalidBody(t *testing.T) {
	userRepo := new(MockUserRepo)
	r := setupAuthRouter(userRepo)

	body, _ := json.Marshal(gin.H{"email": "not-an-email", "password": "123"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginHandler_Success(t *testing.T) {
	userRepo := new(MockUserRepo)
	r := setupAuthRouter(userRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	userRepo.On("FindByEmail", mock.Anything, "a@example.com").Return(&domain.User{
		ID: 1, Email: "a@example.com", Password: string(hash), Role: domain.RoleUser,
	}, nil)

	body, _ := json.Marshal(gin.H{"email": "a@example.com", "password": "secret123"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	userRepo := new(MockUserRepo)
	r := setupAuthRouter(userRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	userRepo.On("FindByEmail", mock.Anything, "a@example.com").Return(&domain.User{
		ID: 1, Email: "a@example.com", Password: string(hash), Role: domain.RoleUser,
	}, nil)

	body, _ := json.Marshal(gin.H{"email": "a@example.com", "password": "wrong"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message": "Invalid credentials"}`, w.Body.String())
}
