package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/isdelr/auth-service/internal/apperr"
	"github.com/isdelr/auth-service/internal/auth"
	"github.com/isdelr/auth-service/internal/models"
	"github.com/stretchr/testify/assert"
)

type stubAuthService struct {
	registerErr error
	loginToken  string
	loginErr    error
	user        models.User
	userErr     error
}

func (s *stubAuthService) Register(context.Context, string, string) (models.User, error) {
	return models.User{ID: "u-1"}, s.registerErr
}

func (s *stubAuthService) Login(context.Context, string, string) (string, error) {
	return s.loginToken, s.loginErr
}

func (s *stubAuthService) GetUser(context.Context, string) (models.User, error) {
	return s.user, s.userErr
}

func postJSON(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func withIdentity(r *http.Request, id string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{ID: id, Role: models.RoleStudent}))
}

func TestRegister_StorageErrorIsOpaque(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{registerErr: &apperr.StorageError{Op: "insert user", Err: errors.New("pq: relation missing")}})

	rec := httptest.NewRecorder()
	h.Register(rec, postJSON(`{"email":"a@x.com","password":"secret1"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Registration failed"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "relation")
}

func TestRegister_ServiceValidationError(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{registerErr: &apperr.ValidationError{Field: "email", Reason: "must be a valid email address"}})

	rec := httptest.NewRecorder()
	h.Register(rec, postJSON(`{"email":"a@x.com","password":"secret1"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid registration data","fields":{"email":"must be a valid email address"}}`, rec.Body.String())
}

func TestLogin_Responses(t *testing.T) {
	tests := []struct {
		name     string
		svc      *stubAuthService
		body     string
		wantCode int
		wantBody string
	}{
		{"success", &stubAuthService{loginToken: "tok"}, `{"email":"a@x.com","password":"secret1"}`, http.StatusOK, `{"token":"tok"}`},
		{"invalid credentials", &stubAuthService{loginErr: apperr.InvalidCredentials()}, `{"email":"a@x.com","password":"x"}`, http.StatusUnauthorized, `{"error":"Invalid credentials"}`},
		{"storage failure", &stubAuthService{loginErr: &apperr.StorageError{Op: "find", Err: errors.New("down")}}, `{"email":"a@x.com","password":"x"}`, http.StatusInternalServerError, `{"error":"Login failed"}`},
		{"bad body", &stubAuthService{}, `[`, http.StatusBadRequest, `{"error":"Invalid request body"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewAuthHandler(tt.svc).Login(rec, postJSON(tt.body))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestGetMe_Responses(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	user := models.User{ID: "u-1", Email: "a@x.com", PasswordHash: "hash", Role: models.RoleStudent, IsActive: true, CreatedAt: created}

	rec := httptest.NewRecorder()
	NewAuthHandler(&stubAuthService{user: user}).GetMe(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), "u-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"u-1","email":"a@x.com","role":"student","isActive":true,"createdAt":"2024-01-02T03:04:05Z"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewAuthHandler(&stubAuthService{userErr: apperr.ErrNotFound}).GetMe(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), "u-1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	NewAuthHandler(&stubAuthService{userErr: &apperr.StorageError{Op: "find", Err: errors.New("down")}}).GetMe(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), "u-1"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	NewAuthHandler(&stubAuthService{user: user}).GetMe(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
