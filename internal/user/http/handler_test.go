package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/user"
)

const testUserID = "5e6f7a8b-9c0d-4e1f-8a2b-3c4d5e6f7a8b"

type stubService struct {
	user.Service

	registered user.RegisterRequest
	updated    user.UpdateRequest
	loginErr   error
	err        error
}

func (s *stubService) Register(_ context.Context, req user.RegisterRequest) (*user.User, error) {
	s.registered = req
	if s.err != nil {
		return nil, s.err
	}
	return &user.User{ID: testUserID, Email: req.Email, IsActive: true}, nil
}

func (s *stubService) Login(_ context.Context, email, _ string) (*user.User, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &user.User{ID: testUserID, Email: email, IsActive: true}, nil
}

func (s *stubService) GetByID(_ context.Context, id string) (*user.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &user.User{ID: id, Email: "guest@example.com", IsActive: true}, nil
}

func (s *stubService) Update(_ context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	s.updated = req
	return &user.User{ID: id, Email: "guest@example.com", IsActive: true, IsAdmin: req.IsAdmin != nil && *req.IsAdmin}, nil
}

func setupRouter(svc user.Service, jwt *auth.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	fakeAuth := func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set("userID", id)
		}
		c.Next()
	}
	pass := func(c *gin.Context) { c.Next() }

	RegisterRoutes(r.Group("/v1"), NewHandler(svc, jwt), fakeAuth, pass, pass)
	return r
}

func executeRequest(r *gin.Engine, method, path string, body any, userID string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterHandler(t *testing.T) {
	jwt := auth.NewJWTManager("test-secret", time.Minute)

	t.Run("Register: Success", func(t *testing.T) {
		svc := &stubService{}
		r := setupRouter(svc, jwt)

		w := executeRequest(r, http.MethodPost, "/v1/auth/register", gin.H{
			"email": "guest@example.com", "password": "password123", "display_name": "Guest",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "guest@example.com", svc.registered.Email)
		assert.Equal(t, "Guest", svc.registered.DisplayName)

		var resp MeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, testUserID, resp.User.ID)
		assert.False(t, resp.User.IsAdmin)
	})

	t.Run("Register: Invalid Payloads", func(t *testing.T) {
		tests := []struct {
			name string
			body gin.H
		}{
			{"bad email", gin.H{"email": "not-an-email", "password": "password123", "display_name": "Guest"}},
			{"short password", gin.H{"email": "a@example.com", "password": "short", "display_name": "Guest"}},
			{"long password", gin.H{"email": "a@example.com", "password": strings.Repeat("p", 73), "display_name": "Guest"}},
			{"missing display name", gin.H{"email": "a@example.com", "password": "password123"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := &stubService{}
				w := executeRequest(setupRouter(svc, jwt), http.MethodPost, "/v1/auth/register", tt.body, "")
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Empty(t, svc.registered.Email)
			})
		}
	})

	t.Run("Register: Email Taken", func(t *testing.T) {
		r := setupRouter(&stubService{err: user.ErrEmailAlreadyUsed}, jwt)

		w := executeRequest(r, http.MethodPost, "/v1/auth/register", gin.H{
			"email": "guest@example.com", "password": "password123", "display_name": "Guest",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestLoginHandler(t *testing.T) {
	jwt := auth.NewJWTManager("test-secret", time.Minute)

	t.Run("Login: Issues Token", func(t *testing.T) {
		r := setupRouter(&stubService{}, jwt)

		w := executeRequest(r, http.MethodPost, "/v1/auth/login", gin.H{
			"email": "guest@example.com", "password": "password123",
		}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		claims, err := jwt.ParseAndValidate(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, testUserID, claims.UserID)
		assert.Equal(t, "guest@example.com", claims.Email)
	})

	t.Run("Login: Missing Password", func(t *testing.T) {
		r := setupRouter(&stubService{}, jwt)

		w := executeRequest(r, http.MethodPost, "/v1/auth/login", gin.H{"email": "guest@example.com"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Login: Wrong Credentials", func(t *testing.T) {
		r := setupRouter(&stubService{loginErr: user.ErrInvalidCredentials}, jwt)

		w := executeRequest(r, http.MethodPost, "/v1/auth/login", gin.H{
			"email": "guest@example.com", "password": "wrong-password",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotContains(t, w.Body.String(), "access_token")
	})

	t.Run("Login: Inactive", func(t *testing.T) {
		r := setupRouter(&stubService{loginErr: user.ErrInactiveUser}, jwt)

		w := executeRequest(r, http.MethodPost, "/v1/auth/login", gin.H{
			"email": "guest@example.com", "password": "password123",
		}, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestMeAndAdminHandlers(t *testing.T) {
	jwt := auth.NewJWTManager("test-secret", time.Minute)

	t.Run("Me: Success", func(t *testing.T) {
		r := setupRouter(&stubService{}, jwt)

		w := executeRequest(r, http.MethodGet, "/v1/me", nil, testUserID)
		require.Equal(t, http.StatusOK, w.Code)

		var resp MeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, testUserID, resp.User.ID)
	})

	t.Run("Me: No Identity", func(t *testing.T) {
		r := setupRouter(&stubService{}, jwt)

		w := executeRequest(r, http.MethodGet, "/v1/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Update User: Grants Admin", func(t *testing.T) {
		svc := &stubService{}
		r := setupRouter(svc, jwt)

		w := executeRequest(r, http.MethodPatch, "/v1/users/"+testUserID, gin.H{"is_admin": true}, testUserID)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NotNil(t, svc.updated.IsAdmin)
		assert.True(t, *svc.updated.IsAdmin)
		assert.Nil(t, svc.updated.IsActive)
	})

	t.Run("Get User: Malformed ID", func(t *testing.T) {
		r := setupRouter(&stubService{}, jwt)

		w := executeRequest(r, http.MethodGet, "/v1/users/42", nil, testUserID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Get User: Not Found", func(t *testing.T) {
		r := setupRouter(&stubService{err: user.ErrNotFound}, jwt)

		w := executeRequest(r, http.MethodGet, "/v1/users/"+testUserID, nil, testUserID)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
