package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bytezen/bytezen-api/internal/middleware"
	"github.com/bytezen/bytezen-api/internal/models"
	"github.com/bytezen/bytezen-api/internal/service"
)

type stubUserRepo struct {
	user   *models.User
	tokens map[string]*models.RefreshToken
}

func newStubUserRepo(user *models.User) *stubUserRepo {
	return &stubUserRepo{user: user, tokens: map[string]*models.RefreshToken{}}
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(context.Context, string, time.Time) error { return nil }

func (s *stubUserRepo) UpdatePassword(_ context.Context, _ string, hash string, _ time.Time) error {
	s.user.PasswordHash = hash
	return nil
}

func (s *stubUserRepo) RevokeUserRefreshTokens(context.Context, string) error { return nil }

func (s *stubUserRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	s.tokens[token.Token] = token
	return nil
}

func (s *stubUserRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := s.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (s *stubUserRepo) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	for _, token := range s.tokens {
		if token.ID == id {
			token.Revoked = true
		}
	}
	return nil
}

func newAuthTestHandler(t *testing.T) (*AuthHandler, *stubUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22!"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := newStubUserRepo(&models.User{
		ID:           "u1",
		Email:        "admin@bytezen.dev",
		PasswordHash: string(hash),
		FullName:     "Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	})
	svc := service.NewAuthService(repo, nil, nil, service.AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "bytezen-test",
	})
	return NewAuthHandler(svc), repo
}

func postJSON(c *gin.Context, path string, payload interface{}) {
	body, _ := json.Marshal(payload)
	c.Request = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthTestHandler(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	postJSON(c, "/auth/login", gin.H{"email": "admin@bytezen.dev", "password": "hunter22!"})

	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.Equal(t, "u1", envelope.Data.User.ID)
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthTestHandler(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	postJSON(c, "/auth/login", gin.H{"email": "admin@bytezen.dev", "password": "wrong"})

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerLoginMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthTestHandler(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{not json")))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerRefreshRotates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newAuthTestHandler(t)

	repo.tokens["refresh-1"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "u1",
		Token:     "refresh-1",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	postJSON(c, "/auth/refresh", gin.H{"refresh_token": "refresh-1"})

	handler.Refresh(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.RefreshTokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEqual(t, "refresh-1", envelope.Data.RefreshToken)
	assert.True(t, repo.tokens["refresh-1"].Revoked)
}

func TestAuthHandlerMeRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthTestHandler(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAuthTestHandler(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Email: "admin@bytezen.dev", Role: models.RoleAdmin})

	handler.Me(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.UserInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "u1", envelope.Data.ID)
	assert.Equal(t, models.RoleAdmin, envelope.Data.Role)
}
