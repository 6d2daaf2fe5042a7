package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/bytezen/bytezen-api/internal/models"
)

func performRBAC(t *testing.T, claims *models.JWTClaims, paramID string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/resource", nil)
	if paramID != "" {
		c.Params = gin.Params{{Key: "id", Value: paramID}}
	}
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	passed := false
	RBAC(allowed...)(c)
	if !c.IsAborted() {
		passed = true
	}
	if passed {
		c.Status(http.StatusOK)
	}
	return rec
}

func TestRBACAllowsListedRole(t *testing.T) {
	rec := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}, "", "ADMIN")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRBACRejectsUnlistedRole(t *testing.T) {
	rec := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, "", "ADMIN")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRBACRejectsAnonymous(t *testing.T) {
	rec := performRBAC(t, nil, "", "ADMIN")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRBACSelfMatchesOwnID(t *testing.T) {
	rec := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, "u1", "ADMIN", "SELF")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRBACSelfRejectsOtherID(t *testing.T) {
	rec := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, "u2", "ADMIN", "SELF")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
