package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, PermAdminAccess))
	assert.True(t, HasPermission(RoleAdmin, PermWorkspaceWrite))
	assert.True(t, HasPermission(RoleMember, PermWorkspaceWrite))
	assert.False(t, HasPermission(RoleMember, PermAdminAccess))
	assert.True(t, HasPermission(RoleViewer, PermWorkspaceRead))
	assert.False(t, HasPermission(RoleViewer, PermWorkspaceWrite))
	assert.False(t, HasPermission("unknown", PermWorkspaceRead))
}

func newRBACTestRouter(role string, perm Permission) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role != "" {
			c.Set("role", role)
		}
	})
	r.Use(RequirePermission(perm))
	r.GET("/probe", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequirePermission_Allowed(t *testing.T) {
	r := newRBACTestRouter(RoleAdmin, PermAdminAccess)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermission_Denied(t *testing.T) {
	r := newRBACTestRouter(RoleViewer, PermAdminAccess)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirePermission_MissingRole(t *testing.T) {
	r := newRBACTestRouter("", PermWorkspaceRead)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
