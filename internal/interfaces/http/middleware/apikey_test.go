package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/domain/repository"
)

type fakeAPIKeyRepo struct {
	byHash  map[string]*entity.APIKey
	err     error
	touched []string
}

func (f *fakeAPIKeyRepo) Create(context.Context, *entity.APIKey) error { return nil }

func (f *fakeAPIKeyRepo) GetByHash(_ context.Context, hash string) (*entity.APIKey, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byHash[hash], nil
}

func (f *fakeAPIKeyRepo) GetByID(context.Context, string, string) (*entity.APIKey, error) {
	return nil, nil
}

func (f *fakeAPIKeyRepo) Revoke(context.Context, string, string) error { return nil }

func (f *fakeAPIKeyRepo) TouchLastUsed(_ context.Context, id string) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeAPIKeyRepo) ListByWorkspace(context.Context, string, repository.Pagination) (*repository.PagedResult[*entity.APIKey], error) {
	return nil, nil
}

func newAPIKeyTestRouter(repo repository.APIKeyRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyAuth(repo))
	r.GET("/probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"workspace_id": GetWorkspaceIDFromGin(c),
			"org_id":       GetOrgIDFromGin(c),
		})
	})
	return r
}

func issueTestKey(t *testing.T) (*entity.APIKey, string) {
	t.Helper()
	key, plaintext, err := entity.NewAPIKey("org-1", "ws-1", "test", nil)
	require.NoError(t, err)
	return key, plaintext
}

func TestAPIKeyAuth_ValidKeyInjectsScope(t *testing.T) {
	key, plaintext := issueTestKey(t)
	repo := &fakeAPIKeyRepo{byHash: map[string]*entity.APIKey{key.KeyHash: key}}
	r := newAPIKeyTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+plaintext)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"workspace_id":"ws-1"`)
	assert.Contains(t, w.Body.String(), `"org_id":"org-1"`)
	assert.Equal(t, []string{key.ID}, repo.touched)
}

func TestAPIKeyAuth_MissingHeader(t *testing.T) {
	r := newAPIKeyTestRouter(&fakeAPIKeyRepo{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_WrongScheme(t *testing.T) {
	r := newAPIKeyTestRouter(&fakeAPIKeyRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Basic abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_UnknownKey(t *testing.T) {
	r := newAPIKeyTestRouter(&fakeAPIKeyRepo{byHash: map[string]*entity.APIKey{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer rck_deadbeef")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_RevokedKey(t *testing.T) {
	key, plaintext := issueTestKey(t)
	key.IsActive = false
	repo := &fakeAPIKeyRepo{byHash: map[string]*entity.APIKey{key.KeyHash: key}}
	r := newAPIKeyTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+plaintext)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, repo.touched)
}

func TestAPIKeyAuth_ExpiredKey(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	key, plaintext, err := entity.NewAPIKey("org-1", "ws-1", "expired", &expired)
	require.NoError(t, err)

	repo := &fakeAPIKeyRepo{byHash: map[string]*entity.APIKey{key.KeyHash: key}}
	r := newAPIKeyTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+plaintext)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_LookupFailure(t *testing.T) {
	r := newAPIKeyTestRouter(&fakeAPIKeyRepo{err: assert.AnError})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer rck_deadbeef")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
