package dto

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func pageFromQuery(t *testing.T, query string) PageRequest {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/docs"+query, nil)
	return BindPage(c)
}

func TestBindPage_Defaults(t *testing.T) {
	page := pageFromQuery(t, "")
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
}

func TestBindPage_PageStyle(t *testing.T) {
	page := pageFromQuery(t, "?page=3&page_size=50")
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 50, page.PageSize)
	assert.Equal(t, 100, page.Offset())
}

func TestBindPage_LimitOffsetStyle(t *testing.T) {
	page := pageFromQuery(t, "?limit=10&offset=30")
	assert.Equal(t, 4, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 30, page.Offset())
}

func TestBindPage_LimitWithoutOffset(t *testing.T) {
	page := pageFromQuery(t, "?limit=5")
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 5, page.PageSize)
}

func TestBindPage_ClampsInvalidValues(t *testing.T) {
	page := pageFromQuery(t, "?page=-1&page_size=9999")
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.PageSize)

	page = pageFromQuery(t, "?page=abc&page_size=xyz")
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
}
