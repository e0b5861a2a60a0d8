package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/dashboard/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestManagerSetReadClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewManager(config.Config{AuthCookieSecure: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	m.Set(c, "raw-token", time.Now().Add(time.Hour))

	cookies := w.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, DefaultCookieName, cookies[0].Name)
		assert.Equal(t, "raw-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.True(t, cookies[0].Secure)
	}

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "raw-token"})
	token, ok := m.ReadToken(c2)
	assert.True(t, ok)
	assert.Equal(t, "raw-token", token)

	m.Clear(c2)
	cleared := w2.Result().Cookies()
	if assert.Len(t, cleared, 1) {
		assert.Equal(t, "", cleared[0].Value)
		assert.True(t, cleared[0].MaxAge < 0)
	}
}

func TestManagerReadTokenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewManager(config.Config{})

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := m.ReadToken(c)
	assert.False(t, ok)
}
