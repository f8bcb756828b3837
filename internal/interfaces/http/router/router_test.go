package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Empty(t, r.apiVersion)
	assert.Empty(t, r.registrars)
	assert.Equal(t, "/api", r.BasePath())
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterRegister(t *testing.T) {
	r := NewRouter(gin.New())
	r.Register(pingRoutes{}, pingRoutes{})

	assert.Len(t, r.registrars, 2)
}

func TestRouterSetup(t *testing.T) {
	t.Run("unversioned", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine).Register(pingRoutes{}).Setup()

		w := serve(engine, http.MethodGet, "/api/ping")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", w.Body.String())
	})

	t.Run("versioned", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine, WithAPIVersion("v1")).Register(pingRoutes{}).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/ping").Code)
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/ping").Code)
	})
}

func TestRouterMiddleware(t *testing.T) {
	engine := gin.New()
	block := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	}
	NewRouter(engine, WithMiddleware(block)).Register(pingRoutes{}).Setup()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/ping").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
}
