package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newLoggedRouter(t *testing.T, requestID string) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if requestID != "" {
			c.Set("request_id", requestID)
		}
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	return router, recorded
}

func serve(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func accessLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	return entries[0]
}

func countField(entry observer.LoggedEntry, key string) int {
	n := 0
	for _, f := range entry.Context {
		if f.Key == key {
			n++
		}
	}
	return n
}

func TestGinMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{name: "created", status: http.StatusCreated, level: zapcore.InfoLevel},
		{name: "missing field", status: http.StatusBadRequest, level: zapcore.WarnLevel},
		{name: "unknown module", status: http.StatusNotFound, level: zapcore.WarnLevel},
		{name: "sink failure", status: http.StatusInternalServerError, level: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, recorded := newLoggedRouter(t, "req-1")
			router.POST("/api/financeiro/lancamentos", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := serve(router, http.MethodPost, "/api/financeiro/lancamentos")
			require.Equal(t, tt.status, w.Code)

			entry := accessLog(t, recorded)
			assert.Equal(t, tt.level, entry.Level)

			fields := entry.ContextMap()
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.Equal(t, http.MethodPost, fields["method"])
			assert.Equal(t, "/api/financeiro/lancamentos", fields["path"])
			assert.Equal(t, "req-1", fields["request_id"])
			assert.Contains(t, fields, "latency")
			assert.Contains(t, fields, "client_ip")
		})
	}
}

func TestGinMiddleware_ModuleAndQuery(t *testing.T) {
	router, recorded := newLoggedRouter(t, "")
	router.GET("/api/fiscal/notas-fiscais", func(c *gin.Context) {
		c.Set(ModuleKey, "fiscal")
		c.JSON(http.StatusOK, []any{})
	})

	serve(router, http.MethodGet, "/api/fiscal/notas-fiscais?offset=0&limit=10")

	fields := accessLog(t, recorded).ContextMap()
	assert.Equal(t, "fiscal", fields["module"])
	assert.Equal(t, "offset=0&limit=10", fields["query"])
}

func TestGinMiddleware_NoModuleOutsideRecordRoutes(t *testing.T) {
	router, recorded := newLoggedRouter(t, "")
	router.GET("/api/status", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve(router, http.MethodGet, "/api/status")

	fields := accessLog(t, recorded).ContextMap()
	assert.NotContains(t, fields, "module")
	assert.NotContains(t, fields, "query")
}

func TestGinMiddleware_RecordsGinErrors(t *testing.T) {
	router, recorded := newLoggedRouter(t, "")
	router.POST("/api/exportacao", func(c *gin.Context) {
		_ = c.Error(errors.New("bucket missing"))
		c.Status(http.StatusInternalServerError)
	})

	serve(router, http.MethodPost, "/api/exportacao")

	entry := accessLog(t, recorded)
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, []any{"bucket missing"}, entry.ContextMap()["errors"])
}

func TestGinMiddleware_RequestScopedLogger(t *testing.T) {
	router, recorded := newLoggedRouter(t, "req-ctx")
	router.POST("/api/estoque/produtos", func(c *gin.Context) {
		assert.Equal(t, "req-ctx", GetRequestID(c.Request.Context()))
		L(c.Request.Context()).Info("from service")
		GetGinLogger(c).Info("from handler")
		c.Status(http.StatusCreated)
	})

	serve(router, http.MethodPost, "/api/estoque/produtos")

	for _, msg := range []string{"from service", "from handler", "HTTP Request"} {
		entries := recorded.FilterMessage(msg).All()
		require.Len(t, entries, 1, msg)
		assert.Equal(t, 1, countField(entries[0], "request_id"), msg)
		assert.Equal(t, "req-ctx", entries[0].ContextMap()["request_id"], msg)
		assert.Equal(t, "/api/estoque/produtos", entries[0].ContextMap()["path"], msg)
	}
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	l := GetGinLogger(c)
	require.NotNil(t, l)
	l.Info("discarded")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-panic")
		c.Next()
	})
	router.Use(Recovery(zap.New(core)))
	router.POST("/api/relatorios", func(c *gin.Context) {
		panic("boom")
	})
	router.GET("/api/status", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(router, http.MethodPost, "/api/relatorios")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Erro interno do servidor"}`, w.Body.String())

	entries := recorded.FilterMessage("Panic recovered").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-panic", fields["request_id"])
	assert.Equal(t, "/api/relatorios", fields["path"])
	assert.Equal(t, "boom", fields["error"])

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/status").Code)
}
