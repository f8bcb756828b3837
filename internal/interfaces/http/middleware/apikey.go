package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultAPIKeyHeader is the header carrying the shared secret
const DefaultAPIKeyHeader = "X-API-Key"

// APIKeyConfig holds API key middleware configuration
type APIKeyConfig struct {
	Enabled    bool
	HeaderName string
	// Key is compared in constant time when KeyHash is empty
	Key string
	// KeyHash is a bcrypt hash of the key
	KeyHash string
	// SkipPaths are served without a key
	SkipPaths []string
	Logger    *zap.Logger
}

// APIKey returns a middleware that rejects requests whose API key header
// does not match the configured secret with 401 {"error":"Unauthorized"}.
func APIKey(cfg APIKeyConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	header := cfg.HeaderName
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	verify := newKeyVerifier(cfg.Key, cfg.KeyHash)

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		provided := strings.TrimSpace(c.GetHeader(header))
		if provided == "" || !verify(provided) {
			logger.Warn("rejected request with invalid API key",
				zap.String("request_id", GetRequestID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Bool("key_present", provided != ""),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.UnauthorizedResponse{Error: "Unauthorized"})
			return
		}

		c.Next()
	}
}

// newKeyVerifier returns the comparison used for incoming keys.
// Successful bcrypt checks are remembered by digest since bcrypt is slow by design.
func newKeyVerifier(key, hash string) func(string) bool {
	if hash == "" {
		expected := []byte(key)
		return func(provided string) bool {
			return subtle.ConstantTimeCompare([]byte(provided), expected) == 1
		}
	}

	var verified sync.Map
	hashed := []byte(hash)
	return func(provided string) bool {
		digest := sha256.Sum256([]byte(provided))
		if _, ok := verified.Load(digest); ok {
			return true
		}
		if bcrypt.CompareHashAndPassword(hashed, []byte(provided)) != nil {
			return false
		}
		verified.Store(digest, struct{}{})
		return true
	}
}
