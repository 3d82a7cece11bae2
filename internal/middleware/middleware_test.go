package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/bitacora-api/internal/services"
	"github.com/sjperalta/bitacora-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signed(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(userID uint) Claims {
	return Claims{
		UserID: userID,
		Email:  "ana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", Auth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return r
}

func TestAuth(t *testing.T) {
	expired := validClaims(7)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"valid bearer", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(secret), validClaims(7)), "", http.StatusOK, `"user_id":7`},
		{"token in query", "", "?token=" + signed(t, jwt.SigningMethodHS256, []byte(secret), validClaims(8)), http.StatusOK, `"user_id":8`},
		{"missing header", "", "", http.StatusUnauthorized, "Authorization"},
		{"not bearer", "Basic abc", "", http.StatusUnauthorized, "formato"},
		{"wrong secret", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("other"), validClaims(7)), "", http.StatusUnauthorized, "token inválido"},
		{"expired", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(secret), expired), "", http.StatusUnauthorized, "expiró"},
		{"no user", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(secret), validClaims(0)), "", http.StatusUnauthorized, "token inválido"},
		{"unsigned", "Bearer " + signed(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims(7)), "", http.StatusUnauthorized, "token inválido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			authRouter().ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

type stubResolver struct {
	actor *services.Actor
	err   error
}

func (s stubResolver) ResolveActor(_ context.Context, userID uint) (*services.Actor, error) {
	if s.err != nil {
		return nil, s.err
	}
	a := *s.actor
	a.UserID = userID
	return &a, nil
}

func actorRouter(resolver ActorResolver) *gin.Engine {
	r := gin.New()
	r.GET("/me", func(c *gin.Context) {
		c.Set(ctxUserID, uint(5))
		c.Next()
	}, Actor(resolver), func(c *gin.Context) {
		a := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"user_id": a.UserID, "organization_id": a.OrganizationID})
	})
	return r
}

func TestActor(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		w := httptest.NewRecorder()
		actorRouter(stubResolver{actor: &services.Actor{OrganizationID: 3, Role: "resident"}}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":5,"organization_id":3}`, w.Body.String())
	})

	t.Run("no membership", func(t *testing.T) {
		w := httptest.NewRecorder()
		actorRouter(stubResolver{err: services.ErrUnauthenticated}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		w := httptest.NewRecorder()
		actorRouter(stubResolver{err: errors.New("connection refused")}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestGetActorWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetActor(c))
	assert.Zero(t, GetUserID(c))
}

func TestCORS(t *testing.T) {
	newRouter := func(origins ...string) *gin.Engine {
		r := gin.New()
		r.Use(CORS(origins))
		r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
		return r
	}

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		newRouter("https://app.example.com").ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		newRouter("https://app.example.com").ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://any.example.com")
		w := httptest.NewRecorder()
		newRouter("*").ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		newRouter("https://app.example.com").ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	})

	t.Run("redacts the query token", func(t *testing.T) {
		prev := logger.Log
		t.Cleanup(func() {
			logger.Log = prev
			slog.SetDefault(prev)
		})
		var buf bytes.Buffer
		logger.SetupTo(&buf, "production", "info")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping?token=eyJhbGciOi.secret&page=2", nil))

		assert.NotContains(t, buf.String(), "eyJhbGciOi")
		assert.Contains(t, buf.String(), "REDACTED")
		assert.Contains(t, buf.String(), "page=2")
	})
}
