package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withClaims stands in for RequireJWT.
func withClaims(claims *service.Claims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextKeyClaims, claims)
		}
		c.Next()
	}
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests refused")
	}
	if rl.Allow("a") {
		t.Fatal("third request allowed")
	}
	if !rl.Allow("b") {
		t.Fatal("separate key shares the bucket")
	}
}

func TestRateLimiterByUser(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour).ByUser()
	r := gin.New()
	r.GET("/u/:id", func(c *gin.Context) {
		c.Set(ContextKeyClaims, &service.Claims{UserID: c.Param("id")})
	}, rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, "/u/alice"); w.Code != http.StatusOK {
		t.Fatalf("alice #1 = %d", w.Code)
	}
	w := serve(r, "/u/alice")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("alice #2 = %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "3600" {
		t.Fatalf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	if w := serve(r, "/u/bob"); w.Code != http.StatusOK {
		t.Fatalf("bob shares alice's bucket: %d", w.Code)
	}
}

func TestRequireInstructor(t *testing.T) {
	tests := []struct {
		name   string
		claims *service.Claims
		want   int
	}{
		{"no claims", nil, http.StatusUnauthorized},
		{"student", &service.Claims{UserID: "s1", Role: edusync.RoleStudent}, http.StatusForbidden},
		{"instructor", &service.Claims{UserID: "i1", Role: edusync.RoleInstructor}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", withClaims(tt.claims), RequireInstructor(), func(c *gin.Context) { c.Status(http.StatusOK) })
			if w := serve(r, "/x"); w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestCacheHeaders(t *testing.T) {
	r := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/media", CacheControl(60), ok)
	r.GET("/attempt", NoStore(), ok)

	if got := serve(r, "/media").Header().Get("Cache-Control"); got != "public, max-age=60" {
		t.Fatalf("media Cache-Control = %q", got)
	}
	if got := serve(r, "/attempt").Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("attempt Cache-Control = %q", got)
	}
}
