package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"identity-service/internal/security"
)

func newAuthRouter(tokens *security.TokenProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": GetUserID(c)})
	})
	r.GET("/admin", RequireAuth(tokens), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doGet(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	tokens := security.NewTestTokenProvider()
	r := newAuthRouter(tokens)

	access, err := tokens.IssueAccess("user-1", "USER", "alice@x.com")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, _ := tokens.IssueRefresh("user-1", "USER", "alice@x.com")

	tests := []struct {
		name string
		auth string
		want int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
		{"refresh token rejected", "Bearer " + refresh, http.StatusUnauthorized},
		{"valid", "Bearer " + access, http.StatusOK},
		{"case-insensitive scheme", "bearer " + access, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doGet(r, "/protected", tt.auth); w.Code != tt.want {
				t.Errorf("status: want %d, got %d (body %s)", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tokens := security.NewTestTokenProvider()
	r := newAuthRouter(tokens)

	userToken, _ := tokens.IssueAccess("user-1", "USER", "alice@x.com")
	adminToken, _ := tokens.IssueAccess("admin-1", "ADMIN", "admin@x.com")

	if w := doGet(r, "/admin", "Bearer "+userToken); w.Code != http.StatusForbidden {
		t.Errorf("USER role: want 403, got %d", w.Code)
	}
	if w := doGet(r, "/admin", "Bearer "+adminToken); w.Code != http.StatusOK {
		t.Errorf("ADMIN role: want 200, got %d", w.Code)
	}
}
