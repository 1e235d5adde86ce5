package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	authservice "identity-service/internal/auth/service"
	"identity-service/internal/security"
	sessiondomain "identity-service/internal/session/domain"
	userdomain "identity-service/internal/user/domain"
	userservice "identity-service/internal/user/service"
)

type memUserRepo struct {
	mu sync.Mutex
	m  map[string]*userdomain.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{m: make(map[string]*userdomain.User)} }

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.m[id]; ok {
		u2 := *u
		return &u2, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.m {
		if u.Email == email {
			u2 := *u
			return &u2, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u2 := *u
	r.m[u.ID] = &u2
	return nil
}

func (r *memUserRepo) UpdateProfile(ctx context.Context, id, fullName string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.m[id]
	if !ok {
		return nil, nil
	}
	u.FullName = fullName
	u2 := *u
	return &u2, nil
}

func (r *memUserRepo) UpdateByAdmin(ctx context.Context, id string, fullName *string, role *userdomain.Role, active *bool) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.m[id]
	if !ok {
		return nil, nil
	}
	if fullName != nil {
		u.FullName = *fullName
	}
	if role != nil {
		u.Role = *role
	}
	if active != nil {
		u.Active = *active
	}
	u2 := *u
	return &u2, nil
}

func (r *memUserRepo) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.m[id]; ok {
		u.Active = false
	}
	return nil
}

func (r *memUserRepo) ListActive(ctx context.Context, limit, offset int) ([]*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*userdomain.User
	for _, u := range r.m {
		if u.Active {
			u2 := *u
			out = append(out, &u2)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *memUserRepo) CountActive(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.m {
		if u.Active {
			n++
		}
	}
	return n, nil
}

type memSessionRepo struct {
	mu sync.Mutex
	m  map[string]*sessiondomain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{m: make(map[string]*sessiondomain.Session)}
}

func (r *memSessionRepo) Create(ctx context.Context, s *sessiondomain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s2 := *s
	r.m[s.ID] = &s2
	return nil
}

func (r *memSessionRepo) FindLiveByUser(ctx context.Context, userID string, now time.Time) ([]*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*sessiondomain.Session
	for _, s := range r.m {
		if s.UserID == userID && !s.ExpiresAt.Before(now) {
			s2 := *s
			out = append(out, &s2)
		}
	}
	return out, nil
}

func (r *memSessionRepo) Rotate(ctx context.Context, id, secretHash, device, ipAddress string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok {
		s.SecretHash = secretHash
		s.Device = device
		s.IPAddress = ipAddress
		s.ExpiresAt = expiresAt
	}
	return nil
}

func (r *memSessionRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

func (r *memSessionRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.m {
		if s.UserID == userID {
			delete(r.m, id)
		}
	}
	return nil
}

func (r *memSessionRepo) DeleteExpiredForUser(ctx context.Context, userID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.m {
		if s.UserID == userID && s.ExpiresAt.Before(now) {
			delete(r.m, id)
		}
	}
	return nil
}

func (r *memSessionRepo) EnforceCap(ctx context.Context, userID string, max int) error {
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	users := newMemUserRepo()
	sessions := newMemSessionRepo()
	hasher := security.NewHasher(4)
	tokens := security.NewTestTokenProvider()
	authSvc := authservice.NewAuthService(users, sessions, hasher, tokens, 5, nil)
	userSvc := userservice.NewUserService(users, sessions, nil)
	return NewRouter(Options{
		Auth:       authSvc,
		Users:      userSvc,
		Tokens:     tokens,
		CORSOrigin: "*",
	})
}

func doJSON(r *gin.Engine, method, path, bearer string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return m
}

func signup(t *testing.T, r *gin.Engine, email string) {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/auth/signup", "", gin.H{
		"email": email, "password": "Abc@1234", "fullName": "Alice",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: want 201, got %d (%s)", w.Code, w.Body.String())
	}
}

func login(t *testing.T, r *gin.Engine, email string) (access, refresh string) {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/auth/login", "", gin.H{
		"email": email, "password": "Abc@1234",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: want 200, got %d (%s)", w.Code, w.Body.String())
	}
	body := decode(t, w)
	access, _ = body["accessToken"].(string)
	refresh, _ = body["refreshToken"].(string)
	if access == "" || refresh == "" {
		t.Fatalf("login response missing tokens: %s", w.Body.String())
	}
	return access, refresh
}

func TestHTTP_Signup(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/auth/signup", "", gin.H{
		"email": "alice@x.com", "password": "Abc@1234", "fullName": "Alice",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d (%s)", w.Code, w.Body.String())
	}
	body := decode(t, w)
	user, _ := body["user"].(map[string]any)
	if user == nil {
		t.Fatalf("missing user in response: %s", w.Body.String())
	}
	if user["email"] != "alice@x.com" || user["role"] != "USER" || user["isActive"] != true {
		t.Errorf("user payload: %v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Error("password hash leaked in signup response")
	}

	// Duplicate email.
	w = doJSON(r, http.MethodPost, "/auth/signup", "", gin.H{
		"email": "alice@x.com", "password": "Abc@1234", "fullName": "Alice",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate: want 409, got %d", w.Code)
	}
	if code := decode(t, w)["code"]; code != "EMAIL_IN_USE" {
		t.Errorf("duplicate code: %v", code)
	}
}

func TestHTTP_SignupValidation(t *testing.T) {
	r := newTestRouter(t)
	tests := []gin.H{
		{"email": "not-an-email", "password": "Abc@1234", "fullName": "A"},
		{"email": "a@x.com", "password": "short", "fullName": "A"},
		{"email": "a@x.com", "password": "Abc@1234"},
	}
	for _, body := range tests {
		if w := doJSON(r, http.MethodPost, "/auth/signup", "", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %v: want 400, got %d", body, w.Code)
		}
	}
}

func TestHTTP_LoginFailures(t *testing.T) {
	r := newTestRouter(t)
	signup(t, r, "alice@x.com")

	for _, body := range []gin.H{
		{"email": "nobody@x.com", "password": "Abc@1234"},
		{"email": "alice@x.com", "password": "wrong-password"},
	} {
		w := doJSON(r, http.MethodPost, "/auth/login", "", body)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("body %v: want 401, got %d", body, w.Code)
		}
		if code := decode(t, w)["code"]; code != "INVALID_CREDENTIALS" {
			t.Errorf("body %v: code %v", body, code)
		}
	}
}

func TestHTTP_RefreshRotation(t *testing.T) {
	r := newTestRouter(t)
	signup(t, r, "alice@x.com")
	_, rt1 := login(t, r, "alice@x.com")

	w := doJSON(r, http.MethodPost, "/auth/refresh", "", gin.H{"refreshToken": rt1})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: want 200, got %d (%s)", w.Code, w.Body.String())
	}
	rt2, _ := decode(t, w)["refreshToken"].(string)
	if rt2 == "" {
		t.Fatal("refresh response missing refreshToken")
	}

	// Old token is dead, new one works.
	w = doJSON(r, http.MethodPost, "/auth/refresh", "", gin.H{"refreshToken": rt1})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("replay: want 401, got %d", w.Code)
	}
	if code := decode(t, w)["code"]; code != "INVALID_REFRESH_TOKEN" {
		t.Errorf("replay code: %v", code)
	}
	w = doJSON(r, http.MethodPost, "/auth/refresh", "", gin.H{"refreshToken": rt2})
	if w.Code != http.StatusOK {
		t.Errorf("rotated token: want 200, got %d", w.Code)
	}
}

func TestHTTP_RefreshGarbage(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(r, http.MethodPost, "/auth/refresh", "", gin.H{"refreshToken": "garbage"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("want 401, got %d", w.Code)
	}
	if code := decode(t, w)["code"]; code != "INVALID_TOKEN" {
		t.Errorf("code: %v", code)
	}
}

func TestHTTP_MeAndLogout(t *testing.T) {
	r := newTestRouter(t)
	signup(t, r, "alice@x.com")
	access, refresh := login(t, r, "alice@x.com")

	// /auth/me requires a bearer token.
	if w := doJSON(r, http.MethodGet, "/auth/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("me without token: want 401, got %d", w.Code)
	}
	w := doJSON(r, http.MethodGet, "/auth/me", access, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: want 200, got %d (%s)", w.Code, w.Body.String())
	}
	if me := decode(t, w); me["email"] != "alice@x.com" {
		t.Errorf("me payload: %v", me)
	}

	// Single-device logout kills the session; the refresh token stops working.
	w = doJSON(r, http.MethodPost, "/auth/logout", access, gin.H{"refreshToken": refresh})
	if w.Code != http.StatusOK {
		t.Fatalf("logout: want 200, got %d (%s)", w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodPost, "/auth/refresh", "", gin.H{"refreshToken": refresh})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh after logout: want 401, got %d", w.Code)
	}
}

func TestHTTP_AdminRoutesRequireAdminRole(t *testing.T) {
	r := newTestRouter(t)
	signup(t, r, "alice@x.com")
	access, _ := login(t, r, "alice@x.com")

	if w := doJSON(r, http.MethodGet, "/users", access, nil); w.Code != http.StatusForbidden {
		t.Errorf("list as USER: want 403, got %d", w.Code)
	}
	// Profile routes stay open to any authenticated user.
	if w := doJSON(r, http.MethodGet, "/users/profile", access, nil); w.Code != http.StatusOK {
		t.Errorf("own profile: want 200, got %d", w.Code)
	}
}
