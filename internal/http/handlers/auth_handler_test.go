package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"financeapp-server/internal/auth"
	"financeapp-server/internal/http/middleware"
	"financeapp-server/internal/models"
	"financeapp-server/internal/repo"
	"financeapp-server/internal/services"
)

const testTokenSecret = "handler-test-secret-32-bytes-min!!"

// fakeUserRepo is an in-memory UserRepository backing the handler tests. It
// enforces the same uniqueness rules as the real storage layer.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int64]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return repo.ErrDuplicateUsername
		}
		if existing.Email == user.Email {
			return repo.ErrDuplicateEmail
		}
	}
	user.ID = r.nextID
	r.nextID++
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err == repo.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return repo.ErrNotFound
	}
	stored.Username = user.Username
	stored.Email = user.Email
	stored.Role = user.Role
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	stored.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// setupTestRouter wires the user routes the way the real router does: public
// register/login plus token-protected per-user routes.
func setupTestRouter(t *testing.T) (*gin.Engine, *fakeUserRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := newFakeUserRepo()
	hasher := auth.NewPasswordHasher()
	tokens := auth.NewTokenService(testTokenSecret, "financeapp", "financeapp-clients", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authService := services.NewAuthService(users, hasher, tokens, logger)

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(authService)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/users/register", authHandler.Register)
	api.POST("/users/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(tokens))
	protected.GET("/users", userHandler.List)
	protected.GET("/users/:id", userHandler.GetByID)
	protected.PUT("/users/:id", userHandler.Update)
	protected.POST("/users/:id/password", userHandler.ChangePassword)
	protected.DELETE("/users/:id", userHandler.Delete)

	return router, users
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, router *gin.Engine, username, email, password string) int64 {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/users/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		UserID int64 `json:"userId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.UserID
}

func loginUser(t *testing.T, router *gin.Engine, username, password string) *services.LoginResult {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/users/login", "", gin.H{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	var result services.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return &result
}

func TestRegister_CreatesUser(t *testing.T) {
	router, users := setupTestRouter(t)

	id := registerUser(t, router, "alice", "alice@example.com", "secret1")
	if id != 1 {
		t.Errorf("userId = %d, want 1", id)
	}

	stored, err := users.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("stored user missing: %v", err)
	}
	if stored.Role != "User" {
		t.Errorf("role = %q, want User", stored.Role)
	}
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Errorf("stored hash = %q, want argon2id record", stored.PasswordHash)
	}
}

func TestRegister_ValidationFailures(t *testing.T) {
	router, _ := setupTestRouter(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"short username", gin.H{"username": "al", "email": "a@x.com", "password": "secret1"}},
		{"bad email", gin.H{"username": "alice", "email": "not-an-email", "password": "secret1"}},
		{"short password", gin.H{"username": "alice", "email": "a@x.com", "password": "abc"}},
		{"missing fields", gin.H{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/users/register", "", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRegister_Duplicates(t *testing.T) {
	router, _ := setupTestRouter(t)
	registerUser(t, router, "alice", "alice@example.com", "secret1")

	rec := doJSON(t, router, http.MethodPost, "/api/users/register", "", gin.H{
		"username": "alice", "email": "other@example.com", "password": "secret1",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate username status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "username already exists") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/users/register", "", gin.H{
		"username": "bob", "email": "alice@example.com", "password": "secret1",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate email status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email already exists") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestLogin_ReturnsWorkingToken(t *testing.T) {
	router, _ := setupTestRouter(t)
	id := registerUser(t, router, "alice", "alice@example.com", "secret1")

	result := loginUser(t, router, "alice", "secret1")
	if result.UserID != id || result.Username != "alice" || result.Email != "alice@example.com" || result.Role != "User" {
		t.Errorf("unexpected login result: %+v", result)
	}

	// The token must open the protected routes.
	rec := doJSON(t, router, http.MethodGet, "/api/users/"+strconv.FormatInt(id, 10), result.Token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated read status = %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "argon2id") {
		t.Error("response must not leak the password hash")
	}
}

func TestLogin_FailurePayloadsIdentical(t *testing.T) {
	router, _ := setupTestRouter(t)
	registerUser(t, router, "alice", "alice@example.com", "secret1")

	unknown := doJSON(t, router, http.MethodPost, "/api/users/login", "", gin.H{
		"username": "nobody", "password": "whatever",
	})
	wrongPass := doJSON(t, router, http.MethodPost, "/api/users/login", "", gin.H{
		"username": "alice", "password": "wrongpass",
	})

	if unknown.Code != http.StatusUnauthorized || wrongPass.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d/%d, want 401/401", unknown.Code, wrongPass.Code)
	}
	if unknown.Body.String() != wrongPass.Body.String() {
		t.Errorf("failure payloads differ: %s vs %s", unknown.Body.String(), wrongPass.Body.String())
	}
}

// Full account lifecycle: register, login, change the password, confirm the
// old one stops working, delete, confirm login fails.
func TestAccountLifecycle(t *testing.T) {
	router, _ := setupTestRouter(t)

	id := registerUser(t, router, "alice", "alice@example.com", "secret1")
	result := loginUser(t, router, "alice", "secret1")
	base := "/api/users/" + strconv.FormatInt(id, 10)

	rec := doJSON(t, router, http.MethodPost, base+"/password", result.Token, gin.H{
		"currentPassword": "secret1",
		"newPassword":     "secret2",
		"confirmPassword": "secret2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("change password status = %d, body %s", rec.Code, rec.Body.String())
	}

	old := doJSON(t, router, http.MethodPost, "/api/users/login", "", gin.H{
		"username": "alice", "password": "secret1",
	})
	if old.Code != http.StatusUnauthorized {
		t.Errorf("old password should be rejected, got %d", old.Code)
	}

	fresh := loginUser(t, router, "alice", "secret2")

	rec = doJSON(t, router, http.MethodDelete, base, fresh.Token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	// Deleting again is a no-op: the token is still valid, the row is gone.
	rec = doJSON(t, router, http.MethodDelete, base, fresh.Token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("repeat delete status = %d, want 204", rec.Code)
	}

	gone := doJSON(t, router, http.MethodPost, "/api/users/login", "", gin.H{
		"username": "alice", "password": "secret2",
	})
	if gone.Code != http.StatusUnauthorized {
		t.Errorf("login after delete status = %d, want 401", gone.Code)
	}
}
